package reactor

import "sync/atomic"

const queueSegmentSize = 32

// queueSegment is a fixed-size array segment of an EventQueue's singly
// linked segment chain.
type queueSegment[T any] struct {
	writeIdx atomic.Uint64                // producers reserve slots here
	deqIdx   uint64                       // consumer-owned, no atomic needed
	next     atomic.Pointer[queueSegment[T]]
	filled   [queueSegmentSize]atomic.Bool // publishes a slot once its value is visible
	data     [queueSegmentSize]T
}

// EventQueue is an unbounded multi-producer, single-consumer FIFO: any
// number of senders may call Enqueue concurrently, but exactly one consumer
// may call Dequeue. It combines the cache locality of a ring buffer with
// the unbounded growth of a linked list by chaining fixed-size segments,
// following the segmented-mailbox pattern used elsewhere in the actor
// corpus for exactly this MPSC shape.
//
// Enqueue and Dequeue report the queue's size after the operation, which is
// the correctness-critical primitive the Frame's enqueueEvent and drain
// loop build on (the "new size == 1" and "remaining > 0" tests).
type EventQueue[T any] struct {
	head   *queueSegment[T] // consumer-only
	tail   atomic.Pointer[queueSegment[T]]
	length atomic.Int64
	sealed atomic.Bool
}

// NewEventQueue returns an empty EventQueue.
func NewEventQueue[T any]() *EventQueue[T] {
	first := new(queueSegment[T])
	q := &EventQueue[T]{head: first}
	q.tail.Store(first)
	return q
}

// Enqueue appends x and returns the queue's new size.
func (q *EventQueue[T]) Enqueue(x T) int {
	for {
		tail := q.tail.Load()
		idx := tail.writeIdx.Add(1) - 1
		if idx < queueSegmentSize {
			tail.data[idx] = x
			tail.filled[idx].Store(true)
			return int(q.length.Add(1))
		}

		// Segment is full; append a new one, or help move the tail if
		// another producer already has.
		next := tail.next.Load()
		if next == nil {
			seg := new(queueSegment[T])
			if tail.next.CompareAndSwap(nil, seg) {
				q.tail.CompareAndSwap(tail, seg)
			}
		} else {
			q.tail.CompareAndSwap(tail, next)
		}
	}
}

// Dequeue removes and returns the head event along with the queue's
// remaining size. ok is false if the queue was empty. Must be called from
// exactly one goroutine at a time.
func (q *EventQueue[T]) Dequeue() (x T, remaining int, ok bool) {
	seg := q.head
	for {
		enq := seg.writeIdx.Load()
		if enq > queueSegmentSize {
			enq = queueSegmentSize
		}
		if seg.deqIdx < enq {
			i := seg.deqIdx
			if !seg.filled[i].Load() {
				// Reserved by a producer but not yet published; treat as
				// empty rather than spin, since a Dequeue call is not
				// allowed to block.
				return x, int(q.length.Load()), false
			}
			x = seg.data[i]
			var zero T
			seg.data[i] = zero
			seg.deqIdx++
			remaining = int(q.length.Add(-1))
			return x, remaining, true
		}

		next := seg.next.Load()
		if next == nil {
			return x, int(q.length.Load()), false
		}
		if seg.deqIdx < queueSegmentSize {
			// Slots of seg were reserved after writeIdx was read above;
			// consume them before moving on to next.
			continue
		}
		q.head = next
		seg = next
	}
}

// Size returns the queue's current length.
func (q *EventQueue[T]) Size() int { return int(q.length.Load()) }

// Unreact marks the queue sealed: a terminator signal to anything still
// observing it. It does not discard already-buffered events.
func (q *EventQueue[T]) Unreact() { q.sealed.Store(true) }

// IsSealed reports whether Unreact has been called.
func (q *EventQueue[T]) IsSealed() bool { return q.sealed.Load() }
