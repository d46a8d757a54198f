package reactor

const ringChunkSize = 16

// ringChunk is one fixed-size array node of an unrolledRing.
type ringChunk struct {
	items [ringChunkSize]pendingConnector
	next  *ringChunk
}

// unrolledRing is the FIFO of Connectors with non-empty event queues — a
// Frame's "pending queues" list. Unlike EventQueue, it is always mutated
// under the owning Frame's Monitor, so it carries no atomics of its own;
// the unrolled (chunked) layout exists purely to avoid a pointer-chasing
// node per entry on the hot push/pop path.
type unrolledRing struct {
	head, tail     *ringChunk
	headIdx, tailIdx int
	count          int
}

// newUnrolledRing returns an empty ring.
func newUnrolledRing() *unrolledRing {
	c := &ringChunk{}
	return &unrolledRing{head: c, tail: c}
}

// pushBack appends c. Caller holds the Frame's monitor.
func (r *unrolledRing) pushBack(c pendingConnector) {
	if r.tailIdx == ringChunkSize {
		next := &ringChunk{}
		r.tail.next = next
		r.tail = next
		r.tailIdx = 0
	}
	r.tail.items[r.tailIdx] = c
	r.tailIdx++
	r.count++
}

// popFront removes and returns the head entry, if any. Caller holds the
// Frame's monitor.
func (r *unrolledRing) popFront() (pendingConnector, bool) {
	if r.count == 0 {
		return nil, false
	}
	if r.headIdx == ringChunkSize {
		r.head = r.head.next
		r.headIdx = 0
	}
	item := r.head.items[r.headIdx]
	r.head.items[r.headIdx] = nil
	r.headIdx++
	r.count--
	if r.headIdx == ringChunkSize && r.head.next != nil {
		r.head = r.head.next
		r.headIdx = 0
	}
	return item, true
}

// len reports the number of pending Connectors currently queued.
func (r *unrolledRing) len() int { return r.count }
