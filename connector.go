package reactor

import (
	"fmt"
	"sync/atomic"
)

// pendingConnector is the type-erased view of a Connector[T] that the
// Frame's drain loop and unrolledRing operate on; the Frame holds
// Connectors of differing event types side by side, which Go's lack of
// generic methods rules out expressing as a single generic collection.
type pendingConnector interface {
	connectorName() string
	isSealed() bool
	frameOf() *Frame
	// deliverOne dequeues and delivers one event to the connector's
	// handler, returning the queue's remaining size and whether an event
	// was actually delivered.
	deliverOne() (remaining int, delivered bool)
}

// Connector is a typed event queue plus routing identity, owned by exactly
// one Frame. The Channel value returned by Channel() may be shared by any
// number of senders; the Connector itself is never shared.
type Connector[T any] struct {
	name     string
	uid      uint64
	channel  *localChannel[T]
	queue    *EventQueue[T]
	owner    *Frame
	isDaemon bool
	shortcut bool
	extras   map[string]any
	handler  func(T)

	sealedOnce atomic.Bool
	// closed is the monitor-guarded "local channel closed" flag from spec
	// §4.8/§6, set before any other part of sealing is visible. It is
	// distinct from queue.IsSealed(), which is only the mailbox's own
	// terminator signal and is set later, outside the monitor.
	closed atomic.Bool
}

// ConnectorOptions configures OpenConnector. Name may be empty, in which
// case a unique "channel-<uid>-<k>" name is generated. NewQueue defaults to
// NewEventQueue[T]; overriding it is the factory hook the design calls for.
type ConnectorOptions[T any] struct {
	Name     string
	IsDaemon bool
	Shortcut bool
	Extras   map[string]any
	NewQueue func() *EventQueue[T]
	// Handler is invoked, on the Frame's executing goroutine, for every
	// event dequeued from this Connector.
	Handler func(T)
}

func (c *Connector[T]) connectorName() string { return c.name }
func (c *Connector[T]) isSealed() bool        { return c.closed.Load() || c.queue.IsSealed() }
func (c *Connector[T]) frameOf() *Frame       { return c.owner }

func (c *Connector[T]) deliverOne() (remaining int, delivered bool) {
	x, remaining, ok := c.queue.Dequeue()
	if !ok {
		return remaining, false
	}
	if c.handler != nil {
		c.handler(x)
	}
	return remaining, true
}

// enqueue implements spec §4.3: append to the queue, and if the queue was
// empty, register the Connector as pending and schedule the Frame if it
// was idle.
func (c *Connector[T]) enqueue(x T) bool {
	if c.owner.HasTerminated() || c.closed.Load() || c.queue.IsSealed() {
		return false
	}
	size := c.queue.Enqueue(x)
	if size == 1 {
		c.owner.onConnectorBecameNonEmpty(c)
	}
	return true
}

// Name returns the connector's name, unique within its Frame.
func (c *Connector[T]) Name() string { return c.name }

// IsDaemon reports whether this Connector is exempt from its Frame's
// non-daemon termination precondition.
func (c *Connector[T]) IsDaemon() bool { return c.isDaemon }

// Frame returns the owning Frame.
func (c *Connector[T]) Frame() *Frame { return c.owner }

// Channel returns the outward-facing Channel value for this connector.
func (c *Connector[T]) Channel() Channel[T] { return c.channel }

// Extra looks up an opaque value stashed under tag at creation time.
func (c *Connector[T]) Extra(tag string) (any, bool) {
	v, ok := c.extras[tag]
	return v, ok
}

// OpenConnector implements spec §4.2: called only by the goroutine
// currently executing f's batch (or, for the initial connectors, by
// System.Spawn prior to scheduling). It retries until it wins the
// registry's CAS race.
//
// Go has no generic methods, so this is a free function rather than
// Frame.OpenConnector[T] — the idiomatic shape for a type-parameterized
// operation on a non-generic receiver.
func OpenConnector[T any](f *Frame, opts ConnectorOptions[T]) (*Connector[T], error) {
	if opts.NewQueue == nil {
		opts.NewQueue = NewEventQueue[T]
	}

	for {
		uid := f.idCounter.Add(1)

		info := globalRegistry.ForName(f.name)
		if info.frame == nil {
			return nil, ErrFrameTerminated
		}
		if f.HasTerminated() {
			return nil, ErrFrameTerminated
		}

		effectiveName := opts.Name
		var prior slotEntry
		if effectiveName != "" {
			if entry, exists := info.connectors[effectiveName]; exists {
				if entry.isBound() {
					return nil, ErrNameInUse
				}
				prior = entry
			}
		} else {
			for k := 0; ; k++ {
				candidate := fmt.Sprintf("channel-%d-%d", uid, k)
				if _, exists := info.connectors[candidate]; !exists {
					effectiveName = candidate
					break
				}
			}
		}

		connector := &Connector[T]{
			name:     effectiveName,
			uid:      uid,
			queue:    opts.NewQueue(),
			owner:    f,
			isDaemon: opts.IsDaemon,
			shortcut: opts.Shortcut,
			extras:   opts.Extras,
			handler:  opts.Handler,
		}
		connector.channel = &localChannel[T]{connector: connector}

		nextInfo := info.withConnector(effectiveName, connector.channel)
		if !globalRegistry.TryReplace(f.name, info, nextInfo) {
			continue
		}

		for _, listener := range prior.listeners {
			listener <- connector.channel
			close(listener)
		}

		if !opts.IsDaemon {
			f.monitor.Lock()
			f.nonDaemonCount++
			f.monitor.Unlock()
		}

		return connector, nil
	}
}

// SealConnector implements spec §4.8: an irrevocable close. Sealing twice
// is a no-op (the idempotent choice from the two the spec allows for
// "idempotent seal").
func SealConnector[T any](c *Connector[T]) {
	if c.sealedOnce.Swap(true) {
		return
	}

	f := c.owner

	// Mark the local channel closed first, under the monitor, so no
	// concurrent EnqueueEvent can observe isSealed()==false once this call
	// has started; unreact() is the mailbox's own terminator signal and is
	// only fired once the monitor-guarded state is already committed.
	f.monitor.Lock()
	c.closed.Store(true)
	if !c.isDaemon {
		f.nonDaemonCount--
	}
	f.monitor.Unlock()

	for {
		info := globalRegistry.ForName(f.name)
		if _, exists := info.connectors[c.name]; !exists {
			break
		}
		next := info.withoutConnector(c.name)
		if globalRegistry.TryReplace(f.name, info, next) {
			break
		}
	}

	assertInside(f)
	c.queue.Unreact()
}
