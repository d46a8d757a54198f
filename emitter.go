package reactor

import "sync"

// LifecycleEvent is emitted on a Frame's sysEmitter. The concrete types
// below are emitted in the orderings fixed by spec §4.5 and §4.9:
// ReactorStarted, ReactorScheduled, ReactorPreempted, ReactorDied,
// ReactorTerminated.
type LifecycleEvent interface {
	FrameUID() uint64
}

type ReactorStarted struct{ Frame uint64 }
type ReactorScheduled struct{ Frame uint64 }
type ReactorPreempted struct{ Frame uint64 }
type ReactorDied struct {
	Frame uint64
	Err   error
}
type ReactorTerminated struct{ Frame uint64 }

func (e ReactorStarted) FrameUID() uint64    { return e.Frame }
func (e ReactorScheduled) FrameUID() uint64  { return e.Frame }
func (e ReactorPreempted) FrameUID() uint64  { return e.Frame }
func (e ReactorDied) FrameUID() uint64       { return e.Frame }
func (e ReactorTerminated) FrameUID() uint64 { return e.Frame }

// Emitter is an intrusive multicast signal: subscribers are invoked
// inline, synchronously, on the goroutine that calls emit — delivery is
// ordered with respect to the batch that produced the event, per the
// design note on sysEmitter.
type Emitter struct {
	mu   sync.Mutex
	subs []func(LifecycleEvent)
}

// Subscribe registers fn and returns a function that removes it.
func (e *Emitter) Subscribe(fn func(LifecycleEvent)) (unsubscribe func()) {
	e.mu.Lock()
	e.subs = append(e.subs, fn)
	idx := len(e.subs) - 1
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if idx < len(e.subs) {
			e.subs[idx] = nil
		}
	}
}

func (e *Emitter) emit(ev LifecycleEvent) {
	e.mu.Lock()
	subs := make([]func(LifecycleEvent), len(e.subs))
	copy(subs, e.subs)
	e.mu.Unlock()

	for _, fn := range subs {
		if fn != nil {
			fn(ev)
		}
	}
}
