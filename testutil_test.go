package reactor

import "sync"

// syncScheduler runs Frame batches on the calling goroutine instead of
// handing them to worker goroutines, so tests can drive ExecuteBatch
// deterministically without racing a pool worker, while still exercising
// the real Scheduler/SchedulerState contract.
//
// Schedule cannot simply call f.ExecuteBatch() inline: a batch that ends
// with pendingQueues still non-empty (preempted mid-drain) calls
// Schedule(f) again before its own ExecuteBatch call has returned, which
// would recurse into ExecuteBatch on the same goroutine and trip the
// NestedExecution guard. Scheduled frames are queued instead, and drained
// by whichever call to Schedule finds the drain loop idle.
type syncScheduler struct {
	mu         sync.Mutex
	batchSize  int
	scheduled  []*Frame
	unschedule []error
	queue      []*Frame
	draining   bool
}

func newSyncScheduler(batchSize int) *syncScheduler {
	if batchSize <= 0 {
		batchSize = 64
	}
	return &syncScheduler{batchSize: batchSize}
}

func (s *syncScheduler) Schedule(f *Frame) {
	s.mu.Lock()
	s.scheduled = append(s.scheduled, f)
	s.queue = append(s.queue, f)
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.draining = false
		s.mu.Unlock()
	}()

	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			return
		}
		next := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		next.ExecuteBatch()
	}
}

func (s *syncScheduler) Unschedule(system any, fault error) {
	s.mu.Lock()
	s.unschedule = append(s.unschedule, fault)
	s.mu.Unlock()
}

func (s *syncScheduler) Preschedule(system any) {}

func (s *syncScheduler) NewState(f *Frame) SchedulerState {
	return &poolSchedulerState{batchSize: s.batchSize}
}

var _ Scheduler = (*syncScheduler)(nil)

// noopScheduler never runs a batch. It exists so tests can enqueue events
// and observe the resulting pendingQueues/Monitor state directly, without a
// real Scheduler draining them first.
type noopScheduler struct {
	mu        sync.Mutex
	scheduled []*Frame
}

func (s *noopScheduler) Schedule(f *Frame) {
	s.mu.Lock()
	s.scheduled = append(s.scheduled, f)
	s.mu.Unlock()
}

func (s *noopScheduler) Unschedule(system any, fault error) {}

func (s *noopScheduler) Preschedule(system any) {}

func (s *noopScheduler) NewState(f *Frame) SchedulerState {
	return &poolSchedulerState{batchSize: 64}
}

var _ Scheduler = (*noopScheduler)(nil)

// recordingReactor appends every delivered event to a guarded slice, and
// optionally panics on a configured trigger — used to drive the fault-path
// scenario.
type recordingReactor struct {
	mu       sync.Mutex
	events   []any
	panicOn  func(event any) bool
	panicVal any
}

func (r *recordingReactor) OnEvent(event any) {
	if r.panicOn != nil && r.panicOn(event) {
		panic(r.panicVal)
	}
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
}

func (r *recordingReactor) snapshot() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]any, len(r.events))
	copy(out, r.events)
	return out
}

func newRecordingProto(reactor *recordingReactor) Proto {
	return ProtoFunc(func(f *Frame) (Reactor, error) { return reactor, nil })
}

// eventCollector gathers LifecycleEvents emitted on a Frame's SysEmitter.
type eventCollector struct {
	mu   sync.Mutex
	seen []LifecycleEvent
}

func newEventCollector(f *Frame) *eventCollector {
	c := &eventCollector{}
	f.SysEmitter().Subscribe(func(ev LifecycleEvent) {
		c.mu.Lock()
		c.seen = append(c.seen, ev)
		c.mu.Unlock()
	})
	return c
}

func (c *eventCollector) snapshot() []LifecycleEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]LifecycleEvent, len(c.seen))
	copy(out, c.seen)
	return out
}
