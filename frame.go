package reactor

import (
	"fmt"
	"sync/atomic"
)

type lifecycleState int32

const (
	lifecycleFresh lifecycleState = iota
	lifecycleRunning
	lifecycleTerminated
)

func (s lifecycleState) String() string {
	switch s {
	case lifecycleFresh:
		return "Fresh"
	case lifecycleRunning:
		return "Running"
	case lifecycleTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// Frame is the unit of reactor identity and scheduling: the per-reactor
// scheduling and execution record described in spec §3.
type Frame struct {
	uid   uint64
	proto Proto
	sys   *System

	name string
	url  string

	monitor *Monitor

	idCounter   atomic.Uint64 // allocates connector uids
	activeCount atomic.Int32  // isolation token: 0 idle, 1 executing

	// reactor, nonDaemonCount, active, lifecycleState and pendingQueues are
	// written under monitor. The fields after them are set before the Frame
	// is first scheduled and are not guarded by it.
	reactor        Reactor
	nonDaemonCount int
	active         bool
	lifecycleState lifecycleState
	pendingQueues  *unrolledRing

	sysEmitter *Emitter
	debug      DebugAPI

	defaultConnector  *Connector[any]
	internalConnector *Connector[any]

	scheduler      Scheduler
	schedulerState SchedulerState

	spindownCtl *spindownController
}

func newFrame(sys *System, name, url string, proto Proto, cfg Config, seed int64) *Frame {
	f := &Frame{
		uid:           nextFrameUID(),
		proto:         proto,
		sys:           sys,
		name:          name,
		url:           url,
		monitor:       NewMonitor(),
		pendingQueues: newUnrolledRing(),
		sysEmitter:    &Emitter{},
		debug:         sys.debug,
		scheduler:     sys.scheduler,
		spindownCtl:   newSpindownController(cfg, seed),
	}
	f.schedulerState = f.scheduler.NewState(f)
	return f
}

// UID returns the Frame's process-unique monotonic identifier.
func (f *Frame) UID() uint64 { return f.uid }

// Name returns the Frame's registry name.
func (f *Frame) Name() string { return f.name }

// URL returns the Frame's stable channel-addressing identity.
func (f *Frame) URL() string { return f.url }

// Reactor returns the constructed user object, or nil before the first
// batch has run.
func (f *Frame) Reactor() Reactor {
	f.monitor.Lock()
	defer f.monitor.Unlock()
	return f.reactor
}

// LifecycleState returns the Frame's current lifecycle state.
func (f *Frame) LifecycleState() string {
	f.monitor.Lock()
	defer f.monitor.Unlock()
	return f.lifecycleState.String()
}

// HasTerminated reports whether the Frame has reached Terminated.
func (f *Frame) HasTerminated() bool {
	f.monitor.Lock()
	defer f.monitor.Unlock()
	return f.lifecycleState == lifecycleTerminated
}

// HasPendingEvents reports whether any Connector is currently pending.
func (f *Frame) HasPendingEvents() bool {
	f.monitor.Lock()
	defer f.monitor.Unlock()
	return f.pendingQueues.len() > 0
}

// WaitForPendingOrTerminated blocks the calling goroutine on the Frame's
// Monitor until either some Connector becomes pending or the Frame
// terminates, whichever happens first, rather than polling HasPendingEvents.
// Returns whether a Connector is pending; false means the Frame terminated
// with none.
func (f *Frame) WaitForPendingOrTerminated() bool {
	f.monitor.Lock()
	defer f.monitor.Unlock()
	for f.pendingQueues.len() == 0 && f.lifecycleState != lifecycleTerminated {
		f.monitor.Wait()
	}
	return f.pendingQueues.len() > 0
}

// EstimateTotalPendingEvents sums the queue length of every Connector
// currently bound under this Frame's name. It is an estimate: sizes are
// read without a consistent snapshot across Connectors.
func (f *Frame) EstimateTotalPendingEvents() int {
	info := globalRegistry.ForName(f.name)
	total := 0
	for _, entry := range info.connectors {
		if sized, ok := entry.bound.(interface{ pendingSize() int }); ok {
			total += sized.pendingSize()
		}
	}
	return total
}

// SysEmitter exposes the Frame's lifecycle event stream to the reactor
// itself and to external observers.
func (f *Frame) SysEmitter() *Emitter { return f.sysEmitter }

// DefaultConnector returns the Frame's pre-opened default Connector.
func (f *Frame) DefaultConnector() *Connector[any] { return f.defaultConnector }

// InternalConnector returns the Frame's pre-opened daemon Connector used
// for internal bookkeeping traffic.
func (f *Frame) InternalConnector() *Connector[any] { return f.internalConnector }

// Activate implements spec §4.4: forces a scheduling pass even without
// pending events. Used to bootstrap the first batch and to deliver
// lifecycle signals.
func (f *Frame) Activate(scheduleEvenIfActive bool) {
	f.monitor.Lock()
	should := !f.active || scheduleEvenIfActive
	if should {
		f.active = true
	}
	f.monitor.Unlock()

	if should {
		f.scheduler.Schedule(f)
	}
}

// onConnectorBecameNonEmpty implements the monitor-guarded half of spec
// §4.3's enqueueEvent: register c as pending, and if the Frame was idle,
// mark it active and schedule it.
//
// A caller's enqueue() check of HasTerminated()/isSealed() can pass just
// before a concurrent checkTerminated transition commits; both paths share
// this Frame's monitor, so re-checking lifecycleState here, under the same
// lock checkTerminated holds when it transitions, closes that window
// instead of unconditionally rescheduling a Terminated Frame.
func (f *Frame) onConnectorBecameNonEmpty(c pendingConnector) {
	f.monitor.Lock()
	if f.lifecycleState == lifecycleTerminated {
		f.monitor.Unlock()
		return
	}
	f.pendingQueues.pushBack(c)
	mustSchedule := false
	if !f.active {
		f.active = true
		mustSchedule = true
	}
	f.monitor.Broadcast()
	f.monitor.Unlock()

	if mustSchedule {
		f.scheduler.Schedule(f)
	}
}

// popNextPending removes and returns the next pending Connector.
func (f *Frame) popNextPending() (pendingConnector, bool) {
	f.monitor.Lock()
	defer f.monitor.Unlock()
	return f.pendingQueues.popFront()
}

// requeuePending re-adds c to the pending list (used when a batch is
// preempted mid-Connector).
func (f *Frame) requeuePending(c pendingConnector) {
	f.monitor.Lock()
	f.pendingQueues.pushBack(c)
	f.monitor.Broadcast()
	f.monitor.Unlock()
}

// checkTerminated implements spec §4.9.
func (f *Frame) checkTerminated(forced bool) {
	f.monitor.Lock()
	shouldEmit := false
	if f.lifecycleState == lifecycleRunning {
		if forced || (f.pendingQueues.len() == 0 && f.nonDaemonCount == 0) {
			f.lifecycleState = lifecycleTerminated
			shouldEmit = true
		}
	}
	if shouldEmit {
		f.monitor.Broadcast()
	}
	f.monitor.Unlock()

	if !shouldEmit {
		return
	}

	safeDebugCall(func() { f.debug.ReactorTerminated(f.reactor) })
	f.sysEmitter.emit(ReactorTerminated{Frame: f.uid})
	globalRegistry.retireAllConnectors(f.name)
	globalRegistry.TryRelease(f.name)
}

// system returns the owning System, as the `any` the Scheduler contract's
// Preschedule/Unschedule hooks expect (spec's "system" parameter).
func (f *Frame) system() any { return f.sys }

func (f *Frame) String() string {
	return fmt.Sprintf("Frame{uid=%d name=%q state=%s}", f.uid, f.name, f.LifecycleState())
}
