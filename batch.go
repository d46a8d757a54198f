package reactor

import "fmt"

// ExecuteBatch implements spec §4.5. The Scheduler must never call this
// concurrently for the same Frame; activeCount is the isolation token that
// asserts (rather than recovers from) a violation of that contract.
func (f *Frame) ExecuteBatch() {
	f.scheduler.Preschedule(f.system())

	if !f.activeCount.CompareAndSwap(0, 1) {
		panic(fmt.Sprintf("reactor: isolation violated: frame %q already executing", f.name))
	}

	if err := enterExecution(f); err != nil {
		f.activeCount.Store(0)
		panic(err)
	}
	defer exitExecution()

	var fault error
	func() {
		defer func() {
			if r := recover(); r != nil {
				fault = normalizePanic(r)
			}
		}()
		f.runBatchBody()
	}()

	if fault != nil {
		if !f.HasTerminated() {
			f.sysEmitter.emit(ReactorDied{Frame: f.uid, Err: fault})
		}
		f.checkTerminated(true)
	} else {
		f.checkTerminated(false)
	}

	f.activeCount.Store(0)

	f.monitor.Lock()
	mustSchedule := false
	if f.pendingQueues.len() > 0 && f.lifecycleState != lifecycleTerminated {
		mustSchedule = true
	} else {
		f.active = false
	}
	f.monitor.Unlock()

	f.scheduler.Unschedule(f.system(), fault)
	if mustSchedule {
		f.scheduler.Schedule(f)
	}

	if fault != nil {
		// Propagate after the release path has fully run, so the
		// Scheduler's worker can log or crash per its own policy.
		panic(&FaultError{Frame: f.name, Err: fault})
	}
}

// runBatchBody implements steps 4-7 of spec §4.5: the Fresh check and
// reactor construction, the ReactorScheduled emission, the drain loop, and
// the ReactorPreempted emission.
func (f *Frame) runBatchBody() {
	f.monitor.Lock()
	wasFresh := f.lifecycleState == lifecycleFresh
	if wasFresh {
		f.lifecycleState = lifecycleRunning
	}
	f.monitor.Unlock()

	if wasFresh {
		safeDebugCall(func() { f.debug.ReactorStarted(f) })
		reactor, err := f.proto.New(f)
		if err != nil {
			panic(err)
		}
		f.monitor.Lock()
		f.reactor = reactor
		f.monitor.Unlock()
		f.sysEmitter.emit(ReactorStarted{Frame: f.uid})
	}

	f.sysEmitter.emit(ReactorScheduled{Frame: f.uid})

	f.schedulerState.OnBatchStart(f)
	f.drainLoop()

	f.sysEmitter.emit(ReactorPreempted{Frame: f.uid})
}

// drainLoop implements spec §4.6 (drain with preemption) followed by §4.7
// (spindown) once the pending list empties.
func (f *Frame) drainLoop() {
	f.monitor.Lock()
	f.spindownCtl.beginBatch()
	f.monitor.Unlock()

	for {
		current, ok := f.popNextPending()
		if !ok {
			break
		}
		if f.drainConnector(current) {
			return // preempted
		}
	}

	f.spinAfterExhaustion()
}

// drainConnector drains current until either the scheduler preempts
// (returns true) or the connector has no more, or sealed, events to offer
// (returns false, so the caller moves to the next pending Connector).
//
// Tie-break: while current still has events and is not sealed, it is
// drained again before any other Connector advances — locality over
// fairness within a batch, per spec §4.6.
func (f *Frame) drainConnector(current pendingConnector) bool {
	for {
		remaining, delivered := current.deliverOne()
		if !delivered {
			// The head slot is reserved but not yet published while later
			// events are already counted; keep the Connector pending.
			if remaining > 0 && !current.isSealed() {
				f.requeuePending(current)
			}
			return false
		}

		if !f.schedulerState.OnBatchEvent(f) {
			if remaining > 0 && !current.isSealed() {
				f.requeuePending(current)
			}
			return true
		}

		if remaining > 0 && !current.isSealed() {
			continue
		}
		return false
	}
}

// spinAfterExhaustion implements spec §4.7: after the drain loop empties
// all pending queues, spin briefly for a follow-up event before releasing.
func (f *Frame) spinAfterExhaustion() {
	hit, score := f.spindownCtl.spin(f.popNextPending)
	f.spindownCtl.afterBatch(score)

	for hit != nil {
		if f.drainConnector(hit) {
			return
		}
		hit, _ = f.popNextPending()
	}
}
