package reactor

// Scheduler is the policy plugin that owns worker threads and batch
// budgets. Frame never calls executeBatch on itself — only a Scheduler
// does, and it must never call it concurrently for the same Frame.
//
// Scheduler *selection policy* (thread-per-reactor vs. pool, work
// stealing, priority) is explicitly out of scope for this package per
// spec §1; this interface is the contract a policy must satisfy, and
// pool_scheduler.go ships the one reference implementation.
type Scheduler interface {
	// Schedule requests that f be given a batch. May be called from any
	// goroutine, including from inside f's own batch.
	Schedule(f *Frame)
	// Unschedule is called once per batch, after the batch's release
	// path, with the fault (if any) that escaped it.
	Unschedule(system any, fault error)
	// Preschedule is a hook for thread-local setup, called before each
	// batch begins.
	Preschedule(system any)
	// NewState returns the per-batch record for f, owned entirely by the
	// Scheduler. It is called once, when f is created, and the same record
	// serves every batch; OnBatchStart resets it.
	NewState(f *Frame) SchedulerState
}

// SchedulerState is the opaque per-batch record a Scheduler hands to a
// Frame; it implements the cross-Connector fairness policy the drain loop
// delegates to (spec §4.6).
type SchedulerState interface {
	// OnBatchStart is called once at the beginning of a batch.
	OnBatchStart(f *Frame)
	// OnBatchEvent is called after each event delivery; false means the
	// batch's budget is exhausted and the Frame should be preempted.
	OnBatchEvent(f *Frame) bool
}
