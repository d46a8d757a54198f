package reactor

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// PoolSchedulerOptions configures NewPoolScheduler.
type PoolSchedulerOptions struct {
	// Workers is the fixed worker-goroutine count. Defaults to
	// runtime.GOMAXPROCS(0).
	Workers int
	// BatchSize is the number of events a Frame may deliver per batch
	// before being preempted. Defaults to 64.
	BatchSize int
	// RunQueueSize bounds the number of Frames waiting for a worker.
	// Defaults to 1024.
	RunQueueSize int
}

// poolScheduler is the one reference Scheduler shipped with this package —
// a fixed-size worker pool draining a run-queue of ready Frames. It is
// grounded on the CAS-driven schedule/run/reschedule-on-late-arrival
// pattern used by a goroutine-backed actor inbox elsewhere in the actor
// corpus, generalized from one goroutine per actor to a shared pool.
//
// Scheduler selection policy beyond this one pool implementation is out of
// scope for this package; Frame only ever depends on the Scheduler
// interface.
type poolScheduler struct {
	runQueue  chan *Frame
	batchSize int

	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group
}

var _ Scheduler = (*poolScheduler)(nil)

// NewPoolScheduler starts a pool of worker goroutines and returns a ready
// Scheduler. Call Close to stop them.
func NewPoolScheduler(opts PoolSchedulerOptions) *poolScheduler {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 64
	}
	if opts.RunQueueSize <= 0 {
		opts.RunQueueSize = 1024
	}

	ctx, cancel := context.WithCancel(context.Background())
	group, gctx := errgroup.WithContext(ctx)

	s := &poolScheduler{
		runQueue:  make(chan *Frame, opts.RunQueueSize),
		batchSize: opts.BatchSize,
		ctx:       ctx,
		cancel:    cancel,
		group:     group,
	}

	for i := 0; i < opts.Workers; i++ {
		group.Go(func() error {
			s.work(gctx)
			return nil
		})
	}

	return s
}

func (s *poolScheduler) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case f := <-s.runQueue:
			s.runOne(f)
		}
	}
}

func (s *poolScheduler) runOne(f *Frame) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("reactor: frame batch faulted", "frame", f.name, "error", r)
		}
	}()
	f.ExecuteBatch()
}

// Schedule enqueues f for execution by some worker. Blocks if the run
// queue is momentarily full rather than drop the request, which would
// violate no-lost-schedule; unblocks without enqueuing once Close has been
// called.
func (s *poolScheduler) Schedule(f *Frame) {
	select {
	case s.runQueue <- f:
	case <-s.ctx.Done():
	}
}

func (s *poolScheduler) Unschedule(system any, fault error) {}

func (s *poolScheduler) Preschedule(system any) {}

func (s *poolScheduler) NewState(f *Frame) SchedulerState {
	return &poolSchedulerState{batchSize: s.batchSize}
}

// Close cancels the worker context and waits for every worker to drain.
func (s *poolScheduler) Close() error {
	s.cancel()
	return s.group.Wait()
}

// poolSchedulerState is the concrete fairness policy: a fixed event budget
// per batch.
type poolSchedulerState struct {
	batchSize int
	delivered int
}

func (st *poolSchedulerState) OnBatchStart(f *Frame) { st.delivered = 0 }

func (st *poolSchedulerState) OnBatchEvent(f *Frame) bool {
	st.delivered++
	return st.delivered < st.batchSize
}
