// Package executor runs a graph of Tasks on a fixed pool of worker
// goroutines. Readiness (dependencies, triggers, a time trigger) is
// evaluated by the worker that pops a task off the queue; a task that isn't
// ready yet is dropped from the queue and left to a dependency/trigger
// notification or an armed timer to bring it back via resubmission.
package executor

import (
	"context"
	"sync"

	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"

	"go.trai.ch/ergo/internal/core/ports"
)

// Executor dispatches Tasks across a fixed-size worker pool using a FIFO
// ready-queue guarded by a mutex/condition-variable pair, mirroring the
// scheduler this package was grown out of.
type Executor struct {
	threadCount int
	logger      ports.Logger
	tracer      ports.Tracer
	clock       ports.Clock

	mu       sync.Mutex
	cond     *sync.Cond
	queue    []*Task
	finished bool

	eg     *errgroup.Group
	egCtx  context.Context
}

// New starts an Executor's worker pool immediately; there is no separate
// Start step. Submit queues work, Close stops accepting new work and waits
// for the pool to drain.
func New(opts ...Option) *Executor {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	eg, ctx := errgroup.WithContext(context.Background())

	e := &Executor{
		threadCount: cfg.threadCount,
		logger:      cfg.logger,
		tracer:      cfg.tracer,
		clock:       cfg.clock,
		eg:          eg,
		egCtx:       ctx,
	}
	e.cond = sync.NewCond(&e.mu)

	for i := 0; i < e.threadCount; i++ {
		e.eg.Go(e.workerLoop)
	}

	return e
}

// Submit enqueues t for dispatch and installs the notification handler that
// re-submits t whenever one of its dependencies or triggers finishes.
// Submitting to a closed Executor, or submitting an already-finished task,
// silently drops the task rather than returning an error.
func (e *Executor) Submit(t *Task) {
	e.mu.Lock()
	if e.finished {
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()

	t.SetNotificationHandler(func(self *Task) {
		e.resubmit(self)
	})

	e.enqueue(t)
}

// resubmit is the notification handler installed on every task passed to
// Submit. It re-enters the queue for re-evaluation; a task that already
// reached a terminal state (e.g. it was canceled, or a prior capture already
// ran it) is silently skipped by enqueue instead of being reset to PENDING.
func (e *Executor) resubmit(t *Task) {
	e.mu.Lock()
	if e.finished {
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()
	e.enqueue(t)
}

func (e *Executor) enqueue(t *Task) {
	if t.IsFinished() {
		return
	}
	t.pend()

	e.mu.Lock()
	e.queue = append(e.queue, t)
	e.mu.Unlock()
	e.cond.Signal()
}

// workerLoop is the dispatch algorithm run by every pool goroutine: wait for
// work, pop the front of the queue, check readiness, and either capture-and-
// run it or drop it, arming a timer first if a time trigger is still ahead.
func (e *Executor) workerLoop() error {
	for {
		e.mu.Lock()
		for len(e.queue) == 0 && !e.finished {
			e.cond.Wait()
		}
		if e.finished {
			e.mu.Unlock()
			return nil
		}

		task := e.queue[0]
		e.queue = e.queue[1:]
		e.mu.Unlock()

		if task.State() != StatePending {
			// Already captured or finished by another path (e.g. Cancel); drop.
			continue
		}

		now := e.clock.Now()
		if !task.canBeExecuted(now) {
			// A task with a time trigger still ahead gets a timer (armed at
			// most once) instead of being bounced around the queue; a task
			// without one relies entirely on a dependency or trigger
			// notification to resubmit it. Either way it is dropped from the
			// queue here.
			task.armTimeout(now, func() { e.resubmit(task) })
			continue
		}

		if !task.capture() {
			continue
		}

		e.runTask(task)
	}
}

// runTask executes a captured task's body inside a span, recovering from a
// panic and recording it as a normal task failure rather than letting it
// take down the worker goroutine.
func (e *Executor) runTask(t *Task) {
	ctx, span := e.tracer.Start(e.egCtx, "task.run")
	span.SetAttribute("task.id", t.ID().String())
	span.SetAttribute("task.fingerprint", t.Fingerprint())
	defer span.End()

	err := e.safeRun(ctx, t)
	if err != nil {
		span.RecordError(err)
		e.logger.Error(zerr.With(zerr.Wrap(err, "task failed"), "task.fingerprint", t.Fingerprint()))
		t.setError(err)
		return
	}

	t.complete()
}

func (e *Executor) safeRun(ctx context.Context, t *Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = zerr.With(ErrTaskPanicked, "recovered", r)
		}
	}()
	return t.body(ctx)
}

// Close is a destructive shutdown: it purges every task still sitting in the
// ready-queue, then blocks until whichever tasks were already captured and
// running finish. A queued-but-uncaptured task is left in PENDING forever —
// Close does not run it, and does not notify it either — it is simply
// dropped, the same way the pool it was grown out of clears its deque before
// joining its worker threads. A task still waiting on a dependency, a
// trigger, or an armed timer at the moment Close is called never gets a
// chance to resubmit itself, since resubmit becomes a no-op once finished is
// set.
func (e *Executor) Close() error {
	e.mu.Lock()
	e.finished = true
	e.queue = nil
	e.mu.Unlock()
	e.cond.Broadcast()

	return e.eg.Wait()
}
