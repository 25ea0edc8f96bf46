package executor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// State is the lifecycle state of a Task.
type State int

// Task lifecycle states. IDLE -> PENDING -> RUNNING -> one of the three
// terminal states; terminal states are absorbing.
const (
	StateIdle State = iota
	StatePending
	StateRunning
	StateCompleted
	StateFailed
	StateCanceled
)

// String renders the state the way it appears in logs and test failures.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StatePending:
		return "PENDING"
	case StateRunning:
		return "RUNNING"
	case StateCompleted:
		return "COMPLETED"
	case StateFailed:
		return "FAILED"
	case StateCanceled:
		return "CANCELED"
	default:
		return "UNKNOWN"
	}
}

func isTerminal(s State) bool {
	return s == StateCompleted || s == StateFailed || s == StateCanceled
}

// RunFunc is the single capability a Task's body exposes to the executor.
// It runs on whichever worker goroutine captures the task and must not be
// called more than once per Task.
type RunFunc func(ctx context.Context) error

// Task carries a unit of user work plus its readiness wiring (dependencies,
// triggers, a time trigger) and its lifecycle state.
//
// A Task is created IDLE. Wiring methods (AddDependency, AddTrigger,
// SetTimeTrigger) must be called before the task is submitted to an
// Executor; calling them afterwards is undefined behavior the core does not
// defend against, matching the wiring contract of the graph the task
// belongs to.
//
// Dependencies, triggers and subscribers are plain slices of *Task rather
// than the weak-pointer handles a reference-counted host language would
// need: Go's garbage collector already reclaims reference cycles, so a
// task's lifetime is simply "reachable from a GC root" (a queued Task on
// the executor's ready-queue, or a Task variable a caller still holds).
type Task struct {
	id uuid.UUID

	mu   sync.Mutex
	cond *sync.Cond

	state State
	err   error
	body  RunFunc

	dependencies []*Task
	triggers     []*Task
	timeTrigger  *time.Time
	timerArmed   bool
	subscribers  []*Task

	notificationHandler func(*Task)
}

// New creates a Task wrapping the given run body. The task starts IDLE.
func New(body RunFunc) *Task {
	t := &Task{
		id:    uuid.New(),
		state: StateIdle,
		body:  body,
	}
	t.cond = sync.NewCond(&t.mu)
	return t
}

// ID returns the task's identity, useful for correlating log lines and
// trace spans across a run. It is immutable and safe to read without
// synchronization.
func (t *Task) ID() uuid.UUID {
	return t.id
}

// Fingerprint is an 8-hex-digit digest of ID, short enough to sit in a log
// line or span attribute without the full UUID's width.
func (t *Task) Fingerprint() string {
	sum := xxhash.Sum64(t.id[:])
	return fmt.Sprintf("%08x", uint32(sum))
}

// AddDependency records that t may not execute on the dependency path until
// d has finished. It also subscribes t to d so that d's completion wakes t
// for re-evaluation.
func (t *Task) AddDependency(d *Task) {
	t.mu.Lock()
	t.dependencies = append(t.dependencies, d)
	t.mu.Unlock()
	d.addSubscriber(t)
}

// AddTrigger records that d finishing is, by itself, sufficient to make t
// ready on the trigger path. It also subscribes t to d.
func (t *Task) AddTrigger(d *Task) {
	t.mu.Lock()
	t.triggers = append(t.triggers, d)
	t.mu.Unlock()
	d.addSubscriber(t)
}

// SetTimeTrigger records the earliest instant at which t may execute,
// overwriting any previous value.
func (t *Task) SetTimeTrigger(at time.Time) {
	t.mu.Lock()
	t.timeTrigger = &at
	t.mu.Unlock()
}

// GetTimeTrigger returns the configured time trigger, if any.
func (t *Task) GetTimeTrigger() (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timeTrigger == nil {
		return time.Time{}, false
	}
	return *t.timeTrigger, true
}

func (t *Task) addSubscriber(s *Task) {
	t.mu.Lock()
	t.subscribers = append(t.subscribers, s)
	t.mu.Unlock()
}

// SetNotificationHandler installs the callback fired by notify(). The
// executor installs this on Submit; it is exported so alternative
// dispatchers can be built against the same Task type.
func (t *Task) SetNotificationHandler(h func(*Task)) {
	t.mu.Lock()
	t.notificationHandler = h
	t.mu.Unlock()
}

// notify invokes the installed handler, if any, with a handle to t. It is
// called outside t's mutex so the handler is free to call back into the
// executor (e.g. re-Submit) without risking a self-deadlock.
func (t *Task) notify() {
	t.mu.Lock()
	h := t.notificationHandler
	t.mu.Unlock()
	if h != nil {
		h(t)
	}
}

// Cancel moves t to CANCELED if it is not already terminal. A task already
// RUNNING keeps running to completion; its eventual complete()/setError()
// call will find the terminal state already occupied and become a no-op.
func (t *Task) Cancel() {
	t.finish(StateCanceled, nil, StateIdle, false)
}

// Wait blocks until t reaches a terminal state. It returns immediately if t
// is already terminal.
func (t *Task) Wait() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for !isTerminal(t.state) {
		t.cond.Wait()
	}
}

// State returns the task's current lifecycle state.
func (t *Task) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// IsCompleted reports whether t finished successfully.
func (t *Task) IsCompleted() bool { return t.State() == StateCompleted }

// IsFailed reports whether t's body returned an error (or panicked).
func (t *Task) IsFailed() bool { return t.State() == StateFailed }

// IsCanceled reports whether t was canceled.
func (t *Task) IsCanceled() bool { return t.State() == StateCanceled }

// IsFinished reports whether t reached any terminal state.
func (t *Task) IsFinished() bool { return isTerminal(t.State()) }

// Err returns the failure captured by the task body. It is only meaningful
// when IsFailed is true.
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// pend moves t to PENDING. Called by Executor.enqueue, both on Submit and on
// every resubmission; a task that is already RUNNING or terminal keeps its
// state, so a late notification can neither reset a finished task nor make
// a running one capturable a second time.
func (t *Task) pend() {
	t.mu.Lock()
	if t.state == StateIdle || t.state == StatePending {
		t.state = StatePending
	}
	t.mu.Unlock()
}

// capture atomically claims t for execution: PENDING -> RUNNING. Any other
// starting state fails the capture, and the caller (a worker) must drop the
// task rather than run it.
func (t *Task) capture() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StatePending {
		return false
	}
	t.state = StateRunning
	return true
}

// complete moves t from RUNNING to COMPLETED. A cancel that raced ahead of
// it and already made t terminal wins; this call becomes a no-op.
func (t *Task) complete() {
	t.finish(StateCompleted, nil, StateRunning, true)
}

// setError moves t from RUNNING to FAILED, recording err. Subject to the
// same terminal-state race resolution as complete.
func (t *Task) setError(err error) {
	t.finish(StateFailed, err, StateRunning, true)
}

// finish performs the shared tail of every terminal transition: validate
// the precondition, flip the state, drain subscribers outside the lock, and
// wake anyone blocked in Wait.
func (t *Task) finish(next State, err error, from State, requireFrom bool) {
	t.mu.Lock()
	if isTerminal(t.state) {
		t.mu.Unlock()
		return
	}
	if requireFrom && t.state != from {
		t.mu.Unlock()
		return
	}
	t.state = next
	t.err = err
	t.mu.Unlock()

	t.notifySubscribers()
	t.cond.Broadcast()
}

// notifySubscribers drains the subscriber list and calls notify() on each,
// outside t's mutex. A subscriber is notified at most once per drain, and
// the drain itself only ever happens from the first terminal transition.
func (t *Task) notifySubscribers() {
	t.mu.Lock()
	subs := t.subscribers
	t.subscribers = nil
	t.mu.Unlock()

	for _, s := range subs {
		s.notify()
	}
}

// armTimeout schedules fire to run once t's time trigger elapses, measuring
// the delay from now (the executor's clock, not the wall clock, so a fake
// clock in tests controls it). It is a no-op if t has no time trigger or a
// timer is already armed, so a task bounced through the queue by unrelated
// notifications never accumulates more than one pending timer.
func (t *Task) armTimeout(now time.Time, fire func()) {
	t.mu.Lock()
	if t.timerArmed || t.timeTrigger == nil {
		t.mu.Unlock()
		return
	}
	at := *t.timeTrigger
	t.timerArmed = true
	t.mu.Unlock()

	time.AfterFunc(at.Sub(now), fire)
}

// canBeExecuted evaluates the readiness predicate against now. It is
// deliberately permissive: a false positive here is impossible by
// construction, a false negative just means the caller waits for a
// dependency, a trigger, or the time trigger's timer to bring the task back.
func (t *Task) canBeExecuted(now time.Time) bool {
	t.mu.Lock()
	deps := t.dependencies
	trigs := t.triggers
	tt := t.timeTrigger
	t.mu.Unlock()

	if len(deps) == 0 && len(trigs) == 0 && tt == nil {
		return true
	}

	if tt != nil && !now.Before(*tt) {
		return true
	}

	for _, g := range trigs {
		if g.IsFinished() {
			return true
		}
	}

	if len(deps) > 0 {
		allDone := true
		for _, d := range deps {
			if !d.IsFinished() {
				allDone = false
				break
			}
		}
		if allDone {
			return true
		}
	}

	return false
}
