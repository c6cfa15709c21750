package cortado

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
)

// Operation is the piece of work a [Task] is given to do, per spec §1:
// it returns T, or fails with an error.
type Operation[T any] func() (T, error)

// Task is the owning, move-only handle to an in-flight or completed
// asynchronous computation (spec §4.3). Go structs are freely copyable,
// so "move-only" is enforced dynamically: consumed tracks whether this
// handle's reservation has already been released (see Open Question 3
// in DESIGN.md), and a second Get/Release after the first panics
// with ErrProtocol, mirroring spec §7's "awaiting a moved-from Task" and
// "contract violations" clause.
type Task[T any] struct {
	p        *promise[T]
	id       uuid.UUID
	consumed *atomic.Bool
}

// Go spawns op onto opts' scheduler (the package default background
// scheduler unless overridden with [WithScheduler]) and returns a Task
// bound to its promise, mirroring spec §1(b)/§4.3: "construct by
// awaiting an asynchronous function".
func Go[T any](op Operation[T], opts ...Option) Task[T] {
	cfg := newGoConfig()
	for _, o := range opts {
		o(cfg)
	}

	p := newPromise[T](cfg.allocator, cfg.userStorage)
	id := uuid.New()

	logTaskSpawned(id)

	cfg.scheduler.Schedule(func() {
		logTaskRunning(id)
		runOperation(p, id, op)
	})

	return Task[T]{p: p, id: id, consumed: new(atomic.Bool)}
}

func runOperation[T any](p *promise[T], id uuid.UUID, op Operation[T]) {
	var (
		result T
		opErr  error
	)
	panicErr := tryRun(func() {
		result, opErr = op()
	})
	if panicErr != nil {
		p.onUnhandledError(panicErr)
		logTaskPanicked(id, panicErr)
		return
	}
	if opErr != nil {
		p.resolveError(opErr)
		logTaskFailed(id, opErr)
		return
	}
	p.resolveValue(result)
	logTaskCompleted(id)
}

// ID returns the correlation id assigned to t when it was spawned by
// [Go] (§5.11 of SPEC_FULL.md).
func (t Task[T]) ID() uuid.UUID { return t.id }

// IsReady reports whether t's promise has already produced a result
// (spec §4.3).
func (t Task[T]) IsReady() bool { return t.p.ready() }

// Wait blocks until t completes or ctx is done, whichever happens
// first, delegating to the promise's completion event (spec §4.3,
// §6 "Task.wait_for(ms)" generalised to any context.Context deadline).
func (t Task[T]) Wait(ctx context.Context) error {
	return t.p.wait(ctx.Done())
}

// Get blocks until t completes, then returns its result (spec §4.3
// Task.get). It releases this handle's refcount reservation exactly
// once; calling Get or [Task.Release] a second time on the same Task
// panics with an [ErrProtocol], per spec §7's contract-violation clause.
func (t Task[T]) Get() (T, error) {
	<-t.p.done
	t.release()
	return t.p.get()
}

// MustGet is like Get but panics if the task failed, reproducing the
// original panic when the failure came from one (see rethrow in
// panic.go). This is the closest honest analogue, in a language without
// exceptions, of spec §4.2's "rethrows the stored error".
func (t Task[T]) MustGet() T {
	v, err := t.Get()
	if err != nil {
		rethrow(err)
	}
	return v
}

// Release drops this handle's reservation on the promise's refcount
// without reading the result, for callers that intend to discard a Task
// (spec §4.3's "destroy"). A Task that is never released or read is
// simply collected by the garbage collector along with its promise, at
// the cost of the frame not returning to its Allocator's pool; calling
// Get after Release panics.
func (t Task[T]) Release() {
	t.release()
}

func (t Task[T]) release() {
	if !t.consumed.CompareAndSwap(false, true) {
		panic(errProtocol("Task: Get/Release called more than once"))
	}
	t.p.releaseRef()
}

// Then attaches a continuation to be invoked with t's result once
// available (spec §4.5 "Await adaptors", expressed as a callback since
// Go has no co_await). If t is already ready, f runs on the calling
// goroutine immediately (the short-circuit from spec §4.3); otherwise it
// runs on whichever goroutine drives t's completion.
func (t Task[T]) Then(f func(T, error)) {
	t.awaitInto(nil, f)
}

// ThenOn is [Task.Then] with an explicit resumption [Scheduler], the
// generalised form of spec §4.5's scheduler-transfer awaiter.
func (t Task[T]) ThenOn(sched Scheduler, f func(T, error)) {
	t.awaitInto(sched, f)
}

func (t Task[T]) awaitInto(sched Scheduler, f func(T, error)) {
	resume := func() {
		v, err := t.p.get()
		f(v, err)
	}
	if t.p.ready() {
		(&continuation{resume: resume, sched: sched}).run()
		return
	}
	t.p.setContinuation(resume, sched)
}
