package cortado

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Step is what a chained [Operation] step returns to say what happens
// next, generalising spec §4.5's three await adaptors into a single
// continuation-passing shape: Go has no compiler-generated coroutine
// state machine to suspend and resume at a co_await, so a step function
// plays the role of "everything up to the next suspension point", and
// the kind of Step it returns says how to reach the next one.
//
// Grounded directly on the teacher's Operation/Result/Chain/Then
// machinery in task.go: a Step is this runtime's Result, and [GoChain]
// is this runtime's Chain — a Task-returning driver instead of a
// single-Executor cooperative loop, because our steps may genuinely
// hop goroutines (spec scenario 3 requires T0 != T1 after
// ResumeBackground, which a single dispatch goroutine could never
// produce).
type Step[T any] struct {
	kind    stepKind
	value   T
	err     error
	sched   Scheduler
	arrange func(resume func())
	next    func() Step[T]
}

type stepKind uint8

const (
	stepDone stepKind = iota
	stepYield
	stepAwait
)

// Done ends a chain with a final result, per spec §4.2 Promise
// completion.
func Done[T any](v T, err error) Step[T] {
	return Step[T]{kind: stepDone, value: v, err: err}
}

// Yield is the scheduler-transfer awaiter of spec §4.5(3): the running
// step hands off to sched and, once sched runs it, next produces the
// step that follows. The goroutine that calls next is whichever one
// sched picks, not necessarily the one that called Yield — that
// hand-off is the entire point (spec scenario 3).
func Yield[T any](sched Scheduler, next func() Step[T]) Step[T] {
	return Step[T]{kind: stepYield, sched: sched, next: next}
}

// ResumeBackground is the special case Yield(DefaultBackgroundScheduler(), next)
// named in spec §4.5/§6.
func ResumeBackground[T any](next func() Step[T]) Step[T] {
	return Yield(DefaultBackgroundScheduler(), next)
}

// AwaitTask is the task-by-value awaiter of spec §4.5(1): it
// short-circuits inline if t is already ready (via [Task.awaitInto]),
// otherwise it records next as t's continuation, exactly as spec §4.3
// describes ("the adaptor calls promise.ready() for the short-circuit,
// else records the awaiting coroutine via set_continuation").
func AwaitTask[T, U any](t Task[U], next func(U, error) Step[T]) Step[T] {
	var result Step[T]
	return Step[T]{
		kind: stepAwait,
		arrange: func(resume func()) {
			t.awaitInto(nil, func(v U, err error) {
				result = next(v, err)
				resume()
			})
		},
		next: func() Step[T] { return result },
	}
}

// GoChain drives a chained Operation to completion, spawning it on
// opts' scheduler like [Go], but letting the step function suspend at
// [Yield]/[ResumeBackground]/[AwaitTask] boundaries instead of running
// to completion in one call.
func GoChain[T any](start func() Step[T], opts ...Option) Task[T] {
	cfg := newGoConfig()
	for _, o := range opts {
		o(cfg)
	}

	p := newPromise[T](cfg.allocator, cfg.userStorage)
	id := uuid.New()

	logTaskSpawned(id)

	cfg.scheduler.Schedule(func() {
		logTaskRunning(id)
		driveChain(p, id, cfg.scheduler, func() Step[T] { return start() })
	})

	return Task[T]{p: p, id: id, consumed: new(atomic.Bool)}
}

// driveChain runs one step, catching panics per spec §4.2
// on_unhandled_error, and either resolves p or arranges the next hop.
func driveChain[T any](p *promise[T], id uuid.UUID, sched Scheduler, produce func() Step[T]) {
	var step Step[T]
	if err := tryRun(func() { step = produce() }); err != nil {
		p.onUnhandledError(err)
		logTaskPanicked(id, err)
		return
	}

	switch step.kind {
	case stepDone:
		if step.err != nil {
			p.resolveError(step.err)
			logTaskFailed(id, step.err)
		} else {
			p.resolveValue(step.value)
			logTaskCompleted(id)
		}
	case stepYield:
		target, next := step.sched, step.next
		p.suspendAndResume(
			func(resume func()) { target.Schedule(resume) },
			func() { driveChain(p, id, target, next) },
		)
	case stepAwait:
		arrange, next := step.arrange, step.next
		p.suspendAndResume(arrange, func() { driveChain(p, id, sched, next) })
	default:
		panic(errProtocol("driveChain: unknown step kind"))
	}
}
