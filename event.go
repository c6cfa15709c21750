package cortado

import (
	"context"
	"sync/atomic"
)

// eventSet is the sentinel published to AsyncEvent.state once the event
// has fired; any other non-nil value is a *waiterNode.
var eventSet = &waiterNode{}

// AsyncEvent is a one-shot latch with a lock-free LIFO waiter stack
// (spec §4.6). state encodes: nil = unset, no waiters; eventSet = set;
// any other pointer = head of the waiter stack. Grounded on the
// teacher's Signal (signal.go), whose addListener/Notify pair plays the
// same "watchers resumed on fire" role for a single cooperative
// goroutine; AsyncEvent generalises that to concurrent producers and
// waiters via CAS instead of a plain map mutation.
type AsyncEvent struct {
	state atomic.Pointer[waiterNode]
}

// NewAsyncEvent returns an unset AsyncEvent.
func NewAsyncEvent() *AsyncEvent {
	return &AsyncEvent{}
}

// IsSet reports whether the event has fired.
func (e *AsyncEvent) IsSet() bool {
	return e.state.Load() == eventSet
}

// Set fires the event exactly meaningfully once: the first call resumes
// every waiter queued so far (spec P4, "event fan-out"); subsequent
// calls are no-ops. Waiters attached afterwards observe ready
// synchronously in [AsyncEvent.WaitAsync].
func (e *AsyncEvent) Set() {
	old := e.state.Swap(eventSet)
	if old == nil || old == eventSet {
		return
	}
	for n := old; n != nil; {
		next := n.next
		n.fire()
		n = next
	}
}

// WaitAsync registers resume to run (optionally via sched) once the
// event is set. If the event is already set, resume runs inline before
// WaitAsync returns, mirroring the short-circuit await_ready of spec
// §4.6.
func (e *AsyncEvent) WaitAsync(sched Scheduler, resume func()) {
	n := &waiterNode{resume: resume, sched: sched}
	for {
		old := e.state.Load()
		if old == eventSet {
			n.fire()
			return
		}
		n.next = old
		if e.state.CompareAndSwap(old, n) {
			return
		}
	}
}

// Wait blocks the calling goroutine until the event is set or ctx is
// done, whichever happens first (spec §6's optional blocking wait for
// atomics that support wait/notify, generalised to any context.Context).
func (e *AsyncEvent) Wait(ctx context.Context) error {
	if e.IsSet() {
		return nil
	}
	done := make(chan struct{})
	e.WaitAsync(nil, func() { close(done) })
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errWaitCanceled
	}
}

// AwaitEvent is the [Step]-based await adaptor for AsyncEvent, letting a
// [GoChain] step suspend at an AsyncEvent the same way [AwaitTask] does
// for a Task (spec §6's "suspension points" list includes
// AsyncEvent::wait_async alongside await-task and scheduler-transfer).
func AwaitEvent[T any](e *AsyncEvent, sched Scheduler, next func() Step[T]) Step[T] {
	var result Step[T]
	return Step[T]{
		kind: stepAwait,
		arrange: func(resume func()) {
			e.WaitAsync(sched, func() {
				result = next()
				resume()
			})
		},
		next: func() Step[T] { return result },
	}
}
