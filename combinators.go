package cortado

import (
	"context"
	"sync/atomic"
)

// WhenAll returns a Task that completes once every task in tasks has
// completed (spec §4.8), yielding their results in argument order.
// The first error observed while walking that order is returned and
// short-circuits the rest — Open Question 6 in DESIGN.md records why
// argument order, rather than completion order, was chosen for
// "first error".
//
// Grounded on the teacher's WaitGroup (waitgroup.go): a WhenAll is a
// WaitGroup seeded with len(tasks) and Done from each child's
// completion, generalised from a single cooperative Notify to our
// concurrent [AsyncEvent].
func WhenAll[T any](tasks ...Task[T]) Task[[]T] {
	return Go(func() ([]T, error) {
		results := make([]T, len(tasks))
		if len(tasks) == 0 {
			return results, nil
		}

		errs := make([]error, len(tasks))
		remaining := new(atomic.Int64)
		remaining.Store(int64(len(tasks)))
		done := NewAsyncEvent()

		for i, t := range tasks {
			i, t := i, t
			t.Then(func(v T, err error) {
				results[i] = v
				errs[i] = err
				if remaining.Add(-1) == 0 {
					done.Set()
				}
			})
			// Then only reads the result; it never drops the Task
			// handle's own refcount reservation (spec §4.2 "Refcount"),
			// so every child still needs its own Release once observed
			// — satisfies P8 the same way WhenAny does for its losers.
			t.Release()
		}

		_ = done.Wait(context.Background())

		for _, err := range errs {
			if err != nil {
				var zero []T
				return zero, err
			}
		}
		return results, nil
	})
}

// WhenAny returns a Task that completes as soon as the first of tasks
// does, yielding that task's result (spec §4.8, P10 "WhenAny
// uniqueness"). The remaining tasks are released, un-awaited, and keep
// running independently to their own completion.
//
// winnerClaimed plays the role of spec §4.8's WhenAnySyncPoint atomic
// slot: the CAS decides, exactly once, which of the concurrently
// completing children is "first"; the loser(s) simply return without
// signalling anything further, since our aggregator's suspension point
// is a channel rather than a stored coroutine handle.
func WhenAny[T any](tasks ...Task[T]) Task[T] {
	return Go(func() (T, error) {
		var zero T
		if len(tasks) == 0 {
			return zero, errProtocol("WhenAny: no tasks given")
		}

		var winnerClaimed atomic.Bool
		winner := make(chan int, 1)

		for i, t := range tasks {
			i, t := i, t
			t.Then(func(T, error) {
				if winnerClaimed.CompareAndSwap(false, true) {
					winner <- i
				}
			})
		}

		i := <-winner
		for j, t := range tasks {
			if j != i {
				t.Release()
			}
		}
		return tasks[i].Get()
	})
}
