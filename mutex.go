package cortado

import "sync/atomic"

// mutexUnlocked is the sentinel published to AsyncMutex.state while
// unlocked; nil means "locked, no waiters"; any other pointer means
// "locked, and the pointer is the head of the waiter stack" (spec §4.7).
var mutexUnlocked = &waiterNode{}

// AsyncMutex is a fair, lock-free mutual-exclusion primitive that never
// calls into a kernel mutex on its fast path (spec §4.7). Grounded on
// the teacher's Semaphore (semaphore.go), whose waiters slice and
// notifyWaiters loop play the analogous "queue, then hand off on
// release" role for a single cooperative goroutine; AsyncMutex
// generalises that to real concurrency with CAS on an intrusive LIFO
// stack instead of a mutex-guarded slice, and specialises the weight to
// exactly 1 (mutual exclusion rather than a weighted count).
//
// The zero value is NOT ready to use: nil is the "locked, no waiters"
// encoding, not "unlocked", so a zero-value AsyncMutex starts out
// already held by nobody able to release it. Always construct one with
// [NewAsyncMutex].
type AsyncMutex struct {
	state atomic.Pointer[waiterNode]
}

// NewAsyncMutex returns an unlocked AsyncMutex.
func NewAsyncMutex() *AsyncMutex {
	m := &AsyncMutex{}
	m.state.Store(mutexUnlocked)
	return m
}

// TryLock attempts to acquire m without suspending, returning whether it
// succeeded.
func (m *AsyncMutex) TryLock() bool {
	return m.state.CompareAndSwap(mutexUnlocked, nil)
}

// LockAsync registers resume to run (optionally via sched) once m is
// acquired. If m is uncontended, resume runs inline before LockAsync
// returns (spec §4.7's await_ready calling try_lock).
func (m *AsyncMutex) LockAsync(sched Scheduler, resume func()) {
	if m.TryLock() {
		(&continuation{resume: resume, sched: sched}).run()
		return
	}

	n := &waiterNode{resume: resume, sched: sched}
	for {
		old := m.state.Load()
		if old == mutexUnlocked {
			if m.state.CompareAndSwap(mutexUnlocked, nil) {
				(&continuation{resume: resume, sched: sched}).run()
				return
			}
			continue
		}
		n.next = old
		if m.state.CompareAndSwap(old, n) {
			return
		}
	}
}

// Unlock releases m, transferring ownership directly to the oldest
// queued waiter if any (spec §4.7's FIFO-under-contention wakeup,
// P6 ownership transfer): the state word goes straight from the waiter
// stack to nil (locked, no waiters) and, if more waiters remain, back to
// the rest of the stack; it never passes through mutexUnlocked while a
// waiter is being handed the lock, so a concurrent TryLock can never
// sneak in during handoff.
// Unlocking an already-unlocked mutex panics, per spec §7's contract
// violations.
func (m *AsyncMutex) Unlock() {
	for {
		old := m.state.Load()
		switch old {
		case mutexUnlocked:
			panic(errProtocol("AsyncMutex: unlock of unlocked mutex"))
		case nil:
			if m.state.CompareAndSwap(nil, mutexUnlocked) {
				return
			}
		default:
			if m.state.CompareAndSwap(old, nil) {
				m.handOff(old)
				return
			}
		}
	}
}

// handOff detaches the oldest node in chain (the tail: new arrivals
// push to the head, so the tail is the earliest waiter) and resumes it,
// re-publishing whatever remains — merged beneath anything enqueued
// during the handoff, since those arrivals are newer — so no waiter is
// ever lost or double-resumed and wakeup order stays FIFO.
func (m *AsyncMutex) handOff(chain *waiterNode) {
	if chain.next == nil {
		chain.fire()
		return
	}

	prev, node := chain, chain.next
	for node.next != nil {
		prev, node = node, node.next
	}
	prev.next = nil

	for {
		old := m.state.Load()
		if old == nil {
			if m.state.CompareAndSwap(nil, chain) {
				break
			}
			continue
		}
		// Arrivals only ever replace the head, so the tail of the stack
		// built during the handoff is stable and can take the older rest.
		tail := old
		for tail.next != nil {
			tail = tail.next
		}
		tail.next = chain
		break
	}

	node.fire()
}

// MutexGuard is the guard returned by [AsyncMutex.ScopedLockAsync];
// exactly one call to Unlock is required, mirroring spec §7's guard
// destructor.
type MutexGuard struct {
	m        *AsyncMutex
	unlocked atomic.Bool
}

// Unlock releases the mutex this guard owns. Calling it more than once
// panics.
func (g *MutexGuard) Unlock() {
	if !g.unlocked.CompareAndSwap(false, true) {
		panic(errProtocol("AsyncMutex: guard unlocked more than once"))
	}
	g.m.Unlock()
}

// ScopedLockAsync is [AsyncMutex.LockAsync] plus RAII-style discipline:
// once acquired, done is invoked with a [MutexGuard] whose Unlock call
// releases m (spec §7's scoped_lock_async).
func (m *AsyncMutex) ScopedLockAsync(sched Scheduler, done func(*MutexGuard)) {
	m.LockAsync(sched, func() {
		done(&MutexGuard{m: m})
	})
}

// AwaitLock is the [Step]-based await adaptor for [AsyncMutex], giving a
// [GoChain] step scoped-lock semantics: the guard is released
// automatically once next returns, since a Step body has no destructor
// to hook a "scope exit" into. Unlike a C++ RAII guard, whose destructor
// can span arbitrarily many further suspensions in the same scope, the
// lock here is released the instant next hands back a Step value, even
// if that Step itself describes a further suspension (another Yield or
// AwaitTask) that has not run yet. A caller that needs the lock held
// across such a further hop must nest another AwaitLock around it
// explicitly, rather than returning the suspending Step from next.
func AwaitLock[T any](m *AsyncMutex, sched Scheduler, next func() Step[T]) Step[T] {
	var result Step[T]
	return Step[T]{
		kind: stepAwait,
		arrange: func(resume func()) {
			m.ScopedLockAsync(sched, func(g *MutexGuard) {
				result = next()
				g.Unlock()
				resume()
			})
		},
		next: func() Step[T] { return result },
	}
}
