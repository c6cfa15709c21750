// Package cortado is a policy-parameterised task runtime for
// goroutine-based asynchronous programming.
//
// Go already has real, cheap, native concurrency in goroutines and
// channels. This library isn't a replacement for either; it's the
// piece that sits between the two: a [Task] wraps a computation's
// eventual result the way a channel wraps a stream of them, but adds
// what a bare channel doesn't give you for free — a refcounted,
// reusable frame, a rendezvous that never blocks whichever side
// arrives first, and continuation-style chaining for callers who would
// rather attach a callback than park a goroutine on a receive.
//
// # Tasks and Promises
//
// [Go] spawns an [Operation] onto a [Scheduler] and returns a [Task]
// bound to the promise backing it. The promise outlives the Task handle
// — it's the thing two independent parties (the goroutine producing a
// result, and whichever goroutine eventually asks for it) rendezvous
// through, without either one blocking on the other's arrival order.
// Call [Task.Get] to join synchronously, or [Task.Then] to attach a
// continuation instead.
//
// # Scheduler Transfer
//
// [GoChain] lets an [Operation] suspend mid-computation instead of
// running start to finish on one goroutine. A step returned from
// [Yield] or [ResumeBackground] hands the rest of the computation to a
// different [Scheduler], the way an actor moves work off a busy
// goroutine without needing the caller to plumb channels through by
// hand. [AwaitTask], [AwaitEvent] and [AwaitLock] round out the step
// vocabulary for waiting on another Task, an [AsyncEvent], or an
// [AsyncMutex] without blocking the underlying OS thread.
//
// # AsyncEvent and AsyncMutex
//
// Both are lock-free: their entire state lives in a single atomic
// pointer, manipulated by CAS, with no [sync.Mutex] anywhere on the
// fast path. [AsyncEvent] is a one-shot latch — once [AsyncEvent.Set]
// fires, every waiter queued before it and any registered after it are
// all resumed, the latter without ever suspending. [AsyncMutex] is a
// fair mutex: [AsyncMutex.Unlock] hands ownership directly to the
// oldest waiter without the state word ever passing back through
// "unlocked", so a concurrent [AsyncMutex.TryLock] can never steal the
// lock out from under a waiter mid-handoff.
//
// # WhenAll and WhenAny
//
// [WhenAll] joins a batch of same-typed tasks into one, in argument
// order. [WhenAny] resolves as soon as the first of a batch completes;
// the rest keep running to their own completion, released but
// otherwise unmanaged by the caller.
//
// # Policy
//
// A Task's [Scheduler], frame [Allocator], and optional [UserStorage]
// are all swappable via functional [Option]s passed to [Go]/[GoChain].
// A policy that supplies none of these degrades to the package
// defaults at no extra cost: a background worker pool sized off
// runtime.GOMAXPROCS, a sync.Pool-backed allocator, and a no-op
// UserStorage.
package cortado
