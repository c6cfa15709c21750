package cortado

// waiterNode is the shared shape used by [AsyncEvent] and [AsyncMutex]:
// an intrusive next-pointer plus a resumption thunk, optionally bound to
// a [Scheduler] for an asymmetric resume (spec §3 "Waiter node").
// Both primitives build a lock-free LIFO stack of these by CASing their
// state word, the Go analogue of the teacher's per-Signal listener set
// (signal.go) generalised from single-goroutine cooperative dispatch to
// genuine cross-goroutine concurrency.
type waiterNode struct {
	next   *waiterNode
	resume func()
	sched  Scheduler
}

func (n *waiterNode) fire() {
	c := continuation{resume: n.resume, sched: n.sched}
	c.run()
}
