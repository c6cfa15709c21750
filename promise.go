package cortado

// continuation is the payload of the promise's rendezvous slot: a
// resumption thunk plus the scheduler it should be resumed on, if any
// (spec §3 "waiter node" reuses this shape; the promise's slot is the
// task-specific instance of it).
type continuation struct {
	resume func()
	sched  Scheduler
}

func (c *continuation) run() {
	if c.sched != nil {
		c.sched.Schedule(c.resume)
		return
	}
	c.resume()
}

// valueStoredSentinel is the "1 = value-already-stored" encoding from
// spec §4.2. Its identity (not its contents) is what matters: no other
// *continuation is ever compared equal to it, because every other one
// is freshly allocated by setContinuation.
var valueStoredSentinel = &continuation{}

// promise is the refcounted state object backing a Task[T] (spec §3
// "Promise"). It owns the result cell, the completion signal and the
// continuation slot, and hosts the final-suspend rendezvous (spec §4.2).
type promise[T any] struct {
	*frame
	cell        resultCell[T]
	userStorage UserStorage
	alloc       Allocator
}

// newPromise allocates a promise via alloc and sets its refcount to 2:
// one reservation for the goroutine that will produce the result (the
// "coroutine frame" of spec §4.2) and one for the Task handle minted by
// Go (spec's get_return_object). See Open Question 3 in DESIGN.md for
// why Go, lacking destructors, ties the second reservation to
// Task.Get/Task.Release instead of handle destruction.
func newPromise[T any](alloc Allocator, us UserStorage) *promise[T] {
	p := &promise[T]{
		frame:       alloc.allocate(),
		userStorage: us,
		alloc:       alloc,
	}
	p.cell.reset()
	p.refcount.Store(2)
	return p
}

// ready reports whether the completion event has fired (spec §4.2
// Promise.ready).
func (p *promise[T]) ready() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// wait blocks until the promise completes or cancel is closed.
func (p *promise[T]) wait(cancel <-chan struct{}) error {
	select {
	case <-p.done:
		return nil
	case <-cancel:
		return errWaitCanceled
	}
}

// get returns the stored result. Precondition: ready().
func (p *promise[T]) get() (T, error) {
	return p.cell.get()
}

// setContinuation is the consumer side of the final-suspend rendezvous
// (spec §4.2). It returns true iff the caller must suspend, i.e. the
// continuation was recorded before the producer finished; it returns
// false when the producer already completed, in which case resume has
// already been invoked (inline or via sched) before this call returns.
func (p *promise[T]) setContinuation(resume func(), sched Scheduler) bool {
	c := &continuation{resume: resume, sched: sched}
	if p.cont.CompareAndSwap(nil, c) {
		return true
	}
	if p.cont.Load() != valueStoredSentinel {
		panic(errProtocol("promise.setContinuation: slot in unexpected state"))
	}
	c.run()
	return false
}

// resolveValue is the producer side of the final-suspend rendezvous for
// a successful result (spec §4.2 "Producer"): it publishes v, fires the
// completion event, and resumes whichever continuation lost the race to
// store first (or none, if none has attached yet).
func (p *promise[T]) resolveValue(v T) {
	p.cell.setValueRelease(v)
	p.finalSuspend()
}

// resolveError is resolveValue's error-carrying counterpart.
func (p *promise[T]) resolveError(err error) {
	p.cell.setErrorRelease(err)
	p.finalSuspend()
}

func (p *promise[T]) finalSuspend() {
	close(p.done)

	if !p.cont.CompareAndSwap(nil, valueStoredSentinel) {
		c := p.cont.Load()
		if c == nil || c == valueStoredSentinel {
			panic(errProtocol("promise.finalSuspend: slot in unexpected state"))
		}
		c.run()
	}

	p.releaseRef()
}

// suspendAndResume brackets a non-final suspend/resume transition with
// the promise's UserStorage hooks (spec §4.5's before_suspend/
// before_resume), firing OnBeforeSuspend before arrange begins and
// OnBeforeResume immediately before the continuation it eventually
// invokes runs. Every await adaptor that can suspend a running
// [GoChain] step (Yield/ResumeBackground, [AwaitTask], [AwaitEvent],
// [AwaitLock]) funnels through here via [driveChain], so a UserStorage
// implementation sees exactly one matched suspend/resume pair per hop.
func (p *promise[T]) suspendAndResume(arrange func(resume func()), resume func()) {
	if p.userStorage != nil {
		p.userStorage.OnBeforeSuspend()
	}
	arrange(func() {
		if p.userStorage != nil {
			p.userStorage.OnBeforeResume()
		}
		resume()
	})
}

// releaseRef drops one of the promise's two reservations (spec §4.2
// "Refcount"). When both the producer and the Task handle have released
// their reservation, the frame is returned to the allocator.
func (p *promise[T]) releaseRef() {
	if p.refcount.Add(-1) == 0 {
		p.alloc.free(p.frame)
	}
}

// onUnhandledError is invoked when the goroutine running the Operation
// panics; it captures the panic per spec §4.2 Promise.on_unhandled_error
// and resolves the promise with it.
func (p *promise[T]) onUnhandledError(err error) {
	p.resolveError(err)
}
