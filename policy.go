package cortado

// Scheduler is the collaborator described in spec §3/§6: it runs a
// resumption thunk, eventually, exactly once. Schedulers are expected
// to be infallible by contract (spec §7); a Scheduler that fails to
// eventually invoke its argument violates that contract and the
// resulting behaviour is undefined, same as spec.md.
type Scheduler interface {
	Schedule(f func())
}

// SchedulerFunc adapts a plain function to a [Scheduler].
type SchedulerFunc func(f func())

// Schedule implements [Scheduler].
func (f SchedulerFunc) Schedule(g func()) { f(g) }

// Allocator is the frame allocator glue described in spec §4.4,
// generalised: it owns the lifecycle of a *promise[T]-shaped frame.
// Go's GC means allocate/free do not need to return raw bytes; the
// default implementation (see allocator.go) recycles frames through a
// sync.Pool the way the teacher's Executor recycles *Task/*Coroutine
// values.
type Allocator interface {
	allocate() *frame
	free(*frame)
}

// UserStorage is the optional per-task collaborator from spec §3/§4.5.
// A policy that carries no UserStorage degrades to the no-op
// implementation, per spec §9 "zero-cost-degrade".
type UserStorage interface {
	OnBeforeSuspend()
	OnBeforeResume()
}

type noUserStorage struct{}

func (noUserStorage) OnBeforeSuspend() {}
func (noUserStorage) OnBeforeResume()  {}

// Option configures a Task produced by [Go], following the functional
// options style used throughout the example pack (e.g.
// joeycumines-go-utilpkg/eventloop's Option[E]).
type Option func(*goConfig)

type goConfig struct {
	scheduler   Scheduler
	allocator   Allocator
	userStorage UserStorage
}

func newGoConfig() *goConfig {
	return &goConfig{
		scheduler:   DefaultBackgroundScheduler(),
		allocator:   defaultAllocator,
		userStorage: noUserStorage{},
	}
}

// WithScheduler runs the operation's initial dispatch through sched
// instead of the package default background scheduler. It does not
// change transfers inside a [GoChain]: [Yield] hands off to the
// scheduler passed to it, and [ResumeBackground] always uses
// [DefaultBackgroundScheduler].
func WithScheduler(sched Scheduler) Option {
	return func(c *goConfig) { c.scheduler = sched }
}

// WithAllocator overrides the frame allocator used to back the Task's
// promise (spec §4.4).
func WithAllocator(a Allocator) Option {
	return func(c *goConfig) { c.allocator = a }
}

// WithUserStorage attaches the optional per-task user storage
// collaborator from spec §3. Its OnBeforeSuspend/OnBeforeResume hooks
// bracket every non-final suspend/resume transition a running
// [GoChain] step reaches — [Yield]/[ResumeBackground], [AwaitTask],
// [AwaitEvent], [AwaitLock] — via promise.suspendAndResume (spec §4.5).
// Plain [Task.Then]/[Task.ThenOn] registrations outside a GoChain are
// not suspension points and do not trigger the hooks; a Task spawned by
// [Go] alone runs an Operation to completion in a single call, never
// suspends, and never triggers either hook; the final completion of a
// Task does not trigger them either.
func WithUserStorage(s UserStorage) Option {
	return func(c *goConfig) { c.userStorage = s }
}
