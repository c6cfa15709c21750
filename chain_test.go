package cortado

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// countingUserStorage records how many times each hook fires, to prove
// OnBeforeSuspend/OnBeforeResume actually bracket suspension points
// instead of being defined but never called.
type countingUserStorage struct {
	suspends atomic.Int32
	resumes  atomic.Int32
}

func (u *countingUserStorage) OnBeforeSuspend() { u.suspends.Add(1) }
func (u *countingUserStorage) OnBeforeResume()  { u.resumes.Add(1) }

// TestGoChainUserStorageHooksFireAroundEachHop is the "the hooks are
// actually wired" regression: a chain that hops via Yield and AwaitTask
// twice must observe a matched suspend/resume pair per hop.
func TestGoChainUserStorageHooksFireAroundEachHop(t *testing.T) {
	us := &countingUserStorage{}
	inner := Go(func() (int, error) { return 1, nil })
	sched := NewWorkerPoolScheduler(1)
	defer sched.Close()

	task := GoChain(func() Step[int] {
		return Yield(sched, func() Step[int] {
			return AwaitTask(inner, func(v int, err error) Step[int] {
				return Done(v, err)
			})
		})
	}, WithUserStorage(us))

	v, err := task.Get()
	require.NoError(t, err)
	require.Equal(t, 1, v)

	require.Equal(t, int32(2), us.suspends.Load(), "Yield and AwaitTask should each suspend once")
	require.Equal(t, int32(2), us.resumes.Load(), "Yield and AwaitTask should each resume once")
}

// TestGoUserStorageHooksNeverFireOutsideAChain: a Task spawned by Go
// runs its Operation to completion in one call and never suspends, so
// its UserStorage sees no suspend/resume pair at all.
func TestGoUserStorageHooksNeverFireOutsideAChain(t *testing.T) {
	us := &countingUserStorage{}
	task := Go(func() (int, error) { return 5, nil }, WithUserStorage(us))

	_, err := task.Get()
	require.NoError(t, err)

	require.Zero(t, us.suspends.Load())
	require.Zero(t, us.resumes.Load())
}

func TestGoChainDone(t *testing.T) {
	task := GoChain(func() Step[int] {
		return Done(10, nil)
	})

	v, err := task.Get()
	require.NoError(t, err)
	require.Equal(t, 10, v)
}

func TestGoChainAwaitTask(t *testing.T) {
	inner := Go(func() (int, error) { return 4, nil })

	outer := GoChain(func() Step[int] {
		return AwaitTask(inner, func(v int, err error) Step[int] {
			if err != nil {
				return Done(0, err)
			}
			return Done(v*10, nil)
		})
	})

	v, err := outer.Get()
	require.NoError(t, err)
	require.Equal(t, 40, v)
}

func TestGoChainAwaitTaskPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	inner := Go(func() (int, error) { return 0, boom })

	outer := GoChain(func() Step[int] {
		return AwaitTask(inner, func(v int, err error) Step[int] {
			return Done(v, err)
		})
	})

	_, err := outer.Get()
	require.ErrorIs(t, err, boom)
}

func TestGoChainMultiHopChain(t *testing.T) {
	a := Go(func() (int, error) { return 1, nil })

	outer := GoChain(func() Step[int] {
		return AwaitTask(a, func(v int, err error) Step[int] {
			b := Go(func() (int, error) { return v + 1, nil })
			return AwaitTask(b, func(v2 int, err error) Step[int] {
				return Done(v2+1, nil)
			})
		})
	})

	v, err := outer.Get()
	require.NoError(t, err)
	require.Equal(t, 3, v)
}

func TestGoChainPanicCaptured(t *testing.T) {
	task := GoChain(func() Step[int] {
		panic("bad step")
	})

	_, err := task.Get()
	var pe *PanicError
	require.ErrorAs(t, err, &pe)
}
