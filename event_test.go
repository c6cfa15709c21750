package cortado

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestAsyncEventIsSet(t *testing.T) {
	ev := NewAsyncEvent()
	require.False(t, ev.IsSet())
	ev.Set()
	require.True(t, ev.IsSet())
}

func TestAsyncEventSetIsIdempotent(t *testing.T) {
	ev := NewAsyncEvent()
	ev.Set()
	require.NotPanics(t, func() { ev.Set() })
	require.True(t, ev.IsSet())
}

func TestAsyncEventWaitAsyncShortCircuitsAfterSet(t *testing.T) {
	ev := NewAsyncEvent()
	ev.Set()

	fired := false
	ev.WaitAsync(nil, func() { fired = true })
	require.True(t, fired, "a waiter attached after Set must resume inline")
}

// TestAsyncEventFanOut is P4: N waiters attached before Set are all
// resumed exactly once when it fires; a waiter attached afterwards is
// immediately ready. Modeled on spec scenario 4.
func TestAsyncEventFanOut(t *testing.T) {
	ev := NewAsyncEvent()

	const n = 5
	var resumed int32
	var wg sync.WaitGroup
	wg.Add(n)

	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			ev.WaitAsync(nil, func() {
				atomic.AddInt32(&resumed, 1)
				wg.Done()
			})
			return nil
		})
	}
	require.NoError(t, g.Wait())

	require.False(t, ev.IsSet())
	ev.Set()

	waitDone := make(chan struct{})
	go func() { wg.Wait(); close(waitDone) }()
	select {
	case <-waitDone:
	case <-time.After(time.Second):
		t.Fatal("not all waiters were resumed")
	}
	require.Equal(t, int32(n), atomic.LoadInt32(&resumed))

	// a 6th waiter, attached after Set, is immediately ready.
	sixthFired := false
	ev.WaitAsync(nil, func() { sixthFired = true })
	require.True(t, sixthFired)
}

func TestAsyncEventWaitBlocksUntilSet(t *testing.T) {
	ev := NewAsyncEvent()

	go func() {
		time.Sleep(5 * time.Millisecond)
		ev.Set()
	}()

	err := ev.Wait(context.Background())
	require.NoError(t, err)
}

func TestAsyncEventWaitCanceled(t *testing.T) {
	ev := NewAsyncEvent()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := ev.Wait(ctx)
	require.ErrorIs(t, err, ErrWaitCanceled)
}

func TestAwaitEventInChain(t *testing.T) {
	ev := NewAsyncEvent()
	go func() {
		time.Sleep(5 * time.Millisecond)
		ev.Set()
	}()

	task := GoChain(func() Step[string] {
		return AwaitEvent(ev, nil, func() Step[string] {
			return Done("fired", nil)
		})
	})

	v, err := task.Get()
	require.NoError(t, err)
	require.Equal(t, "fired", v)
}
