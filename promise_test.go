package cortado

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPromiseResolveThenSetContinuation(t *testing.T) {
	p := newPromise[int](defaultAllocator, noUserStorage{})

	p.resolveValue(7)

	var got int
	suspended := p.setContinuation(func() {
		v, err := p.get()
		require.NoError(t, err)
		got = v
	}, nil)

	require.False(t, suspended, "continuation attached after resolution should short-circuit")
	require.Equal(t, 7, got)

	p.releaseRef()
}

func TestPromiseSetContinuationThenResolve(t *testing.T) {
	p := newPromise[string](defaultAllocator, noUserStorage{})

	var got string
	suspended := p.setContinuation(func() {
		v, _ := p.get()
		got = v
	}, nil)
	require.True(t, suspended)

	p.resolveValue("hello")
	require.Equal(t, "hello", got)

	p.releaseRef()
}

// TestPromiseAtMostOnceResume is P3: whichever of the producer/attacher
// arrives second resumes the continuation, and it happens exactly once
// regardless of interleaving.
func TestPromiseAtMostOnceResume(t *testing.T) {
	for i := 0; i < 200; i++ {
		p := newPromise[int](defaultAllocator, noUserStorage{})

		var resumed sync.WaitGroup
		resumed.Add(1)
		var calls int32
		var mu sync.Mutex

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			p.setContinuation(func() {
				mu.Lock()
				calls++
				mu.Unlock()
				resumed.Done()
			}, nil)
		}()
		go func() {
			defer wg.Done()
			p.resolveValue(i)
		}()
		wg.Wait()
		resumed.Wait()

		require.Equal(t, int32(1), calls)
		p.releaseRef()
	}
}

func TestPromiseWaitCanceled(t *testing.T) {
	p := newPromise[int](defaultAllocator, noUserStorage{})
	defer p.releaseRef()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := p.wait(ctx.Done())
	require.ErrorIs(t, err, ErrWaitCanceled)
}

func TestPromiseOnUnhandledError(t *testing.T) {
	p := newPromise[int](defaultAllocator, noUserStorage{})
	defer p.releaseRef()

	boom := errors.New("boom")
	p.onUnhandledError(boom)

	require.True(t, p.ready())
	_, err := p.get()
	require.ErrorIs(t, err, boom)
}
