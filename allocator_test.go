package cortado

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestAllocatorRoundtrip is P8: every frame obtained from an Allocator
// is eventually returned to it, exactly once, and reset before reuse.
func TestAllocatorRoundtrip(t *testing.T) {
	alloc := NewPoolAllocator().(*poolAllocator)

	fr := alloc.allocate()
	fr.refcount.Store(3)
	fr.cont.Store(&continuation{})
	select {
	case <-fr.done:
		t.Fatal("fresh frame's done channel should not be closed")
	default:
	}

	close(fr.done)
	alloc.free(fr)

	fr2 := alloc.allocate()
	require.Equal(t, int32(0), fr2.refcount.Load())
	require.Nil(t, fr2.cont.Load())
	select {
	case <-fr2.done:
		t.Fatal("recycled frame's done channel should not already be closed")
	default:
	}
}

func TestAllocatorDistinctFrames(t *testing.T) {
	alloc := NewPoolAllocator()

	a := alloc.allocate()
	b := alloc.allocate()
	require.NotSame(t, a, b)

	alloc.free(a)
	alloc.free(b)
}
