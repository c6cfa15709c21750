package cortado

import (
	"sync"
	"sync/atomic"
)

// frame is the non-generic part of a promise: refcount, completion
// signal and continuation slot. Splitting it out of promise[T] lets a
// single Allocator implementation recycle frames for every instantiation
// of Task[T], the same way spec §4.4 places one allocator instance
// ahead of a coroutine frame of any shape.
//
// Grounded on the teacher's Executor.pool sync.Pool together with
// newTask/freeTask in task.go and newCoroutine/freeCoroutine in
// coroutine.go: both recycle a fixed-shape struct across many spawns.
// Go's GC removes the need for the raw byte-prefix trick spec §4.4
// describes for placement-new languages; recycling is expressed here as
// pooling instead.
type frame struct {
	refcount atomic.Int32
	done     chan struct{}
	cont     atomic.Pointer[continuation]
}

func newFrame() *frame {
	return &frame{done: make(chan struct{})}
}

func (fr *frame) reset() {
	fr.refcount.Store(0)
	fr.cont.Store(nil)
	select {
	case <-fr.done:
		// already closed from a previous use; replace it
		fr.done = make(chan struct{})
	default:
		if fr.done == nil {
			fr.done = make(chan struct{})
		}
	}
}

// poolAllocator is the default [Allocator], backing frame recycling
// with a sync.Pool. It satisfies P8 (allocator roundtrip): every frame
// obtained from allocate is eventually returned via free, exactly once.
type poolAllocator struct {
	pool sync.Pool
}

// NewPoolAllocator returns an [Allocator] that recycles frames through a
// sync.Pool, avoiding a fresh allocation for every [Go] call under
// steady-state load.
func NewPoolAllocator() Allocator {
	return &poolAllocator{
		pool: sync.Pool{New: func() any { return newFrame() }},
	}
}

func (a *poolAllocator) allocate() *frame {
	fr := a.pool.Get().(*frame)
	fr.reset()
	return fr
}

func (a *poolAllocator) free(fr *frame) {
	a.pool.Put(fr)
}

// defaultAllocator is shared by every Go call that does not supply
// WithAllocator explicitly.
var defaultAllocator = NewPoolAllocator()
