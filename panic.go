package cortado

import (
	"errors"
	"fmt"
	"runtime/debug"
)

// PanicError is the result cell's error variant when an [Operation]
// panics instead of returning an error.
//
// It is the Go analogue of spec §7's "user-produced error inside an
// asynchronous function", captured the moment it happens (adapted from
// the teacher's panicstack.Try, minus the nested-controller bookkeeping
// that only applied to that runtime's transition machinery).
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("cortado: task panicked: %v\n\n%s", e.Value, e.Stack)
}

// Unwrap lets errors.As/errors.Is reach an error value that was panicked
// with, e.g. panic(fmt.Errorf(...)).
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// tryRun runs f, converting any panic into a *PanicError. It is the
// "Catch" half of spec §7's ExceptionHandler collaborator.
func tryRun(f func()) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &PanicError{Value: v, Stack: debug.Stack()}
		}
	}()
	f()
	return nil
}

// rethrow is the "Rethrow" half: given an error obtained from a
// completed Task, reproduce the original panic if it came from one,
// otherwise panic with the error itself. Used by Task.MustGet.
func rethrow(err error) {
	var pe *PanicError
	if errors.As(err, &pe) {
		panic(pe.Value)
	}
	panic(err)
}
