package cortado

import "errors"

// ErrProtocol reports a contract violation: double-setting a result,
// double-unlocking an AsyncMutex, awaiting an already-consumed Task, and
// so on. Per spec §7 these are "treated as programming errors; not
// reported at runtime" through the error return — they panic instead.
// The one exception is WhenAny called with no tasks, whose Task fails
// with an ErrProtocol error rather than panicking.
type ErrProtocol string

func (e ErrProtocol) Error() string { return "cortado: protocol violation: " + string(e) }

func errProtocol(msg string) ErrProtocol { return ErrProtocol(msg) }

// ErrWaitCanceled is returned by blocking Wait calls (Task.Wait,
// AsyncEvent.Wait) when their cancel channel fires before completion.
// It is not a contract violation: spec §5 restricts timeouts to
// Task.wait_for(ms)/Event.WaitFor(ms) for blocking joiners, which we
// expose as Wait(ctx) accepting any context.Context, including ones
// built with context.WithTimeout or context.WithCancel.
var ErrWaitCanceled = errors.New("cortado: wait canceled before completion")

var errWaitCanceled = ErrWaitCanceled
