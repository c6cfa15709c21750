package cortado

import (
	"github.com/google/uuid"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Logger is the package-wide structured logger, following the
// teacher's convention of a package-level Executor-adjacent facility
// rather than requiring every call site to thread one through: [Go],
// [GoChain] and [DefaultBackgroundScheduler] all log task lifecycle
// and scheduler setup events through it. Swap it with [SetLogger];
// the zero value logs nothing (stumpy.L.New defaults to
// LevelInformational, so this is set explicitly to LevelDisabled
// until a caller opts in).
var Logger = stumpy.L.New(stumpy.L.WithLevel(logiface.LevelDisabled))

// SetLogger replaces the package-wide [Logger], for callers that want
// task lifecycle events surfaced (e.g. stumpy.L.New() at
// LevelDebug/LevelTrace) or routed elsewhere.
func SetLogger(l *logiface.Logger[*stumpy.Event]) {
	if l == nil {
		l = stumpy.L.New(stumpy.L.WithLevel(logiface.LevelDisabled))
	}
	Logger = l
}

func logTaskSpawned(id uuid.UUID) {
	Logger.Trace().Str("task", id.String()).Log("task spawned")
}

func logTaskRunning(id uuid.UUID) {
	Logger.Trace().Str("task", id.String()).Log("task running")
}

func logTaskCompleted(id uuid.UUID) {
	Logger.Debug().Str("task", id.String()).Log("task completed")
}

func logTaskFailed(id uuid.UUID, err error) {
	Logger.Debug().Str("task", id.String()).Err(err).Log("task failed")
}

func logTaskPanicked(id uuid.UUID, err error) {
	Logger.Err().Str("task", id.String()).Err(err).Log("task panicked")
}

func logMaxprocs(format string, args ...any) {
	Logger.Debug().Logf(format, args...)
}

func logMaxprocsFailed(err error) {
	Logger.Warning().Err(err).Log("automaxprocs: failed to set GOMAXPROCS")
}
