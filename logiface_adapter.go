package asyncsync

import (
	"github.com/joeycumines/logiface"
)

// LogifaceAdapter bridges this package's Logger interface to an existing
// github.com/joeycumines/logiface logger, for callers who have already
// standardized their service's structured logging on logiface (e.g. via
// logiface-zerolog, logiface-slog, or logiface-stumpy) and want
// asyncsync's diagnostics to flow through the same pipeline instead of a
// separate DefaultLogger.
//
// Filtering by level is left to logiface itself: IsEnabled reports true
// for every level whenever a logger is set, and the underlying Logger.Build/Log calls no-op cheaply when
// the configured level excludes them.
type LogifaceAdapter struct {
	logger *logiface.Logger[logiface.Event]
}

// NewLogifaceAdapter wraps logger. Pass the result of calling
// (*logiface.Logger[E]).Logger() if you constructed a logger against a
// concrete event type.
func NewLogifaceAdapter(logger *logiface.Logger[logiface.Event]) *LogifaceAdapter {
	return &LogifaceAdapter{logger: logger}
}

func (a *LogifaceAdapter) IsEnabled(LogLevel) bool {
	return a.logger != nil
}

func (a *LogifaceAdapter) Log(entry LogEntry) {
	if a.logger == nil {
		return
	}

	b := a.logger.Build(toLogifaceLevel(entry.Level)).Str("category", entry.Category)
	if entry.HasBackend {
		b = b.Str("backend", entry.Backend.String())
	}
	if entry.HasWaiterCount {
		b = b.Int("waiters", entry.WaiterCount)
	}
	if entry.HasPermits {
		b = b.Uint64("permits", entry.Permits)
	}
	for k, v := range entry.Context {
		b = b.Any(k, v)
	}
	if entry.Err != nil {
		b = b.Err(entry.Err)
	}
	b.Log(entry.Message)
}

func toLogifaceLevel(level LogLevel) logiface.Level {
	switch level {
	case LevelDebug:
		return logiface.LevelDebug
	case LevelInfo:
		return logiface.LevelInformational
	case LevelWarn:
		return logiface.LevelWarning
	case LevelError:
		return logiface.LevelError
	default:
		return logiface.LevelInformational
	}
}
