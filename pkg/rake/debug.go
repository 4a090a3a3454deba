package rake

import (
	"log/slog"
	"sync/atomic"
)

var debug atomic.Bool

// SetDebug turns verbose diagnostics on or off for every client in the process.
// It only affects logging.
func SetDebug(on bool) {
	debug.Store(on)
	slog.Debug("rake debug mode", slog.Bool("debug", on))
}

// Debug reports whether verbose diagnostics are enabled.
func Debug() bool {
	return debug.Load()
}

// debugLogger returns logger when debug mode is on and nil otherwise.
// The observability helpers treat a nil logger as a no-op.
func debugLogger(logger *slog.Logger) *slog.Logger {
	if !debug.Load() {
		return nil
	}
	return logger
}
