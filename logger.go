package reactor

import "log/slog"

// logger is the package-wide logger. The pool Scheduler logs a faulted
// batch through it at Error level; the Frame itself does not log.
var logger *slog.Logger = slog.Default()

// SetLogger overrides the package logger.
//
// If not set, slog.Default() is used.
func SetLogger(l *slog.Logger) {
	logger = l
}
