package logging

import "log/slog"

// Info emits an info record. A nil logger is a no-op, so aggregators can run
// silently in tests.
func Info(logger *slog.Logger, msg string, args ...any) {
	if logger != nil {
		logger.Info(msg, args...)
	}
}

// Warn emits a warning record. A nil logger is a no-op.
func Warn(logger *slog.Logger, msg string, args ...any) {
	if logger != nil {
		logger.Warn(msg, args...)
	}
}

// Error emits an error record, attaching err under the "error" key when it is
// set. A nil logger is a no-op.
func Error(logger *slog.Logger, msg string, err error, args ...any) {
	if logger == nil {
		return
	}
	if err != nil {
		args = append(args, "error", err)
	}
	logger.Error(msg, args...)
}
