package types

// Logger is the structured logger used throughout popbal.
//
// Messages are constant strings; variable data goes into alternating
// key-value pairs, e.g. logger.Info("neighborhood balanced", "neighborhood", 3).
// The method set matches zap.SugaredLogger, so it can be passed in unchanged;
// log/slog is adapted by popbal.NewSlogLogger.
//
// Loggers are shared by every neighborhood task of a run and must be safe
// for concurrent use.
type Logger interface {
	// Debug logs per-sweep and per-attempt diagnostics.
	Debug(msg string, keysAndValues ...any)

	// Info logs run and neighborhood milestones.
	Info(msg string, keysAndValues ...any)

	// Warn logs conditions the run recovers from, such as a neighborhood
	// that kept a non-converged best attempt.
	Warn(msg string, keysAndValues ...any)

	// Error logs neighborhood failures and hook errors.
	Error(msg string, keysAndValues ...any)

	// Fatal logs and exits the process. popbal itself never calls it.
	Fatal(msg string, keysAndValues ...any)
}
