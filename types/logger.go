package types

// Logger defines methods for structured logging.
//
// All methods accept alternating key-value pairs, the convention of log/slog and
// zap.SugaredLogger. internal/logging adapts log/slog; the default is a no-op.
//
// The grouper logs per-group totals and the balancer name at Info after every
// partition, solver command lines and output at Debug, and degraded paths (no
// solver available, stale plan keys left behind) at Warn.
type Logger interface {
	// Debug logs a message at DebugLevel.
	Debug(msg string, keysAndValues ...any)

	// Info logs a message at InfoLevel.
	Info(msg string, keysAndValues ...any)

	// Warn logs a message at WarnLevel.
	Warn(msg string, keysAndValues ...any)

	// Error logs a message at ErrorLevel.
	Error(msg string, keysAndValues ...any)

	// Fatal logs a message at FatalLevel and calls os.Exit(1).
	Fatal(msg string, keysAndValues ...any)
}
