package types

// Logger defines methods for structured logging.
//
// Compatible with zap.SugaredLogger, slog and zerolog adapters (see internal/logging).
// All methods accept alternating key-value pairs for structured fields, for example:
//
//	logger.Warn("subscribe not allowed in current state", "state", StateUpdating)
type Logger interface {
	// Debug logs a message at DebugLevel.
	Debug(msg string, keysAndValues ...any)

	// Info logs a message at InfoLevel.
	// The handler logs every accepted state transition at this level.
	Info(msg string, keysAndValues ...any)

	// Warn logs a message at WarnLevel.
	// Operations requested from a state that does not allow them are reported here.
	Warn(msg string, keysAndValues ...any)

	// Error logs a message at ErrorLevel.
	// Host failures and record synchronization failures are reported here.
	Error(msg string, keysAndValues ...any)

	// Fatal logs a message at FatalLevel and calls os.Exit(1).
	//
	// The handler never calls Fatal itself; it is part of the interface so zap-style
	// loggers can be passed in unchanged.
	Fatal(msg string, keysAndValues ...any)
}
