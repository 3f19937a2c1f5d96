package logging

import (
	"fmt"

	"github.com/arloliu/pushsub/types"
	"github.com/rs/zerolog"
)

// ZerologLogger implements types.Logger on top of a zerolog.Logger.
//
// Key-value pairs become zerolog fields. Values implementing fmt.Stringer
// (such as types.State) are rendered with String(), errors under their key
// with Error(). A trailing key without a value is logged as "!BADKEY".
type ZerologLogger struct {
	logger zerolog.Logger
}

// Compile-time assertion that ZerologLogger implements Logger.
var _ types.Logger = (*ZerologLogger)(nil)

// NewZerolog creates a new zerolog-based logger.
//
// Parameters:
//   - logger: The zerolog.Logger to write to
//
// Returns:
//   - *ZerologLogger: Logger adapter
//
// Example:
//
//	zl := zerolog.New(os.Stderr).With().Timestamp().Str("component", "pushsub").Logger()
//	h, err := pushsub.NewHandler(ctx, host, &cfg, pushsub.WithLogger(logging.NewZerolog(zl)))
func NewZerolog(logger zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{logger: logger}
}

// Debug logs a debug-level message with optional key-value pairs.
func (l *ZerologLogger) Debug(msg string, keysAndValues ...any) {
	l.write(l.logger.Debug(), msg, keysAndValues)
}

// Info logs an info-level message with optional key-value pairs.
func (l *ZerologLogger) Info(msg string, keysAndValues ...any) {
	l.write(l.logger.Info(), msg, keysAndValues)
}

// Warn logs a warning-level message with optional key-value pairs.
func (l *ZerologLogger) Warn(msg string, keysAndValues ...any) {
	l.write(l.logger.Warn(), msg, keysAndValues)
}

// Error logs an error-level message with optional key-value pairs.
func (l *ZerologLogger) Error(msg string, keysAndValues ...any) {
	l.write(l.logger.Error(), msg, keysAndValues)
}

// Fatal logs a fatal-level message; zerolog exits the process after writing it.
func (l *ZerologLogger) Fatal(msg string, keysAndValues ...any) {
	l.write(l.logger.Fatal(), msg, keysAndValues)
}

func (l *ZerologLogger) write(ev *zerolog.Event, msg string, keysAndValues []any) {
	if ev == nil {
		return // level disabled
	}

	for i := 0; i < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}
		if i+1 >= len(keysAndValues) {
			ev = ev.Interface("!BADKEY", key)
			break
		}

		switch v := keysAndValues[i+1].(type) {
		case error:
			ev = ev.AnErr(key, v)
		case fmt.Stringer:
			ev = ev.Stringer(key, v)
		default:
			ev = ev.Interface(key, v)
		}
	}

	ev.Msg(msg)
}
