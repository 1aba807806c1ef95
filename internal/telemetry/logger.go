// Package telemetry provides structured logging and metrics for the
// CryVigilance engine and its hosts.
package telemetry

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog.Logger with engine-specific helpers. The zero value
// logs to stderr at info level; Nop returns a disabled logger.
type Logger struct {
	zlog zerolog.Logger
}

// LoggerConfig configures a Logger.
type LoggerConfig struct {
	// Level is the minimum level: trace, debug, info, warn, error.
	Level string

	// Output is where log lines are written. Defaults to os.Stderr.
	Output io.Writer

	// Console enables human-readable console formatting.
	Console bool
}

// NewLogger creates a logger with the given configuration.
func NewLogger(cfg LoggerConfig) Logger {
	w := cfg.Output
	if w == nil {
		w = os.Stderr
	}
	if cfg.Console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	zlog := zerolog.New(w).With().Timestamp().Logger().Level(parseLevel(cfg.Level))
	return Logger{zlog: zlog}
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return Logger{zlog: zerolog.Nop()}
}

// Component returns a child logger tagged with a component name.
func (l Logger) Component(name string) Logger {
	return Logger{zlog: l.zlog.With().Str("component", name).Logger()}
}

// WithKey returns a child logger tagged with a property key.
func (l Logger) WithKey(key string) Logger {
	return Logger{zlog: l.zlog.With().Str("property", key).Logger()}
}

// WithPath returns a child logger tagged with a file path.
func (l Logger) WithPath(path string) Logger {
	return Logger{zlog: l.zlog.With().Str("path", path).Logger()}
}

// WithError returns a child logger carrying an error field.
func (l Logger) WithError(err error) Logger {
	return Logger{zlog: l.zlog.With().Err(err).Logger()}
}

// Debug logs a debug-level message.
func (l Logger) Debug(msg string) {
	l.zlog.Debug().Msg(msg)
}

// Debugf logs a formatted debug-level message.
func (l Logger) Debugf(format string, args ...any) {
	l.zlog.Debug().Msgf(format, args...)
}

// Info logs an info-level message.
func (l Logger) Info(msg string) {
	l.zlog.Info().Msg(msg)
}

// Infof logs a formatted info-level message.
func (l Logger) Infof(format string, args ...any) {
	l.zlog.Info().Msgf(format, args...)
}

// Warn logs a warning-level message.
func (l Logger) Warn(msg string) {
	l.zlog.Warn().Msg(msg)
}

// Warnf logs a formatted warning-level message.
func (l Logger) Warnf(format string, args ...any) {
	l.zlog.Warn().Msgf(format, args...)
}

// Error logs an error-level message.
func (l Logger) Error(msg string) {
	l.zlog.Error().Msg(msg)
}

// Errorf logs a formatted error-level message.
func (l Logger) Errorf(format string, args ...any) {
	l.zlog.Error().Msgf(format, args...)
}

// parseLevel converts a level name to a zerolog.Level, defaulting to info.
func parseLevel(level string) zerolog.Level {
	switch level {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
