// Package utils holds the small, cross-cutting pieces every other
// package reaches for: structured logging, snapshot IDs, and graceful
// shutdown.
package utils

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Field is a structured logging key-value pair. It's a direct alias for
// zap.Field so callers can use zap's own field constructors (zap.String,
// zap.Int, ...) interchangeably with the helpers below.
type Field = zap.Field

// Logger wraps *zap.Logger with the component-tagging convention used
// across this codebase: every logger is created for one named component
// and that name rides along on every entry.
type Logger struct {
	*zap.Logger
}

// LoggerConfig configures a new Logger.
type LoggerConfig struct {
	Level     zapcore.Level
	Component string
	// Development enables human-readable, colorized console output.
	// Disabled, the logger emits JSON — the shape cmd/regiond runs with
	// in production.
	Development bool
}

// NewLogger builds a logger per config.
func NewLogger(config LoggerConfig) (*Logger, error) {
	var zcfg zap.Config
	if config.Development {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(config.Level)
	zcfg.OutputPaths = []string{"stdout"}

	base, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	if config.Component != "" {
		base = base.With(zap.String("component", config.Component))
	}
	return &Logger{base}, nil
}

// DefaultLogger returns a development-mode, info-level logger for
// component — sensible for local runs and tests.
func DefaultLogger(component string) *Logger {
	l, err := NewLogger(LoggerConfig{Level: zapcore.InfoLevel, Component: component, Development: true})
	if err != nil {
		// zap's own config construction failing means the process can't
		// log at all; fall back to a no-op rather than panic here.
		return &Logger{zap.NewNop()}
	}
	return l
}

// With returns a derived logger carrying the given fields on every entry.
func (l *Logger) With(fields ...Field) *Logger {
	return &Logger{l.Logger.With(fields...)}
}

// Fatal logs at fatal level and exits the process (zap.Logger.Fatal does
// this already; kept here so callers used to utils.Logger don't need to
// know that).
func (l *Logger) Fatal(msg string, fields ...Field) {
	l.Logger.Fatal(msg, fields...)
	os.Exit(1)
}

func String(key, value string) Field        { return zap.String(key, value) }
func Int(key string, value int) Field        { return zap.Int(key, value) }
func Int64(key string, value int64) Field    { return zap.Int64(key, value) }
func Uint64(key string, value uint64) Field  { return zap.Uint64(key, value) }
func Float64(key string, value float64) Field { return zap.Float64(key, value) }
func Bool(key string, value bool) Field      { return zap.Bool(key, value) }
func Err(err error) Field                    { return zap.Error(err) }
func Any(key string, value interface{}) Field { return zap.Any(key, value) }

var global = DefaultLogger("kernel")

// SetGlobalLogger replaces the package-level logger used by the
// free functions below.
func SetGlobalLogger(l *Logger) { global = l }

func Debug(msg string, fields ...Field) { global.Debug(msg, fields...) }
func Info(msg string, fields ...Field)  { global.Info(msg, fields...) }
func Warn(msg string, fields ...Field)  { global.Warn(msg, fields...) }
func Error(msg string, fields ...Field) { global.Error(msg, fields...) }
func Fatal(msg string, fields ...Field) { global.Fatal(msg, fields...) }
