package utils

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestDefaultLoggerLogsWithoutPanicking(t *testing.T) {
	l := DefaultLogger("test")
	l.Info("hello", String("key", "value"), Int("n", 1))
}

func TestNewLoggerRespectsLevel(t *testing.T) {
	l, err := NewLogger(LoggerConfig{Level: zapcore.WarnLevel, Component: "test"})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	if !l.Core().Enabled(zapcore.WarnLevel) {
		t.Fatalf("expected warn level to be enabled")
	}
	if l.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("expected debug level to be disabled at warn threshold")
	}
}

func TestWithAddsFields(t *testing.T) {
	l := DefaultLogger("test")
	derived := l.With(String("request_id", "abc"))
	derived.Info("request handled")
}
