package logging_test

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"

	"yieldc/internal/logging"
)

func TestLoggerDefaultsToNop(t *testing.T) {
	logging.SetLogger(nil)
	if logging.Logger() == nil {
		t.Fatal("Logger() must never return nil")
	}
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := logging.New(&buf, "warn")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logging.SetLogger(l)
	t.Cleanup(func() { logging.SetLogger(nil) })

	logging.Logger().Info("hidden")
	logging.Logger().Warn("shown", zap.String("method", "C.M"))
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") || !strings.Contains(out, "C.M") {
		t.Fatalf("unexpected log output: %q", out)
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := logging.New(&bytes.Buffer{}, "chatty"); err == nil {
		t.Fatal("expected an error for an unknown level")
	}
}
