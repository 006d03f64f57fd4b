package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func newCaptureLogger() (*bytes.Buffer, ServiceLogger) {
	buf := &bytes.Buffer{}
	handler := slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return buf, NewSlogServiceLogger(slog.New(handler))
}

func TestInfoIncludesFields(t *testing.T) {
	buf, logger := newCaptureLogger()

	logger.Info("publishing", LogFields{"topic": "bench.Test.evt_scalars", "count": 5})

	out := buf.String()
	for _, want := range []string{"publishing", "topic=bench.Test.evt_scalars", "count=5"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}
}

func TestErrorAppendsError(t *testing.T) {
	buf, logger := newCaptureLogger()

	logger.Error("publish failed", errors.New("broker down"), LogFields{"topic": "t"})

	out := buf.String()
	if !strings.Contains(out, `error="broker down"`) {
		t.Errorf("log output missing error field: %s", out)
	}
}

func TestWithCarriesFields(t *testing.T) {
	buf, logger := newCaptureLogger()

	child := logger.With(LogFields{"component": "Test"})
	child.Debug("derived", nil)

	if !strings.Contains(buf.String(), "component=Test") {
		t.Errorf("log output missing inherited field: %s", buf.String())
	}
}

func TestFieldOrderIsStable(t *testing.T) {
	args := toArgs(LogFields{"b": 2, "a": 1, "c": 3})
	want := []any{"a", 1, "b", 2, "c", 3}
	if len(args) != len(want) {
		t.Fatalf("got %d args, want %d", len(args), len(want))
	}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("args[%d] = %v, want %v", i, args[i], want[i])
		}
	}
}

func TestNopDoesNotPanic(t *testing.T) {
	logger := Nop()
	logger.Info("ignored", LogFields{"k": "v"})
	logger.Error("ignored", errors.New("x"), nil)
}

func TestNilLoggerPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for nil slog logger")
		}
	}()
	NewSlogServiceLogger(nil)
}
