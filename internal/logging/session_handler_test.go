package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestSessionIDHandler(t *testing.T) {
	var buf bytes.Buffer
	handler := newSessionIDHandler(slog.NewJSONHandler(&buf, nil), "test-session-123")

	slog.New(handler).Info("test message")

	if !strings.Contains(buf.String(), `"session_id":"test-session-123"`) {
		t.Errorf("expected session_id in output, got: %s", buf.String())
	}
}

func TestSessionIDHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	handler := newSessionIDHandler(slog.NewJSONHandler(&buf, nil), "session-abc")

	slog.New(handler).With("extra", "value").Info("test message")

	output := buf.String()
	if !strings.Contains(output, `"session_id":"session-abc"`) {
		t.Errorf("expected session_id in output, got: %s", output)
	}
	if !strings.Contains(output, `"extra":"value"`) {
		t.Errorf("expected extra attr in output, got: %s", output)
	}
}

func TestSessionIDHandler_NilBase(t *testing.T) {
	handler := newSessionIDHandler(nil, "session-123")
	if _, ok := handler.(NoopHandler); !ok {
		t.Errorf("expected NoopHandler when base is nil, got: %T", handler)
	}
}
