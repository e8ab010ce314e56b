package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"chat-assistant/internal/config"
)

func TestWith_AttachesContextIDs(t *testing.T) {
	var buf bytes.Buffer
	base := NewWithWriter(config.LogConfig{Level: "info", Format: "json"}, false, &buf)

	ctx := WithTraceID(context.Background(), "t-1")
	ctx = WithUserID(ctx, "u-1")
	ctx = WithSessID(ctx, "s-1")
	With(ctx, base).Info().Msg("hello")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line: %v (%s)", err, buf.String())
	}
	for k, want := range map[string]string{"trace_id": "t-1", "user_id": "u-1", "session_id": "s-1", "message": "hello"} {
		if line[k] != want {
			t.Errorf("%s = %v, want %s", k, line[k], want)
		}
	}
	if _, ok := line["conn_id"]; ok {
		t.Errorf("conn_id should be absent")
	}
	if TraceID(ctx) != "t-1" || UserID(ctx) != "u-1" {
		t.Errorf("accessors mismatch")
	}
}

func TestNew_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(config.LogConfig{Level: "warn", Format: "json"}, false, &buf)
	l.Info().Msg("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level: %s", buf.String())
	}
	l.Warn().Msg("kept")
	if buf.Len() == 0 {
		t.Fatalf("warn should be written")
	}
}

func TestRedact(t *testing.T) {
	if got := Redact("someone@example.com", false); got != "some...om" {
		t.Fatalf("Redact = %q", got)
	}
	if got := Redact("short", false); got != "***" {
		t.Fatalf("Redact short = %q", got)
	}
	if got := Redact("someone@example.com", true); got != "someone@example.com" {
		t.Fatalf("Redact dev = %q", got)
	}
}
