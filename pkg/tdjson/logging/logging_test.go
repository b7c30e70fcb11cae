package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestSlogLoggerWritesAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := New(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	logger.With("client", 1).Debug(context.Background(), "send", "type", "getMe", Redacted("payload"))

	out := buf.String()
	for _, want := range []string{"msg=send", "client=1", "type=getMe", "payload=" + Placeholder()} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output %q missing %q", out, want)
		}
	}
}

func TestNoopWith(t *testing.T) {
	if Noop.With("k", "v") != Noop {
		t.Fatal("Noop.With should return Noop")
	}
	Noop.Error(context.Background(), "ignored")
}
