package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func newTestSlogLogger(t *testing.T, level slog.Level) (*SlogLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level})
	return NewSlogLogger(slog.New(h)), &buf
}

func TestSlogLogger_Levels(t *testing.T) {
	log, buf := newTestSlogLogger(t, slog.LevelDebug)
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	out := buf.String()

	tests := []struct {
		level string
		msg   string
		attr  string
	}{
		{"DEBUG", "dbg", "a=1"},
		{"INFO", "inf", "b=2"},
		{"WARN", "wrn", "c=3"},
		{"ERROR", "err", "d=4"},
	}

	for _, tc := range tests {
		for _, want := range []string{"level=" + tc.level, "msg=" + tc.msg, tc.attr} {
			if !strings.Contains(out, want) {
				t.Fatalf("expected %q in output:\n%s", want, out)
			}
		}
	}
}

func TestSlogLogger_LevelFilter(t *testing.T) {
	log, buf := newTestSlogLogger(t, slog.LevelInfo)

	log.Debug(context.Background(), "quiet")

	if buf.Len() != 0 {
		t.Fatalf("debug line written at info level: %s", buf.String())
	}
}

func TestSlogLogger_With(t *testing.T) {
	log, buf := newTestSlogLogger(t, slog.LevelInfo)

	log.With("module", "http", "request_id", "r-1").Info(context.Background(), "request", "status", 204)

	out := buf.String()
	for _, s := range []string{"module=http", "request_id=r-1", "status=204", "msg=request"} {
		if !strings.Contains(out, s) {
			t.Fatalf("expected %q in output, got:\n%s", s, out)
		}
	}
}
