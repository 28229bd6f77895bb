// Package logging defines the context-aware structured logger used across
// the service, with slog and zap backends.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "login", "account_id", id, "jti", jti)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

const (
	FormatZap  = "zap"
	FormatSlog = "slog"
)

// New builds a logger for the given backend. Development mode turns on
// debug level and human-readable output.
func New(format string, development bool, w io.Writer) (Logger, error) {
	switch format {
	case FormatZap, "":
		return NewZapLoggerFor(development, w)
	case FormatSlog:
		level := slog.LevelInfo
		if development {
			level = slog.LevelDebug
		}
		h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
		return NewSlogLogger(slog.New(h)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

// Nop discards everything.
type Nop struct{}

func (Nop) Debug(context.Context, string, ...any) {}
func (Nop) Info(context.Context, string, ...any)  {}
func (Nop) Warn(context.Context, string, ...any)  {}
func (Nop) Error(context.Context, string, ...any) {}
func (n Nop) With(...any) Logger                  { return n }
