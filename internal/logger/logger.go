// Package logger wraps log/slog with request-id-aware context methods, so
// every component logs structured output through one entry point instead
// of fmt.Println or the bare log package.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/snisarenko-labs/ipcensus/internal/ctxmeta"
)

// Config is the logger section of the service configuration.
type Config struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// Logger is a thin slog wrapper; InfoContext, WarnContext and ErrorContext
// attach the request id from ctxmeta, when present, as a structured field.
// DebugContext is slog's own and does not.
type Logger struct {
	*slog.Logger
}

func New(cfg *Config) *Logger {
	return NewWithWriter(os.Stdout, cfg)
}

func NewWithWriter(w io.Writer, cfg *Config) *Logger {
	return &Logger{Logger: slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: levelFromString(cfg.Level)}))}
}

func levelFromString(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.Logger.InfoContext(ctx, msg, withRequestID(ctx, args)...)
}

func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.Logger.WarnContext(ctx, msg, withRequestID(ctx, args)...)
}

func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.Logger.ErrorContext(ctx, msg, withRequestID(ctx, args)...)
}

func withRequestID(ctx context.Context, args []any) []any {
	id := ctxmeta.RequestID(ctx)
	if id == "" {
		return args
	}
	return append(args, "request_id", id)
}
