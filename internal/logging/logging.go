// Package logging provides slog helpers shared across the application.
package logging

import (
	"context"
	"log/slog"
	"os"
)

type contextKey string

const loggerKey = contextKey("logger")

// NewLogger builds the application's text logger. Verbose enables debug level.
func NewLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

// WithLogger stores the logger in the context for downstream handlers.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger stored in ctx, or slog.Default when absent.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// LogError logs err with a message and any extra attributes.
func LogError(logger *slog.Logger, msg string, err error, attrs ...any) {
	if logger == nil {
		return
	}
	args := append([]any{slog.String("error", err.Error())}, attrs...)
	logger.Error(msg, args...)
}

// LogHTTPRequest records one served HTTP request.
func LogHTTPRequest(logger *slog.Logger, method, path string, status int, durationMs float64, attrs ...any) {
	if logger == nil {
		return
	}
	args := append([]any{
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("duration_ms", durationMs),
	}, attrs...)
	logger.Info("http request", args...)
}
