// Package logger provides a structured, levelled logger built on log/slog.
//
// WithCtx returns the request-scoped logger installed by the Logger
// middleware, so every line a handler writes carries its request_id:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("order created", "order_id", id)
//	// → time=... level=INFO msg="order created" request_id=a1b2c3d4 order_id=...
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/shashiranjanraj/foodmate/config"
)

var L *slog.Logger

func init() {
	L = New(os.Stdout, config.AppEnv(), config.LogLevel())
	slog.SetDefault(L)
}

// New builds a logger writing to w. Production environments get JSON,
// everything else the human-readable text format.
func New(w io.Writer, env, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	switch env {
	case "production", "prod":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// ParseLevel maps debug/info/warn/error onto slog levels. Unknown is info.
func ParseLevel(level string) slog.Level {
	switch level {
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

// Use replaces the base logger, e.g. to fan out to the Mongo sink.
func Use(l *slog.Logger) {
	L = l
	slog.SetDefault(l)
}

// ctxKey is the unexported key used to store a per-request *slog.Logger.
type ctxKey struct{}

// WithCtx returns the logger stored in ctx, or the base logger.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return L
	}
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores a *slog.Logger (pre-tagged with request_id) into ctx.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// Debug logs at DEBUG level.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs at INFO level.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs at WARN level.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs at ERROR level.
func Error(msg string, args ...any) { L.Error(msg, args...) }

// LevelFor picks the access-log level for an HTTP status.
func LevelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
