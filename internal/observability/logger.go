package observability

import (
	"context"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
)

type ctxKey string

const (
	ctxKeyRequestID ctxKey = "request_id"
)

// global logger, JSON to stdout until InitLogger says otherwise.
var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// InitLogger configures the global logger. Format "text" gets the colorized
// tint handler for local runs; anything else stays JSON.
func InitLogger(format string, level slog.Level) {
	if format == "text" {
		logger = slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: level}))
	} else {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}
	slog.SetDefault(logger)
}

func Logger() *slog.Logger {
	return logger
}

// WithFields returns a logger with additional fields.
func WithFields(kv ...any) *slog.Logger {
	return logger.With(kv...)
}

// WithRequestID stores a request_id in the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, requestID)
}

// LoggerFromContext adds request_id if present.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	reqID, _ := ctx.Value(ctxKeyRequestID).(string)
	if reqID == "" {
		return logger
	}
	return logger.With("request_id", reqID)
}
