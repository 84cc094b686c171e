// Package observability carries request-scoped logging context and the
// matcher's domain metrics.
package observability

import (
	"context"
	"log/slog"
)

type loggerKey struct{}

type requestIDKey struct{}

// ContextWithLogger attaches lg to ctx. A nil logger leaves ctx unchanged.
func ContextWithLogger(ctx context.Context, lg *slog.Logger) context.Context {
	if lg == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, lg)
}

// LoggerFromContext returns the request logger, or slog.Default.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if lg, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && lg != nil {
		return lg
	}
	return slog.Default()
}

// ContextWithRequestID stores a non-empty request id in ctx.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the request id or "".
func RequestIDFromContext(ctx context.Context) string {
	rid, _ := ctx.Value(requestIDKey{}).(string)
	return rid
}

// WithUser returns a context whose logger also carries the acting user id.
func WithUser(ctx context.Context, userID int64) context.Context {
	return ContextWithLogger(ctx, LoggerFromContext(ctx).With(slog.Int64("user_id", userID)))
}
