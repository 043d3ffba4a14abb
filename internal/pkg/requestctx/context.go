// Package requestctx carries request-scoped values across layers.
package requestctx

import (
	"context"

	"go.uber.org/zap"
)

type contextKey string

const (
	bearerTokenKey   contextKey = "orders/requestctx/bearer"
	loggerKey        contextKey = "orders/requestctx/logger"
	correlationIDKey contextKey = "orders/requestctx/correlation-id"
)

var noopLogger = zap.NewNop()

// WithBearerToken stores the caller's raw bearer token so outbound clients can forward it.
func WithBearerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, bearerTokenKey, token)
}

// BearerToken returns the stored token; ok is false when none or empty.
func BearerToken(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	token, ok := ctx.Value(bearerTokenKey).(string)
	return token, ok && token != ""
}

// WithLogger stores the request logger. A nil logger stores a no-op one.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	if logger == nil {
		logger = noopLogger
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// Logger returns the request logger or a no-op logger.
func Logger(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return noopLogger
	}
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok && logger != nil {
		return logger
	}
	return noopLogger
}

// WithCorrelationID stores the id echoed in responses and logs.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationID returns the stored id or an empty string.
func CorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(correlationIDKey).(string)
	return id
}
