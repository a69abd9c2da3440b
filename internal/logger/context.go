package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

// ContextWithLogger stores a logger in the context.
func ContextWithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext extracts a logger from the context.
// Returns zap.NewNop() if no logger is found.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// WithCaller returns a context whose logger carries the resolved caller
// identity. Every log line downstream of authentication includes these
// fields, so a transaction can be traced across solve and pagination.
func WithCaller(ctx context.Context, tenantID, userID string) context.Context {
	l := FromContext(ctx).With(
		zap.String("tenant_id", tenantID),
		zap.String("user_id", userID),
	)
	return ContextWithLogger(ctx, l)
}

// WithTransaction returns a context whose logger carries the transaction id.
func WithTransaction(ctx context.Context, transID string) context.Context {
	l := FromContext(ctx).With(zap.String("trans_id", transID))
	return ContextWithLogger(ctx, l)
}
