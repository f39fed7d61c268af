package logger

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// With returns a context carrying fields in addition to those already attached.
func With(ctx context.Context, fields ...any) context.Context {
	prev := Fields(ctx)
	merged := make([]any, 0, len(prev)+len(fields))
	merged = append(merged, prev...)
	merged = append(merged, fields...)
	return context.WithValue(ctx, ctxKey{}, merged)
}

// Fields returns the key/value pairs attached to ctx.
func Fields(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	fields, _ := ctx.Value(ctxKey{}).([]any)
	return fields
}

// From returns the default logger decorated with the fields attached to ctx.
func From(ctx context.Context) *slog.Logger {
	return FromOr(ctx, LoggerWrapper())
}

// FromOr decorates base with the fields attached to ctx.
func FromOr(ctx context.Context, base *slog.Logger) *slog.Logger {
	if fields := Fields(ctx); len(fields) > 0 {
		return base.With(fields...)
	}
	return base
}
