package logger

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ctxKey string

const callIDKey ctxKey = "call_id"

// WithCallID tags ctx with a fresh id unless it already carries one.
func WithCallID(ctx context.Context) context.Context {
	if CallIDFrom(ctx) != "" {
		return ctx
	}
	return context.WithValue(ctx, callIDKey, uuid.NewString())
}

// WithGivenCallID tags ctx with callID, replacing any existing id.
func WithGivenCallID(ctx context.Context, callID string) context.Context {
	return context.WithValue(ctx, callIDKey, callID)
}

func CallIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(callIDKey).(string); ok {
		return v
	}
	return ""
}

// FromCtx returns logger with call_id automatically added
func FromCtx(ctx context.Context) *zap.Logger {
	callID := CallIDFrom(ctx)
	if callID == "" {
		return L()
	}
	return L().With(zap.String("call_id", callID))
}
