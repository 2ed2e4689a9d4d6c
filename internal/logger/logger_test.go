package logger

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInit(t *testing.T) {
	originalLog := log
	defer func() { log = originalLog }()

	t.Run("Production", func(t *testing.T) {
		Init("production")
		assert.NotNil(t, log)
	})

	t.Run("Development", func(t *testing.T) {
		Init("development")
		assert.NotNil(t, log)
	})

	t.Run("StacktraceOnlyFromError", func(t *testing.T) {
		for _, env := range []string{"production", "development"} {
			Init(env)

			warn := log.Check(zap.WarnLevel, "warn")
			if assert.NotNil(t, warn, env) {
				assert.Empty(t, warn.Stack, env)
			}
			errEntry := log.Check(zap.ErrorLevel, "error")
			if assert.NotNil(t, errEntry, env) {
				assert.NotEmpty(t, errEntry.Stack, env)
			}
		}
	})
}

func TestL(t *testing.T) {
	originalLog := log
	defer func() { log = originalLog }()

	// Force nil to test lazy initialization
	log = nil
	os.Setenv("APP_ENV", "test")

	l := L()
	assert.NotNil(t, l)
	assert.NotNil(t, log)
}

func TestSet(t *testing.T) {
	originalLog := log
	defer func() { log = originalLog }()

	nop := zap.NewNop()
	Set(nop)
	assert.Same(t, nop, L())
}

func TestContextFunctions(t *testing.T) {
	ctx := context.Background()

	t.Run("WithCallID_Generates", func(t *testing.T) {
		newCtx := WithCallID(ctx)
		assert.NotEqual(t, ctx, newCtx)
		assert.NotEmpty(t, CallIDFrom(newCtx))
	})

	t.Run("WithCallID_KeepsExisting", func(t *testing.T) {
		tagged := WithGivenCallID(ctx, "call-1")
		assert.Equal(t, "call-1", CallIDFrom(WithCallID(tagged)))
	})

	t.Run("CallIDFrom_Empty", func(t *testing.T) {
		assert.Equal(t, "", CallIDFrom(ctx))
	})
}

func TestFromCtx(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	originalLog := log
	log = zap.New(core)
	defer func() { log = originalLog }()

	t.Run("WithCallID", func(t *testing.T) {
		ctx := WithGivenCallID(context.Background(), "call-abc-123")

		FromCtx(ctx).Info("test message with id")

		logs := observed.TakeAll()
		assert.Len(t, logs, 1)
		assert.Equal(t, "test message with id", logs[0].Message)
		assert.Equal(t, "call-abc-123", logs[0].ContextMap()["call_id"])
	})

	t.Run("WithoutCallID", func(t *testing.T) {
		FromCtx(context.Background()).Info("test message without id")

		logs := observed.TakeAll()
		assert.Len(t, logs, 1)
		_, ok := logs[0].ContextMap()["call_id"]
		assert.False(t, ok)
	})
}

func TestSync(t *testing.T) {
	assert.NotPanics(t, func() {
		Sync()
	})
}
