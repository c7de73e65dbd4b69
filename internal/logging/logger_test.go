package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"
)

func newObservedLogger() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return &Logger{zap: zap.New(core)}, logs
}

func TestConfigValidate(t *testing.T) {
	valid := NewDefaultConfig()
	assert.NoError(t, valid.Validate())

	bad := &Config{Level: "loud", Format: "json"}
	assert.Error(t, bad.Validate())

	bad = &Config{Level: "info", Format: "xml"}
	assert.Error(t, bad.Validate())

	bad = &Config{Level: "info", Format: "json", Output: "file"}
	assert.Error(t, bad.Validate())
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(&Config{Level: "loud", Format: "json"})
	assert.Error(t, err)
}

func TestLoggerEmitsContextFields(t *testing.T) {
	logger, logs := newObservedLogger()

	ctx := WithTaskID(context.Background(), "task-1")
	ctx = WithRequestID(ctx, "req-9")
	logger.Info(ctx, "task started", zap.String("kind", "generate"))

	entries := logs.All()
	require.Len(t, entries, 1)

	fields := entries[0].ContextMap()
	assert.Equal(t, "task-1", fields["task.id"])
	assert.Equal(t, "req-9", fields["request.id"])
	assert.Equal(t, "generate", fields["kind"])
}

func TestLoggerWithoutContextValues(t *testing.T) {
	logger, logs := newObservedLogger()

	logger.Info(context.Background(), "plain message")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.NotContains(t, fields, "task.id")
	assert.NotContains(t, fields, "request.id")
}

func TestTaskIDRoundTrip(t *testing.T) {
	ctx := WithTaskID(context.Background(), "task-1")
	assert.Equal(t, "task-1", TaskIDFromContext(ctx))
	assert.Empty(t, TaskIDFromContext(context.Background()))

	// Empty values are not stored.
	assert.Equal(t, context.Background(), WithTaskID(context.Background(), ""))
}

func TestNamedAndWith(t *testing.T) {
	logger, logs := newObservedLogger()

	logger.Named("orchestrator").With(zap.String("phase", "publish")).Info(context.Background(), "gated")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "orchestrator", entries[0].LoggerName)
	assert.Equal(t, "publish", entries[0].ContextMap()["phase"])
}

func TestNewNopDoesNotPanic(t *testing.T) {
	logger := NewNop()
	logger.Info(context.Background(), "dropped")
	assert.NoError(t, logger.Sync())
}
