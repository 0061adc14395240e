package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func useBuffer(t *testing.T, level string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(New(&buf, level, "text"))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestWithComponent(t *testing.T) {
	buf := useBuffer(t, "info")
	WithComponent("matcher").Info("ready")
	assert.Contains(t, buf.String(), "component=matcher")
	assert.Contains(t, buf.String(), "msg=ready")
}

func TestFromContext(t *testing.T) {
	buf := useBuffer(t, "info")
	ctx := WithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", RequestID(ctx))
	FromContext(ctx).Info("handled")
	assert.Contains(t, buf.String(), "request_id=req-1")
}

func TestLevels(t *testing.T) {
	buf := useBuffer(t, "warn")
	slog.Info("hidden")
	slog.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
