package observability

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"somikra/internal/config"
)

func TestNewLoggerTo_FormatAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, config.LoggerConfig{Level: "warn", Format: "json"})

	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}

func TestLoggerFrom_AddsIDs(t *testing.T) {
	var buf bytes.Buffer
	base := NewLoggerTo(&buf, config.LoggerConfig{Level: "info", Format: "text"})

	ctx := WithRequestID(context.Background(), "req-42")
	ctx, span := StartSpan(ctx, "GET /api/report")
	LoggerFrom(ctx, base).Info("hello")

	assert.Contains(t, buf.String(), "request_id=req-42")
	assert.Contains(t, buf.String(), "trace_id="+span.TraceID)
}

func TestLoggerFrom_NoContext(t *testing.T) {
	base := NewLoggerTo(&bytes.Buffer{}, config.LoggerConfig{})
	assert.Same(t, base, LoggerFrom(context.Background(), base))
}

func TestSessionID(t *testing.T) {
	ctx := WithSessionID(context.Background(), "s-1")
	assert.Equal(t, "s-1", GetSessionID(ctx))
	assert.Empty(t, GetSessionID(context.Background()))
}

func TestSpan_ChildInheritsTrace(t *testing.T) {
	ctx, parent := StartSpan(context.Background(), "parent")
	_, child := StartSpan(ctx, "child")

	assert.Equal(t, parent.TraceID, child.TraceID)
	assert.Equal(t, parent.SpanID, child.ParentID)
}

func TestSpan_FinishAndAttrs(t *testing.T) {
	_, span := StartSpan(context.Background(), "op")
	span.SetError(errors.New("boom"))
	span.Finish()
	first := *span.EndTime
	span.Finish()

	require.NotNil(t, span.Duration)
	assert.Equal(t, first, *span.EndTime)
	assert.Equal(t, SpanStatusError, span.Status)
	assert.Contains(t, span.LogAttrs(), "boom")
}
