package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func contextWithSpan(t *testing.T) (context.Context, trace.SpanContext) {
	t.Helper()
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	return trace.ContextWithSpanContext(context.Background(), sc), sc
}

func fieldMap(entry observer.LoggedEntry) map[string]any {
	return entry.ContextMap()
}

func TestFromContext_FallsBackToNop(t *testing.T) {
	l := FromContext(context.Background())
	require.NotNil(t, l)
	assert.False(t, l.Core().Enabled(zapcore.ErrorLevel))
}

func TestWithRequestIDAndUserID(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ctx, l := WithRequestID(context.Background(), base, "req-1")
	ctx, l = WithUserID(ctx, l, "user-1")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "user-1", GetUserID(ctx))
	assert.Same(t, l, FromContext(ctx))

	FromContext(ctx).Info("Payment recorded")
	require.Equal(t, 1, recorded.Len())
	fields := fieldMap(recorded.All()[0])
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "user-1", fields["user_id"])
}

func TestGetTraceAndSpanID(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
	assert.Empty(t, GetSpanID(context.Background()))

	ctx, sc := contextWithSpan(t)
	assert.Equal(t, sc.TraceID().String(), GetTraceID(ctx))
	assert.Equal(t, sc.SpanID().String(), GetSpanID(ctx))
}

func TestWithTraceContext(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	assert.Same(t, base, WithTraceContext(context.Background(), base))

	ctx, sc := contextWithSpan(t)
	WithTraceContext(ctx, base).Info("traced")
	fields := fieldMap(recorded.All()[0])
	assert.Equal(t, sc.TraceID().String(), fields["trace_id"])
	assert.Equal(t, sc.SpanID().String(), fields["span_id"])
}

func TestContextLogger_InjectsIdentifiers(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	base := zap.New(core)

	ctx, sc := contextWithSpan(t)
	ctx = context.WithValue(ctx, RequestIDKey, "req-9")
	ctx = context.WithValue(ctx, UserIDKey, "user-9")

	cl := WithLogger(ctx, base).With(zap.String("invoice_id", "inv-1"))
	cl.Debug("d")
	cl.Info("i")
	cl.Warn("w")
	cl.Error("e")

	entries := recorded.All()
	require.Len(t, entries, 4)
	for _, entry := range entries {
		fields := fieldMap(entry)
		assert.Equal(t, sc.TraceID().String(), fields["trace_id"])
		assert.Equal(t, "req-9", fields["request_id"])
		assert.Equal(t, "user-9", fields["user_id"])
		assert.Equal(t, "inv-1", fields["invoice_id"])
	}
}

func TestContextLogger_OmitsMissingIdentifiers(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	ctx := WithContext(context.Background(), zap.New(core))

	L(ctx).Info("plain")

	fields := fieldMap(recorded.All()[0])
	assert.NotContains(t, fields, "trace_id")
	assert.NotContains(t, fields, "request_id")
	assert.NotContains(t, fields, "user_id")
}

func TestContextLogger_NilLogger(t *testing.T) {
	cl := WithLogger(context.Background(), nil)
	assert.NotPanics(t, func() { cl.Info("dropped") })
	assert.NotNil(t, cl.Zap())
}
