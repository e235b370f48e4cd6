package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/invoicing/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap/zaptest"
)

func setupRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func attrMap(kvs []attribute.KeyValue) map[string]string {
	out := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		out[string(kv.Key)] = kv.Value.Emit()
	}
	return out
}

func TestStartServiceSpan(t *testing.T) {
	recorder := setupRecorder(t)
	invoiceID := uuid.New()

	ctx, span := telemetry.StartServiceSpan(context.Background(), "payment", "record",
		attribute.String(telemetry.SpanAttrInvoiceID, invoiceID.String()))
	telemetry.SetAttributes(span,
		telemetry.SpanAttrAmount, "100.00",
		telemetry.SpanAttrItemsCount, 2,
		42, "ignored",
	)
	telemetry.AddEvent(span, "invoice_marked_paid", telemetry.SpanAttrPaymentID, invoiceID)

	assert.True(t, trace.SpanContextFromContext(ctx).IsValid())
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "payment.record", spans[0].Name())
	assert.Equal(t, trace.SpanKindInternal, spans[0].SpanKind())

	attrs := attrMap(spans[0].Attributes())
	assert.Equal(t, invoiceID.String(), attrs[telemetry.SpanAttrInvoiceID])
	assert.Equal(t, "100.00", attrs[telemetry.SpanAttrAmount])
	assert.Equal(t, "2", attrs[telemetry.SpanAttrItemsCount])
	assert.Len(t, attrs, 3)

	require.Len(t, spans[0].Events(), 1)
	event := spans[0].Events()[0]
	assert.Equal(t, "invoice_marked_paid", event.Name)
	assert.Equal(t, invoiceID.String(), attrMap(event.Attributes)[telemetry.SpanAttrPaymentID])
}

func TestRecordError(t *testing.T) {
	recorder := setupRecorder(t)

	_, span := telemetry.StartServiceSpan(context.Background(), "invoice", "create")
	telemetry.RecordError(span, nil)
	telemetry.RecordError(span, errors.New("customer not found"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "customer not found", spans[0].Status().Description)
	assert.Len(t, spans[0].Events(), 1)
}

func TestNilSpanHelpers(t *testing.T) {
	assert.NotPanics(t, func() {
		telemetry.SetAttributes(nil, "k", "v")
		telemetry.AddEvent(nil, "e")
		telemetry.RecordError(nil, errors.New("x"))
	})
}

func TestNewTracerProvider_Disabled(t *testing.T) {
	tp, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:     false,
		ServiceName: "invoicing-api",
	}, zaptest.NewLogger(t))

	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("test"))
	assert.NoError(t, tp.ForceFlush(context.Background()))
	assert.NoError(t, tp.Shutdown(context.Background()))
}
