package telemetry_test

import (
	"context"
	"testing"

	"github.com/erp/invoicing/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func newRecordingMetrics(t *testing.T) (*telemetry.BusinessMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  provider.Meter("test"),
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)
	return bm, reader
}

func collectSum(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is not an int64 sum", name)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestNewBusinessMetrics(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
	})

	require.NoError(t, err)
	require.NotNil(t, bm)
}

func TestNewBusinessMetrics_NilMeter(t *testing.T) {
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{})

	require.Error(t, err)
	assert.Nil(t, bm)
	assert.Equal(t, "NewBusinessMetrics: meter cannot be nil", err.Error())
}

func TestBusinessMetrics_NilReceiver(t *testing.T) {
	var bm *telemetry.BusinessMetrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		bm.RecordUserRegistered(ctx)
		bm.RecordLogin(ctx, true)
		bm.RecordInvoiceCreated(ctx, "draft", decimal.NewFromInt(10))
		bm.RecordPaymentRecorded(ctx, "cash", "completed", decimal.NewFromInt(10))
		bm.RecordInvoicePaid(ctx)
	})
}

func TestBusinessMetrics_Counters(t *testing.T) {
	bm, reader := newRecordingMetrics(t)
	ctx := context.Background()

	bm.RecordUserRegistered(ctx)
	bm.RecordLogin(ctx, true)
	bm.RecordLogin(ctx, false)
	bm.RecordLogin(ctx, false)
	bm.RecordInvoiceCreated(ctx, "draft", decimal.RequireFromString("250.00"))
	bm.RecordPaymentRecorded(ctx, "bank_transfer", "completed", decimal.RequireFromString("250.00"))
	bm.RecordInvoicePaid(ctx)

	assert.Equal(t, int64(1), collectSum(t, reader, "invoicing_user_registered_total"))
	assert.Equal(t, int64(3), collectSum(t, reader, "invoicing_login_total"))
	assert.Equal(t, int64(1), collectSum(t, reader, "invoicing_invoice_created_total"))
	assert.Equal(t, int64(1), collectSum(t, reader, "invoicing_payment_total"))
	assert.Equal(t, int64(1), collectSum(t, reader, "invoicing_invoice_paid_total"))
}

func TestMetricsError(t *testing.T) {
	err := &telemetry.MetricsError{Op: "TestOp", Err: "test error"}
	assert.Equal(t, "TestOp: test error", err.Error())
}
