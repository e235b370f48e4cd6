package telemetry

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics provides business metrics for the invoicing API.
// It tracks signups, logins, invoice creation and payment activity.
// A nil *BusinessMetrics is valid and records nothing.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	userRegisteredTotal *Counter
	loginTotal          *Counter
	invoiceCreatedTotal *Counter
	invoiceAmount       *Histogram
	paymentTotal        *Counter
	paymentAmount       *Histogram
	invoicePaidTotal    *Counter
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// AmountBuckets are bucket boundaries for monetary amounts.
var AmountBuckets = []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 50000}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:  cfg.Meter,
		logger: logger,
	}

	var err error

	bm.userRegisteredTotal, err = NewCounter(cfg.Meter,
		"invoicing_user_registered_total",
		"Total number of registered users",
		"{users}",
	)
	if err != nil {
		return nil, err
	}

	bm.loginTotal, err = NewCounter(cfg.Meter,
		"invoicing_login_total",
		"Total number of login attempts by outcome",
		"{logins}",
	)
	if err != nil {
		return nil, err
	}

	bm.invoiceCreatedTotal, err = NewCounter(cfg.Meter,
		"invoicing_invoice_created_total",
		"Total number of invoices created",
		"{invoices}",
	)
	if err != nil {
		return nil, err
	}

	bm.invoiceAmount, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "invoicing_invoice_amount",
		Description: "Distribution of invoice totals at creation",
		Unit:        "{currency}",
		Boundaries:  AmountBuckets,
	})
	if err != nil {
		return nil, err
	}

	bm.paymentTotal, err = NewCounter(cfg.Meter,
		"invoicing_payment_total",
		"Total number of recorded payments",
		"{payments}",
	)
	if err != nil {
		return nil, err
	}

	bm.paymentAmount, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "invoicing_payment_amount",
		Description: "Distribution of recorded payment amounts",
		Unit:        "{currency}",
		Boundaries:  AmountBuckets,
	})
	if err != nil {
		return nil, err
	}

	bm.invoicePaidTotal, err = NewCounter(cfg.Meter,
		"invoicing_invoice_paid_total",
		"Total number of invoices that reached the paid threshold",
		"{invoices}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// RecordUserRegistered records a successful signup
func (bm *BusinessMetrics) RecordUserRegistered(ctx context.Context) {
	if bm == nil {
		return
	}
	bm.userRegisteredTotal.Inc(ctx)
}

// RecordLogin records a login attempt
func (bm *BusinessMetrics) RecordLogin(ctx context.Context, success bool) {
	if bm == nil {
		return
	}
	bm.loginTotal.Inc(ctx, AttrOutcome.String(outcome(success)))
}

// RecordInvoiceCreated records an invoice creation and its initial total
func (bm *BusinessMetrics) RecordInvoiceCreated(ctx context.Context, status string, total decimal.Decimal) {
	if bm == nil {
		return
	}
	bm.invoiceCreatedTotal.Inc(ctx, AttrInvoiceStatus.String(status))
	bm.invoiceAmount.Record(ctx, total.InexactFloat64(), AttrInvoiceStatus.String(status))
}

// RecordPaymentRecorded records a new payment
func (bm *BusinessMetrics) RecordPaymentRecorded(ctx context.Context, method, status string, amount decimal.Decimal) {
	if bm == nil {
		return
	}
	attrs := []attribute.KeyValue{
		AttrPaymentMethod.String(method),
		AttrPaymentStatus.String(status),
	}
	bm.paymentTotal.Inc(ctx, attrs...)
	bm.paymentAmount.Record(ctx, amount.InexactFloat64(), attrs...)
}

// RecordInvoicePaid records an invoice transitioning to paid
func (bm *BusinessMetrics) RecordInvoicePaid(ctx context.Context) {
	if bm == nil {
		return
	}
	bm.invoicePaidTotal.Inc(ctx)
}

func outcome(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
