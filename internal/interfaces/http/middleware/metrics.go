package middleware

import (
	"errors"
	"fmt"
	"time"

	"github.com/erp/invoicing/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

var responseSizeBuckets = []float64{100, 500, 1000, 5000, 10000, 50000, 100000, 500000, 1000000}

var attrStatusClass = attribute.Key("http.status_class")

type httpMetrics struct {
	requests  *telemetry.Counter
	latency   *telemetry.Histogram
	bodyBytes *telemetry.Histogram
	inFlight  metric.Int64UpDownCounter
}

func newHTTPMetrics(meter metric.Meter) (*httpMetrics, error) {
	var m httpMetrics
	var errs [4]error

	m.requests, errs[0] = telemetry.NewCounter(meter, "http_server_request_total",
		"HTTP requests by method, route and status", "{request}")
	m.latency, errs[1] = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_request_duration_seconds",
		Description: "HTTP request latency by method, route and status class",
		Unit:        "s",
		Boundaries:  telemetry.HTTPDurationBuckets,
	})
	m.bodyBytes, errs[2] = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_response_size_bytes",
		Description: "HTTP response body size",
		Unit:        "By",
		Boundaries:  responseSizeBuckets,
	})
	m.inFlight, errs[3] = meter.Int64UpDownCounter("http_server_active_requests",
		metric.WithDescription("HTTP requests currently being served"),
		metric.WithUnit("{request}"))

	if err := errors.Join(errs[:]...); err != nil {
		return nil, fmt.Errorf("register http metrics: %w", err)
	}
	return &m, nil
}

// HTTPMetrics exports per-request OpenTelemetry metrics. It passes requests
// straight through when mp is nil or disabled.
func HTTPMetrics(mp *telemetry.MeterProvider, log *zap.Logger) gin.HandlerFunc {
	if mp == nil || !mp.IsEnabled() {
		return passThrough
	}
	return HTTPMetricsWithMeter(mp.Meter("http.server"), log)
}

// HTTPMetricsWithMeter is HTTPMetrics on an explicit meter.
func HTTPMetricsWithMeter(meter metric.Meter, log *zap.Logger) gin.HandlerFunc {
	m, err := newHTTPMetrics(meter)
	if err != nil {
		if log != nil {
			log.Warn("HTTP metrics disabled", zap.Error(err))
		}
		return passThrough
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()
		m.inFlight.Add(ctx, 1)
		defer m.inFlight.Add(ctx, -1)

		c.Next()

		status := c.Writer.Status()
		attrs := []attribute.KeyValue{
			telemetry.AttrHTTPMethod.String(c.Request.Method),
			telemetry.AttrHTTPRoute.String(routePattern(c)),
		}
		m.requests.Inc(ctx, append(attrs, telemetry.AttrHTTPStatusCode.Int(status))...)
		m.latency.RecordDuration(ctx, time.Since(start), append(attrs, attrStatusClass.String(StatusGroup(status)))...)
		if size := c.Writer.Size(); size > 0 {
			m.bodyBytes.Record(ctx, float64(size), attrs...)
		}
	}
}

func passThrough(c *gin.Context) { c.Next() }

// routePattern is the matched gin route, e.g. "/api/v1/invoices/:id", so raw
// ids never become label values.
func routePattern(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unknown"
}

// StatusGroup returns the class of a status code: "2xx", "3xx", "4xx", "5xx" or "other".
func StatusGroup(statusCode int) string {
	if statusCode < 200 {
		return "other"
	}
	if statusCode >= 500 {
		return "5xx"
	}
	return fmt.Sprintf("%dxx", statusCode/100)
}
