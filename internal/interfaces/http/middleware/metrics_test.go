package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collectMetric(t *testing.T, reader *sdkmetric.ManualReader, name string) *metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestHTTPMetricsWithMeter(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	router := gin.New()
	router.Use(HTTPMetricsWithMeter(mp.Meter("test"), nil))
	router.GET("/api/v1/invoices/:id", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	for i := 0; i < 3; i++ {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/invoices/"+string(rune('a'+i)), nil))
	}

	m := collectMetric(t, reader, "http_server_request_total")
	require.NotNil(t, m)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(3), sum.DataPoints[0].Value)

	route, found := sum.DataPoints[0].Attributes.Value("http.route")
	require.True(t, found)
	assert.Equal(t, "/api/v1/invoices/:id", route.AsString())

	assert.NotNil(t, collectMetric(t, reader, "http_server_request_duration_seconds"))
}

func TestHTTPMetrics_DisabledProvider(t *testing.T) {
	router := gin.New()
	router.Use(HTTPMetrics(nil, nil))
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStatusGroup(t *testing.T) {
	assert.Equal(t, "2xx", StatusGroup(201))
	assert.Equal(t, "3xx", StatusGroup(304))
	assert.Equal(t, "4xx", StatusGroup(422))
	assert.Equal(t, "5xx", StatusGroup(503))
	assert.Equal(t, "other", StatusGroup(101))
}

func TestPrometheusMetrics(t *testing.T) {
	pm := NewPrometheusMetrics("invoicing")
	router := gin.New()
	router.Use(pm.Middleware())
	router.GET("/metrics", pm.Handler())
	router.GET("/api/v1/payments/:id", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/payments/123", nil))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	text := string(body)
	assert.True(t, strings.Contains(text,
		`invoicing_http_requests_total{method="GET",route="/api/v1/payments/:id",status="404"} 1`), text)
	assert.Contains(t, text, "invoicing_http_request_duration_seconds_bucket")
	assert.Contains(t, text, "go_goroutines")
}
