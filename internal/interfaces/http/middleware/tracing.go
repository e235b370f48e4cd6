// Package middleware provides the gin middleware of the invoicing API.
package middleware

import (
	"net/http"

	"github.com/erp/invoicing/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	// ServiceName is the name of the service for trace identification.
	ServiceName string
	// Enabled controls whether tracing is active.
	Enabled bool
}

// TracingWithConfig returns OpenTelemetry tracing middleware built on otelgin.
// Spans are named after the matched route, never the raw path.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return otelgin.Middleware(cfg.ServiceName)
}

// SpanEnricher tags the active span with the request and user IDs and marks
// it as failed for 4xx/5xx responses. It must run inside TracingWithConfig.
func SpanEnricher() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if requestID := c.GetString(logger.GinRequestIDKey); requestID != "" && span.IsRecording() {
			span.SetAttributes(attribute.String("request_id", requestID))
		}

		c.Next()

		if !span.IsRecording() {
			return
		}
		if userID := c.GetString(logger.GinUserIDKey); userID != "" {
			span.SetAttributes(attribute.String("user_id", userID))
		}

		status := c.Writer.Status()
		if status >= http.StatusBadRequest {
			span.SetStatus(codes.Error, http.StatusText(status))
			span.SetAttributes(attribute.Int("http.status_code", status))
		}
	}
}
