// Package telemetry wires the OpenTelemetry SDK for traces, metrics and logs into the
// invoicing API and exposes small helpers used by the application services.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// signal is the part of an SDK provider the wrappers below drive.
type signal interface {
	Shutdown(ctx context.Context) error
	ForceFlush(ctx context.Context) error
}

// lifecycle is embedded by every provider wrapper. A nil sdk means the signal
// is disabled and every call is a no-op.
type lifecycle struct {
	name   string
	sdk    signal
	logger *zap.Logger
}

// IsEnabled reports whether an SDK provider was installed.
func (l *lifecycle) IsEnabled() bool {
	return l.sdk != nil
}

// ForceFlush exports everything still buffered.
func (l *lifecycle) ForceFlush(ctx context.Context) error {
	if l.sdk == nil {
		return nil
	}
	return l.sdk.ForceFlush(ctx)
}

// Shutdown flushes and stops the provider, bounded by shutdownTimeout.
func (l *lifecycle) Shutdown(ctx context.Context) error {
	if l.sdk == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := l.sdk.Shutdown(ctx); err != nil {
		l.logger.Error("OpenTelemetry provider shutdown failed", zap.String("signal", l.name), zap.Error(err))
		return fmt.Errorf("shutdown %s provider: %w", l.name, err)
	}
	l.logger.Info("OpenTelemetry provider stopped", zap.String("signal", l.name))
	return nil
}

func (l *lifecycle) started(endpoint string, fields ...zap.Field) {
	l.logger.Info("OpenTelemetry provider started",
		append([]zap.Field{zap.String("signal", l.name), zap.String("collector_endpoint", endpoint)}, fields...)...)
}

// newResource identifies this service to the collector.
func newResource(serviceName, serviceVersion string) (*resource.Resource, error) {
	if serviceVersion == "" {
		serviceVersion = "1.0.0"
	}
	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(serviceVersion),
	))
	if err != nil {
		return nil, fmt.Errorf("build otel resource: %w", err)
	}
	return res, nil
}
