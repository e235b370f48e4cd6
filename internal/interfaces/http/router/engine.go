package router

import (
	"time"

	"github.com/erp/invoicing/internal/infrastructure/config"
	"github.com/erp/invoicing/internal/infrastructure/logger"
	"github.com/erp/invoicing/internal/infrastructure/telemetry"
	"github.com/erp/invoicing/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EngineConfig holds everything the global middleware chain depends on
type EngineConfig struct {
	HTTP          config.HTTPConfig
	ServiceName   string
	Tracing       bool
	MeterProvider *telemetry.MeterProvider      // nil disables push metrics
	Prometheus    *middleware.PrometheusMetrics // nil disables /metrics
	RateLimiter   *middleware.RateLimiter       // nil disables rate limiting
	Logger        *zap.Logger
}

// NewEngine builds a gin engine with the middleware stack applied in order:
//  1. RequestID - generate or propagate the request ID
//  2. Recovery - catch panics
//  3. Tracing - start the server span and tag it
//  4. Logger - log requests
//  5. Metrics - otel push metrics and the prometheus collectors
//  6. Security - add security headers
//  7. CORS - handle cross-origin requests
//  8. BodyLimit - limit request body size
//  9. RateLimit - per-client rate limiting, when configured
func NewEngine(cfg EngineConfig) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.ServiceName,
		Enabled:     cfg.Tracing,
	}))
	engine.Use(middleware.SpanEnricher())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.HTTPMetrics(cfg.MeterProvider, log))
	if cfg.Prometheus != nil {
		engine.Use(cfg.Prometheus.Middleware())
	}
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(corsConfig(cfg.HTTP)))
	if cfg.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	}
	if cfg.RateLimiter != nil {
		engine.Use(middleware.RateLimit(cfg.RateLimiter, log))
	}

	return engine
}

func corsConfig(httpCfg config.HTTPConfig) middleware.CORSConfig {
	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = httpCfg.CORSAllowOrigins
	if len(httpCfg.CORSAllowMethods) > 0 {
		cors.AllowMethods = httpCfg.CORSAllowMethods
	}
	if len(httpCfg.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = httpCfg.CORSAllowHeaders
	}
	cors.MaxAge = 12 * time.Hour
	return cors
}
