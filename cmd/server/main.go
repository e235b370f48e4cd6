package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	identityapp "github.com/erp/invoicing/internal/application/identity"
	invoicingapp "github.com/erp/invoicing/internal/application/invoicing"
	"github.com/erp/invoicing/internal/domain/access"
	"github.com/erp/invoicing/internal/infrastructure/auth"
	"github.com/erp/invoicing/internal/infrastructure/cache"
	"github.com/erp/invoicing/internal/infrastructure/config"
	"github.com/erp/invoicing/internal/infrastructure/logger"
	"github.com/erp/invoicing/internal/infrastructure/migration"
	"github.com/erp/invoicing/internal/infrastructure/persistence"
	"github.com/erp/invoicing/internal/infrastructure/telemetry"
	"github.com/erp/invoicing/internal/interfaces/http/handler"
	"github.com/erp/invoicing/internal/interfaces/http/middleware"
	"github.com/erp/invoicing/internal/interfaces/http/router"
	"github.com/erp/invoicing/migrations"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

//	@title			Invoice Management API
//	@version		1.0
//	@description	Users, customers, invoices with line items, and payments.

//	@host		localhost:8000
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx := context.Background()

	// Initialize logger
	baseCore, err := logger.NewCore(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := zap.New(baseCore, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))

	serviceName := cfg.Telemetry.ServiceName
	if serviceName == "" {
		serviceName = cfg.App.Name
	}

	// OTEL logs bridge: tee every zap entry to the collector as well
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       serviceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	if loggerProvider.IsEnabled() {
		otelCore := telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{
			ServiceName:    serviceName,
			LoggerProvider: loggerProvider,
			Level:          logger.ParseLevel(cfg.Log.Level),
		})
		log = telemetry.NewBridgedLogger(baseCore, otelCore, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Invoice Management API",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", cfg.App.Version),
		zap.String("port", cfg.App.Port),
	)

	// Initialize tracing and metrics
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       serviceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsExportInterval,
		ServiceName:       serviceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	// Initialize database
	gormLogger := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Database.LogLevel),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
	)
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLogger))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database connection", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", db.Driver))

	dbSystem := "postgresql"
	if db.Driver == config.DriverSQLite {
		dbSystem = "sqlite"
	}
	if err := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        dbSystem,
	}, log).RegisterOtelGorm(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	dbMetrics, err := telemetry.RegisterDBMetrics(ctx, db.DB, meterProvider, telemetry.DBMetricsConfig{
		Enabled:            cfg.Telemetry.MetricsEnabled,
		SlowQueryThreshold: cfg.Telemetry.DBSlowQueryThresh,
	}, log)
	if err != nil {
		log.Fatal("Failed to register database metrics", zap.Error(err))
	}

	if err := migrateSchema(ctx, db, cfg.Database, log); err != nil {
		log.Fatal("Failed to migrate database schema", zap.Error(err))
	}

	// Initialize token blacklist and idempotency store
	var (
		redisClient *redis.Client
		blacklist   auth.TokenBlacklist
	)
	if cfg.Redis.Enabled {
		redisClient, err = auth.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer func() {
			_ = redisClient.Close()
		}()
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
		log.Info("Token blacklist backed by redis", zap.String("addr", cfg.Redis.Addr()))
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
		log.Warn("Token blacklist kept in memory; revocations are lost on restart")
	}
	idempotencyStore := cache.NewIdempotencyStore(redisClient, log)
	defer func() {
		_ = idempotencyStore.Close()
	}()

	var businessMetrics *telemetry.BusinessMetrics
	if meterProvider.IsEnabled() {
		businessMetrics, err = telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:  meterProvider.Meter("invoicing"),
			Logger: log,
		})
		if err != nil {
			log.Fatal("Failed to initialize business metrics", zap.Error(err))
		}
	}

	// Initialize repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Initialize services
	policy := access.DefaultPolicy()
	jwtService := auth.NewJWTService(cfg.JWT)

	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, businessMetrics,
		identityapp.AuthServiceConfig{AllowAdminSignup: cfg.Auth.AllowAdminSignup}, log)
	userService := identityapp.NewUserService(userRepo, txScope.Identity(), policy, blacklist,
		cfg.JWT.RefreshTokenExpiration, log)
	customerService := invoicingapp.NewCustomerService(customerRepo, txScope, policy, log)
	invoiceService := invoicingapp.NewInvoiceService(invoiceRepo, customerRepo, txScope, policy, businessMetrics, log)
	paymentService := invoicingapp.NewPaymentService(paymentRepo, invoiceRepo, txScope, policy, businessMetrics, log)

	if cfg.Auth.BootstrapAdminEmail != "" {
		if err := authService.BootstrapAdmin(ctx, cfg.Auth.BootstrapAdminName,
			cfg.Auth.BootstrapAdminEmail, cfg.Auth.BootstrapAdminPassword); err != nil {
			log.Fatal("Failed to bootstrap admin account", zap.Error(err))
		}
	}

	// Initialize HTTP layer
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	stopCleanup := make(chan struct{})
	var rateLimiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		rateLimiter.StartCleanup(5*time.Minute, stopCleanup)
	}

	prom := middleware.NewPrometheusMetrics("invoicing")
	engine := router.NewEngine(router.EngineConfig{
		HTTP:          cfg.HTTP,
		ServiceName:   serviceName,
		Tracing:       tracerProvider.IsEnabled(),
		MeterProvider: meterProvider,
		Prometheus:    prom,
		RateLimiter:   rateLimiter,
		Logger:        log,
	})

	authn := middleware.JWTAuthMiddleware(authService, log)
	systemHandler := handler.NewSystemHandler("Invoice Management API", cfg.App.Version, db)
	var docsGuard gin.HandlerFunc
	if cfg.Swagger.Enabled {
		systemHandler.WithDocs("/docs", "/redoc")
		docsGuard = middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		}, authn)
		log.Info("API documentation enabled",
			zap.Bool("require_auth", cfg.Swagger.RequireAuth),
			zap.Strings("allowed_ips", cfg.Swagger.AllowedIPs),
		)
	}

	router.RegisterAPI(engine, router.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		User:     handler.NewUserHandler(userService),
		Customer: handler.NewCustomerHandler(customerService),
		Invoice:  handler.NewInvoiceHandler(invoiceService),
		Payment:  handler.NewPaymentHandler(paymentService),
		System:   systemHandler,
	}, router.Guards{
		Authn: authn,
		Idempotency: middleware.Idempotency(middleware.IdempotencyConfig{
			Store:  idempotencyStore,
			TTL:    cfg.HTTP.IdempotencyTTL,
			Logger: log,
		}),
		Metrics: prom.Handler(),
		Docs:    docsGuard,
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	close(stopCleanup)
	if dbMetrics != nil {
		dbMetrics.Stop()
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to shutdown meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to shutdown tracer provider", zap.Error(err))
	}
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to shutdown logger provider", zap.Error(err))
	}

	log.Info("Server exited")
}

// migrateSchema creates sqlite schemas from the models and runs the embedded
// SQL migrations against postgres. auto_migrate forces the model-based path.
func migrateSchema(ctx context.Context, db *persistence.Database, cfg config.DatabaseConfig, log *zap.Logger) error {
	if db.Driver == config.DriverSQLite || cfg.AutoMigrate {
		log.Info("Creating schema from models")
		return db.AutoMigrate(ctx)
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, migrations.FS, log)
	if err != nil {
		return err
	}
	// Closing the migrator would close the shared connection pool
	return m.Up()
}
