package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	accountapp "github.com/facturasnap/backend/internal/application/account"
	extractionapp "github.com/facturasnap/backend/internal/application/extraction"
	invoicingapp "github.com/facturasnap/backend/internal/application/invoicing"
	"github.com/facturasnap/backend/internal/domain/extraction"
	"github.com/facturasnap/backend/internal/infrastructure/auth"
	"github.com/facturasnap/backend/internal/infrastructure/browser"
	"github.com/facturasnap/backend/internal/infrastructure/cache"
	"github.com/facturasnap/backend/internal/infrastructure/config"
	"github.com/facturasnap/backend/internal/infrastructure/imaging"
	"github.com/facturasnap/backend/internal/infrastructure/logger"
	"github.com/facturasnap/backend/internal/infrastructure/merchant"
	"github.com/facturasnap/backend/internal/infrastructure/ocr/tesseract"
	"github.com/facturasnap/backend/internal/infrastructure/persistence"
	"github.com/facturasnap/backend/internal/infrastructure/scheduler"
	"github.com/facturasnap/backend/internal/infrastructure/storage"
	"github.com/facturasnap/backend/internal/infrastructure/telemetry"
	"github.com/facturasnap/backend/internal/interfaces/http/handler"
	"github.com/facturasnap/backend/internal/interfaces/http/middleware"
	"github.com/facturasnap/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/facturasnap/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const slowQueryThreshold = 200 * time.Millisecond

//	@title			FacturaSnap API
//	@version		1.0
//	@description	Receipt OCR and merchant portal invoicing backend.

//	@contact.name	API Support

//	@host		localhost:8080
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

	baseLog, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	// Telemetry providers are inert when disabled.
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
		Level:             logger.ParseLevel(cfg.Log.Level),
	}, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	log := loggerProvider.Bridge(baseLog)
	defer func() { _ = log.Sync() }()

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Telemetry.ProfilingEnabled,
		ServerAddress:     cfg.Telemetry.ProfilingServerAddress,
		ApplicationName:   cfg.Telemetry.ProfilingApplicationName,
		BasicAuthUser:     cfg.Telemetry.ProfilingBasicAuthUser,
		BasicAuthPassword: cfg.Telemetry.ProfilingBasicAuthPassword,
		ProfileTypes:      cfg.Telemetry.ProfilingTypes,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	if profiler.IsEnabled() && cfg.Telemetry.ProfilingSpanProfiles {
		tracerProvider.EnableSpanProfiles()
	}

	log.Info("Starting FacturaSnap backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	db, err := persistence.NewDatabase(&cfg.Database,
		logger.NewGormLogger(log, logger.GormLevel(cfg.Log.Level), slowQueryThreshold))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:               cfg.Telemetry.DBTraceEnabled,
		IncludeQueryVariables: cfg.Telemetry.DBLogFullSQL,
	}, log); err != nil {
		log.Warn("Failed to enable database tracing", zap.Error(err))
	}
	log.Info("Database connected successfully")

	checks := map[string]handler.Pinger{"database": db}

	// Token blacklist and generation lock
	var blacklist auth.TokenBlacklist
	var generationLock extractionapp.GenerationLock
	var memLock *cache.InMemoryLock
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.Redis.Host, strconv.Itoa(cfg.Redis.Port)),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
		generationLock = cache.NewRedisLock(redisClient, "")
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
		log.Info("Token blacklist backed by Redis", zap.String("host", cfg.Redis.Host))
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
		memLock = cache.NewInMemoryLock(cfg.Maintenance.LockSweepInterval)
		generationLock = memLock
		log.Info("Token blacklist kept in memory")
	}
	jwtService := auth.NewJWTService(cfg.JWT)

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	planRepo := persistence.NewGormPaymentPlanRepository(db.DB)
	sessionRepo := persistence.NewGormSessionRepository(db.DB)
	creditRepo := persistence.NewGormCreditRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	taxRecordRepo := persistence.NewGormTaxRecordRepository(db.DB)
	establishmentRepo := persistence.NewGormEstablishmentRepository(db.DB)

	// Merchant registry
	loader, err := merchant.NewLoader(log)
	if err != nil {
		log.Fatal("Failed to initialize merchant loader", zap.Error(err))
	}
	registry, err := loader.LoadRegistry(cfg.Merchants.DefinitionsDir)
	if err != nil {
		log.Fatal("Failed to load merchant definitions", zap.Error(err))
	}
	merchantIDs := make([]string, 0, registry.Len())
	for _, m := range registry.List() {
		merchantIDs = append(merchantIDs, m.ID())
	}
	log.Info("Merchants loaded", zap.Strings("merchants", merchantIDs))

	invoicingMetrics, err := telemetry.NewInvoicingMetrics(meterProvider.Meter("facturasnap/invoicing"))
	if err != nil {
		log.Warn("Failed to create invoicing metrics", zap.Error(err))
	}

	// OCR pipeline
	preprocessor := imaging.NewPreprocessor(imaging.Config{
		MinHeight:    cfg.OCR.MinHeight,
		TargetHeight: cfg.OCR.TargetHeight,
		MaxPixels:    cfg.OCR.MaxPixels,
		Contrast:     cfg.OCR.Contrast,
	}, log)
	recognizer := tesseract.NewRecognizer(tesseract.Config{
		MaxConcurrent:  cfg.OCR.MaxConcurrent,
		TessdataPrefix: cfg.OCR.TessdataPrefix,
	}, log)

	// Browser automation
	chrome := browser.NewChromedp(browser.Config{
		RemoteURL:    cfg.Browser.RemoteURL,
		Headless:     cfg.Browser.Headless,
		NoSandbox:    cfg.Browser.NoSandbox,
		ExecPath:     cfg.Browser.ExecPath,
		UserAgent:    cfg.Browser.UserAgent,
		Timezone:     cfg.Browser.Timezone,
		WindowWidth:  cfg.Browser.WindowWidth,
		WindowHeight: cfg.Browser.WindowHeight,
	}, log)
	openSession := extractionapp.BrowserFunc(func(ctx context.Context) (extractionapp.FormSession, error) {
		s, err := chrome.Open(ctx)
		if err != nil {
			return nil, err
		}
		return s, nil
	})
	engineRunner := extractionapp.NewEngine(openSession, cfg.Automation.StepTimeout, invoicingMetrics, log)

	// Document archive
	genDeps := extractionapp.GenerationDeps{
		Credits:    creditRepo,
		Invoices:   invoiceRepo,
		TaxRecords: taxRecordRepo,
		Lock:       generationLock,
		Metrics:    invoicingMetrics,
	}
	var linker invoicingapp.DocumentLinker
	archive, err := storage.NewS3DocumentArchive(ctx, &cfg.Storage, storage.WithLogger(log))
	switch {
	case errors.Is(err, storage.ErrStorageDisabled):
		log.Info("Document archiving disabled")
	case err != nil:
		log.Fatal("Failed to initialize document archive", zap.Error(err))
	default:
		if err := archive.EnsureBucket(ctx); err != nil {
			log.Warn("Document bucket check failed", zap.String("bucket", archive.Bucket()), zap.Error(err))
		}
		genDeps.Archiver = archive
		linker = archive
	}

	genCfg := extractionapp.GenerationConfig{
		RunTimeout:     cfg.Automation.RunTimeout,
		RetryAttempts:  cfg.Automation.RetryAttempts,
		RetryDelay:     cfg.Automation.RetryDelay,
		ConsumeCredits: cfg.Automation.ConsumeCredits,
		ArchiveTimeout: extractionapp.DefaultGenerationConfig().ArchiveTimeout,
	}
	for _, kind := range cfg.Automation.RetryableKinds {
		genCfg.RetryableKinds = append(genCfg.RetryableKinds, extraction.Kind(kind))
	}

	// Application services
	authService := accountapp.NewAuthService(userRepo, planRepo, sessionRepo, jwtService, blacklist, log)
	planService := accountapp.NewPlanService(planRepo, log)
	creditService := accountapp.NewCreditService(creditRepo, planRepo, log)
	sessionService := accountapp.NewSessionService(sessionRepo, blacklist, log)
	invoiceService := invoicingapp.NewInvoiceService(invoiceRepo, establishmentRepo, linker, log)
	taxRecordService := invoicingapp.NewTaxRecordService(taxRecordRepo, log)
	establishmentService := invoicingapp.NewEstablishmentService(establishmentRepo, func(id string) bool {
		_, err := registry.Resolve(id)
		return err == nil
	}, log)
	extractionService := extractionapp.NewExtractionService(registry, preprocessor, recognizer, invoicingMetrics, log)
	generationService := extractionapp.NewGenerationService(registry, engineRunner, genDeps, genCfg, log)

	handlers := router.Handlers{
		Auth:          handler.NewAuthHandler(authService),
		Plan:          handler.NewPlanHandler(planService),
		Credit:        handler.NewCreditHandler(creditService),
		Session:       handler.NewSessionHandler(sessionService),
		Invoice:       handler.NewInvoiceHandler(invoiceService),
		TaxRecord:     handler.NewTaxRecordHandler(taxRecordService),
		Establishment: handler.NewEstablishmentHandler(establishmentService),
		Extraction: handler.NewExtractionHandler(extractionService, generationService,
			handler.NewResultAssembler(cfg.Automation.OptionNotFoundAsClientError)),
		System: handler.NewSystemHandler(cfg.App.Name, version, checks),
	}

	// Set Gin mode based on environment
	production := cfg.App.Env == "production"
	if production {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware order:
	// 1. RequestID, logging, recovery
	// 2. Tracing and metrics
	// 3. Security headers, CORS, body limit
	// 4. Rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.TracingAttributeInjector())
	profilingCfg := middleware.DefaultProfilingConfig()
	profilingCfg.Enabled = profiler.IsEnabled()
	engine.Use(middleware.Profiling(profilingCfg))
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: meterProvider,
		ServiceName:   cfg.Telemetry.ServiceName,
		Enabled:       cfg.Telemetry.MetricsEnabled,
	}))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfigFrom(cfg.CORS)))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	guards := router.Guards{}
	var limiters []*middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		apiLimiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
		authLimiter := middleware.NewRateLimiter(cfg.RateLimit.AuthRequests, cfg.RateLimit.AuthWindow)
		limiters = append(limiters, apiLimiter, authLimiter)
		engine.Use(middleware.RateLimit(apiLimiter))
		guards.AuthRateLimit = middleware.AuthRateLimit(authLimiter)
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.RateLimit.Requests),
			zap.Duration("window", cfg.RateLimit.Window),
			zap.Int("auth_requests", cfg.RateLimit.AuthRequests),
			zap.Duration("auth_window", cfg.RateLimit.AuthWindow),
		)
	}

	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		SkipPaths:      router.PublicPaths("/api/v1"),
		Logger:         log,
	}
	guards.Auth = middleware.JWTAuthMiddlewareWithConfig(jwtConfig)
	guards.OptionalAuth = middleware.OptionalJWTAuthMiddleware(jwtConfig)

	// Swagger documentation endpoint
	swaggerAuth := middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		Logger:         log,
	})
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfigFrom(cfg.Swagger, production), swaggerAuth),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	router.Mount(engine, merchantIDs, handlers, guards)

	jobs := scheduler.NewScheduler(log.Named("scheduler"))
	if cfg.Maintenance.SessionSweepInterval > 0 {
		if err := jobs.Add(scheduler.SessionSweepJob(sessionRepo, cfg.Maintenance.SessionSweepInterval, log)); err != nil {
			log.Fatal("Failed to schedule session sweep", zap.Error(err))
		}
	}
	jobs.Start(ctx)

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

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := jobs.Stop(shutdownCtx); err != nil {
		log.Error("Scheduler forced to stop", zap.Error(err))
	}
	for _, l := range limiters {
		l.Stop()
	}
	if memLock != nil {
		_ = memLock.Close()
	}
	chrome.Shutdown()
	if err := recognizer.Close(); err != nil {
		log.Warn("Failed to remove tesseract config files", zap.Error(err))
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing redis client", zap.Error(err))
		}
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	log.Info("Server exited gracefully")

	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		baseLog.Error("Error shutting down logger provider", zap.Error(err))
	}
}
