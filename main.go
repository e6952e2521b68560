// Package main provides the main entry point for the referral hub API
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amirphl/referral-hub/app/handlers"
	"github.com/amirphl/referral-hub/app/router"
	"github.com/amirphl/referral-hub/app/scheduler"
	"github.com/amirphl/referral-hub/app/services"
	businessflow "github.com/amirphl/referral-hub/business_flow"
	"github.com/amirphl/referral-hub/config"
	"github.com/amirphl/referral-hub/models"
	"github.com/amirphl/referral-hub/repository"
	"github.com/amirphl/referral-hub/utils"
	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Application represents the main application structure
type Application struct {
	router    router.Router
	config    *config.ProductionConfig
	stopFuncs []func()
	closers   []io.Closer
}

func main() {
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	accessLog, closers := initializeLogging(cfg.Logging)
	log.Printf(`{"level":"info","event":"starting","version":"%s","environment":"%s","catalog_source":"%s"}`,
		cfg.Deployment.Version, cfg.Deployment.Environment, cfg.Catalog.Source)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := initializeApplication(ctx, cfg, accessLog)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	app.closers = append(app.closers, closers...)

	app.router.SetupRoutes()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := app.router.Start(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-sigChan
	log.Println("Shutting down gracefully...")

	for _, fn := range app.stopFuncs {
		fn()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.router.GetApp().ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	for _, c := range app.closers {
		_ = c.Close()
	}

	log.Println("Server stopped")
}

// initializeLogging points the standard logger at stdout, a rotated file, or both.
// It returns the access log writer for the router (nil means stdout) and the files to close on exit.
func initializeLogging(cfg config.LoggingConfig) (io.Writer, []io.Closer) {
	if cfg.Output == "stdout" {
		return nil, nil
	}

	appLog := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}
	closers := []io.Closer{appLog}
	if cfg.Output == "both" {
		log.SetOutput(io.MultiWriter(os.Stdout, appLog))
	} else {
		log.SetOutput(appLog)
	}

	if !cfg.EnableAccessLog || cfg.AccessLogPath == "" {
		return nil, closers
	}
	accessLog := &lumberjack.Logger{
		Filename:   cfg.AccessLogPath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}
	return accessLog, append(closers, accessLog)
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	if cfg.SlowQueryLog {
		gormCfg.Logger = logger.New(log.Default(), logger.Config{
			SlowThreshold:             cfg.SlowQueryTime,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		})
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeCache initializes the Redis client and verifies connectivity. A disabled cache yields a nil client.
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opt.DialTimeout = cfg.DialTimeout
	opt.ReadTimeout = cfg.ReadTimeout
	opt.WriteTimeout = cfg.WriteTimeout

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established (db=%d)", opt.DB)
	return rc, nil
}

// initializeCatalog selects the catalog reader and the referral request store for the configured source
func initializeCatalog(ctx context.Context, cfg *config.ProductionConfig) (repository.CatalogReader, businessflow.ReferralRequestLister, []io.Closer, error) {
	if cfg.Catalog.Source == config.CatalogSourceFile {
		reader := repository.NewFileCatalogReader(cfg.Catalog.SeedFile)
		ds, err := reader.LoadDataset(ctx)
		if err != nil {
			return nil, nil, nil, err
		}
		log.Printf("Serving catalog from %s", datasetName(cfg.Catalog.SeedFile))
		return reader, repository.NewDatasetReferralRequests(ds), nil, nil
	}

	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, nil, err
	}

	if cfg.Catalog.SeedOnBoot {
		ds, err := repository.NewFileCatalogReader(cfg.Catalog.SeedFile).LoadDataset(ctx)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := repository.SeedDataset(ctx, db, ds); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to seed catalog: %w", err)
		}
		log.Printf("Seeded catalog from %s", datasetName(cfg.Catalog.SeedFile))
	}

	reader := repository.NewGormCatalogReader(
		repository.NewUserRepository(db),
		repository.NewReferralRepository(db),
		repository.NewTagRepository(db),
	)
	return reader, repository.NewReferralRequestRepository(db), []io.Closer{sqlDB}, nil
}

func datasetName(path string) string {
	if path == "" {
		return "embedded dataset"
	}
	return path
}

// initializeApplication initializes the main application components
func initializeApplication(ctx context.Context, cfg *config.ProductionConfig, accessLog io.Writer) (*Application, error) {
	app := &Application{config: cfg}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}
	if rc != nil {
		app.closers = append(app.closers, rc)
	}

	baseReader, lister, closers, err := initializeCatalog(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, closers...)

	reader := repository.NewCachedCatalogReader(baseReader, rc, cfg.Cache.RedisPrefix+utils.CatalogSnapshotCacheKey, cfg.Catalog.CacheTTL)

	var publisher services.EventPublisher
	switch {
	case !cfg.Intake.PublishEvents:
	case rc != nil:
		publisher = services.NewRedisEventPublisher(rc, cfg.Intake.EventsChannel)
	default:
		publisher = services.NewLogEventPublisher()
	}

	catalogFlow := businessflow.NewCatalogFlow(reader, cfg.Catalog.Source)
	var intakeOpts []businessflow.ReferralRequestFlowOption
	if cfg.Intake.CheckFormats {
		intakeOpts = append(intakeOpts, businessflow.WithFormatChecks())
	}
	referralRequestFlow := businessflow.NewReferralRequestFlow(lister, publisher, intakeOpts...)

	// Warm the snapshot so the first request does not pay for the load
	if _, err := catalogFlow.Refresh(ctx); err != nil {
		log.Printf(`{"level":"warn","event":"catalog_warmup_failed","error":"%v"}`, err)
	}

	routerCfg := router.DefaultConfig()
	routerCfg.Version = cfg.Deployment.Version
	routerCfg.AllowOrigins = cfg.Security.AllowedOrigins
	routerCfg.BodyLimit = cfg.Server.BodyLimit
	routerCfg.ReadTimeout = cfg.Server.ReadTimeout
	routerCfg.WriteTimeout = cfg.Server.WriteTimeout
	routerCfg.IdleTimeout = cfg.Server.IdleTimeout
	routerCfg.RateLimit = cfg.Security.GlobalRateLimit
	routerCfg.IntakeRateLimit = cfg.Intake.RateLimit
	routerCfg.CacheExpiration = cfg.Cache.ResponseTTL
	routerCfg.EnableDocs = cfg.Server.EnableDocs || cfg.Deployment.IsDevelopment()
	routerCfg.EnableMetrics = cfg.Metrics.Enabled
	routerCfg.MetricsPath = cfg.Metrics.Path
	routerCfg.AccessLog = accessLog

	app.router = router.NewFiberRouter(
		routerCfg,
		handlers.NewCatalogHandler(catalogFlow),
		handlers.NewReferralRequestHandler(referralRequestFlow),
	)

	if cfg.Catalog.RefreshEnabled {
		refresher := scheduler.NewCatalogRefreshScheduler(catalogFlow, rc, cfg.Cache.RedisPrefix, cfg.Catalog.RefreshSpec, log.Writer())
		stop, err := refresher.Start(ctx)
		if err != nil {
			return nil, err
		}
		app.stopFuncs = append(app.stopFuncs, stop)
	}

	return app, nil
}
