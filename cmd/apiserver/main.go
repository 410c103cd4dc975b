// Command apiserver runs the synastry HTTP API: the computation endpoints,
// stored-chart CRUD, health probes, and the Prometheus scrape endpoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	chartapp "github.com/cosmichub/synastry/internal/application/chart"
	synapp "github.com/cosmichub/synastry/internal/application/synastry"
	"github.com/cosmichub/synastry/internal/config"
	"github.com/cosmichub/synastry/internal/domain/aspect"
	"github.com/cosmichub/synastry/internal/infrastructure/database/postgres"
	"github.com/cosmichub/synastry/internal/infrastructure/database/postgres/repositories"
	"github.com/cosmichub/synastry/internal/infrastructure/database/redis"
	"github.com/cosmichub/synastry/internal/infrastructure/monitoring/logging"
	"github.com/cosmichub/synastry/internal/infrastructure/monitoring/metrics"
	httpserver "github.com/cosmichub/synastry/internal/interfaces/http"
	"github.com/cosmichub/synastry/internal/interfaces/http/handlers"
	"github.com/cosmichub/synastry/internal/interfaces/http/middleware"
)

const defaultConfigPath = "configs/config.yaml"

// version is injected at build time via ldflags.
var version = "dev"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(logging.Config{
		Level:  cfg.Log.Level,
		Format: logFormat(cfg.Log.Format),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)

	logger.Info("starting synastry api server",
		logging.String("version", version),
		logging.Int("port", cfg.Server.Port),
		logging.String("builder", cfg.Engine.Builder))

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited with error", logging.Err(err))
	}
}

func run(cfg *config.Config, logger logging.Logger) error {
	// Metrics.
	collector, err := metrics.NewCollector(metrics.CollectorConfig{
		Namespace:            "cosmichub",
		Subsystem:            "synastry",
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, logger)
	if err != nil {
		return fmt.Errorf("metrics collector: %w", err)
	}
	appMetrics := metrics.NewAppMetrics(collector)

	// PostgreSQL: required for stored charts.
	if cfg.Database.MigrationPath != "" {
		if err := postgres.RunMigrations(cfg.Database.DSN(), cfg.Database.MigrationPath); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
	}
	conn, err := postgres.NewConnection(cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			logger.Warn("postgres close failed", logging.Err(err))
		}
	}()

	// Redis: optional.  Without it readings are recomputed per request and
	// rate limiting falls back to per-instance token buckets.
	var cache redis.Cache
	var limiter middleware.RateLimiter
	redisClient, err := redis.NewClient(cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis unavailable, running without result cache", logging.Err(err))
		limiter = middleware.NewTokenBucketLimiter(
			float64(cfg.Server.RateLimitRPS), cfg.Server.RateLimitRPS*2, 5*time.Minute)
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close failed", logging.Err(err))
			}
		}()
		cache = redis.NewCache(redisClient, logger,
			redis.WithPrefix(cfg.Redis.KeyPrefix+":"),
			redis.WithDefaultTTL(cfg.Redis.DefaultTTL))
		limiter = middleware.NewRedisLimiter(cache, cfg.Server.RateLimitRPS, time.Second, logger)
	}

	// Application services.
	builderKind, err := aspect.ParseBuilderKind(cfg.Engine.Builder)
	if err != nil {
		return fmt.Errorf("engine config: %w", err)
	}
	repo := repositories.NewChartRepository(conn.DB(), logger)
	chartSvc := chartapp.NewService(repo, logger)

	synOpts := []synapp.Option{
		synapp.WithMetrics(appMetrics),
		synapp.WithDefaultBuilder(builderKind),
	}
	if cache != nil {
		synOpts = append(synOpts, synapp.WithCache(cache, cfg.Engine.ResultTTL))
	}
	synSvc := synapp.NewService(aspect.DefaultRuleSet(), logger, synOpts...)

	// Health checks.
	checkers := []handlers.HealthChecker{
		handlers.CheckFunc{CheckName: "postgres", Fn: conn.HealthCheck},
	}
	if cache != nil {
		checkers = append(checkers, handlers.CheckFunc{CheckName: "redis", Fn: cache.Ping})
	}

	// HTTP wiring.
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.Server.CORSOrigins

	rateCfg := middleware.DefaultRateLimitConfig()
	rateCfg.RequestsPerSecond = float64(cfg.Server.RateLimitRPS)
	rateCfg.BurstSize = cfg.Server.RateLimitRPS * 2

	routerCfg := httpserver.RouterConfig{
		SynastryHandler:     handlers.NewSynastryHandler(synSvc, chartSvc, logger),
		ChartHandler:        handlers.NewChartHandler(chartSvc, logger),
		HealthHandler:       handlers.NewHealthHandler(version, checkers...),
		CORSMiddleware:      middleware.NewCORSMiddleware(corsCfg),
		LoggingMiddleware:   middleware.NewLoggingMiddleware(logger.Named("http"), middleware.DefaultLoggingConfig()),
		RateLimitMiddleware: middleware.NewRateLimitMiddleware(limiter, rateCfg),
	}
	if cfg.Metrics.Enabled {
		routerCfg.MetricsHandler = collector.Handler()
	}

	srv := httpserver.NewServer(cfg.Server, httpserver.NewRouter(routerCfg), logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutdown signal received", logging.String("signal", sig.String()))
	}

	if err := srv.Stop(context.Background()); err != nil {
		return err
	}
	return <-errCh
}

// loadConfig loads from the config file when present, otherwise from the
// environment alone.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "config file %s not found, using environment and defaults\n", path)
		return config.LoadFromEnv()
	}
	return config.Load(path)
}

// logFormat maps the config file's format names onto zap encoder names.
func logFormat(format string) string {
	if format == "text" {
		return "console"
	}
	return format
}
