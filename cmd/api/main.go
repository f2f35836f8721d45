package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/avenrae/avenrae-api/internal/api/router"
	"github.com/avenrae/avenrae-api/internal/app/bootstrap"
	"github.com/avenrae/avenrae-api/internal/bookings"
	"github.com/avenrae/avenrae-api/internal/calendar"
	appconfig "github.com/avenrae/avenrae-api/internal/config"
	"github.com/avenrae/avenrae-api/internal/database"
	"github.com/avenrae/avenrae-api/internal/healers"
	"github.com/avenrae/avenrae-api/internal/observability/metrics"
	"github.com/avenrae/avenrae-api/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.NewWithFormat(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	logger.Info("starting avenrae API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.Open(ctx, poolConfig(cfg), logger)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	registry, metricsHandler := setupMetrics()
	bookingMetrics := metrics.NewBookingMetrics(registry)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	bookingService := bookings.NewService(bookings.NewRepository(pool), bookingMetrics, logger)
	directory := bootstrap.BuildDirectory(pool, redisClient, cfg, logger)

	r := router.New(&router.Config{
		Logger:             logger,
		BookingsHandler:    bookings.NewHandler(bookingService, logger),
		HealersHandler:     healers.NewHandler(directory, logger),
		CalendarHandler:    calendar.NewHandler(logger),
		MetricsHandler:     metricsHandler,
		HTTPMetrics:        httpMetrics,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitRPS:       cfg.RateLimitRPS,
		RateLimitBurst:     cfg.RateLimitBurst,
		ReadinessChecks:    readinessChecks(pool, redisClient),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

func poolConfig(cfg *appconfig.Config) database.PoolConfig {
	return database.PoolConfig{
		URL:                cfg.DatabaseURL,
		MaxConns:           cfg.DBMaxConns,
		MinConns:           cfg.DBMinConns,
		ConnMaxLifetime:    cfg.DBConnMaxLifetime,
		SlowQueryThreshold: cfg.DBSlowQueryThreshold,
	}
}

func setupMetrics() (*prometheus.Registry, http.Handler) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry, promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

func readinessChecks(pool *pgxpool.Pool, redisClient *redis.Client) []router.ReadinessCheck {
	var checks []router.ReadinessCheck
	if pool != nil {
		checks = append(checks, router.ReadinessCheck{Name: "database", Check: pool.Ping})
	}
	if redisClient != nil {
		checks = append(checks, router.ReadinessCheck{Name: "redis", Check: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}})
	}
	return checks
}
