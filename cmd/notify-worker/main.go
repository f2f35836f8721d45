package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avenrae/avenrae-api/internal/app/bootstrap"
	appconfig "github.com/avenrae/avenrae-api/internal/config"
	"github.com/avenrae/avenrae-api/internal/database"
	"github.com/avenrae/avenrae-api/internal/notify"
	"github.com/avenrae/avenrae-api/internal/observability/metrics"
	"github.com/avenrae/avenrae-api/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()
	logger := logging.NewWithFormat(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.Open(ctx, database.PoolConfig{
		URL:                cfg.DatabaseURL,
		MaxConns:           4,
		MinConns:           1,
		ConnMaxLifetime:    cfg.DBConnMaxLifetime,
		SlowQueryThreshold: cfg.DBSlowQueryThreshold,
	}, logger)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	sender, provider, err := bootstrap.BuildEmailSender(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to configure email sender", "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	notifyMetrics := metrics.NewNotifyMetrics(registry)
	metricsSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warn("metrics server stopped", "error", err)
		}
	}()

	dispatcher := notify.NewDispatcher(notify.NewOutboxStore(pool).WithClaimTTL(cfg.NotifyClaimTTL), sender, notifyMetrics, logger).
		WithBatchSize(cfg.NotifyBatchSize).
		WithInterval(cfg.NotifyPollInterval).
		WithMaxAttempts(cfg.NotifyMaxAttempts)

	logger.Info("notification worker started",
		"provider", provider,
		"interval", cfg.NotifyPollInterval.String(),
		"batch_size", cfg.NotifyBatchSize,
	)
	dispatcher.Start(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = metricsSrv.Shutdown(shutdownCtx)
	logger.Info("notification worker stopped")
}
