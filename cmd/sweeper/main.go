package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ErlanBelekov/superrichie/config"
	"github.com/ErlanBelekov/superrichie/internal/bootstrap"
	"github.com/ErlanBelekov/superrichie/internal/cleanup"
	"github.com/ErlanBelekov/superrichie/internal/health"
	"github.com/ErlanBelekov/superrichie/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if cfg.TokenStore() == "memory" {
		log.Fatal("sweeper: memory tokens live inside the server process, which sweeps them itself")
	}

	logger := bootstrap.NewLogger(cfg.Env, cfg.SlogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	stores, err := bootstrap.OpenStores(ctx, &cfg.StoreConfig, logger)
	if err != nil {
		stop()
		log.Fatalf("stores: %v", err)
	}
	defer stores.Close()

	metrics.Register()
	checker := health.NewChecker(stores.Deps, logger, prometheus.DefaultRegisterer)

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)
	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	reaper := cleanup.NewReaper(stores.Tokens, logger, cfg.TokenRetention, cleanup.DefaultBatchSize)
	if err := reaper.Start(ctx, cfg.CleanupCron); err != nil {
		logger.Error("reaper", "error", err)
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}

	logger.Info("sweeper shut down")
}
