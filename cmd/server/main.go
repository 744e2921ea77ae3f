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
	"github.com/ErlanBelekov/superrichie/internal/email"
	"github.com/ErlanBelekov/superrichie/internal/health"
	"github.com/ErlanBelekov/superrichie/internal/metrics"
	"github.com/ErlanBelekov/superrichie/internal/session"
	httptransport "github.com/ErlanBelekov/superrichie/internal/transport/http"
	"github.com/ErlanBelekov/superrichie/internal/transport/http/handler"
	"github.com/ErlanBelekov/superrichie/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := bootstrap.NewLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	stores, err := bootstrap.OpenStores(ctx, &cfg.StoreConfig, logger)
	if err != nil {
		stop()
		log.Fatalf("stores: %v", err)
	}
	defer stores.Close()

	// The memory store lives in this process, so nothing else can sweep it.
	if cfg.StoreBackend == "memory" && cfg.TokenBackend == "" {
		reaper := cleanup.NewReaper(stores.Tokens, logger, cfg.TokenRetention, cleanup.DefaultBatchSize)
		go func() {
			if err := reaper.Start(ctx, cfg.CleanupCron); err != nil {
				logger.Error("reaper", "error", err)
			}
		}()
	}

	sender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)
	sessions := session.NewManager([]byte(cfg.SessionSecret))

	authUsecase := usecase.NewAuthUsecase(stores.Users, stores.Tokens, sender, cfg.AppBaseURL)
	authHandler := handler.NewAuthHandler(authUsecase, sessions, cfg.AppBaseURL, cfg.IsProduction(), logger)

	metrics.Register()
	checker := health.NewChecker(stores.Deps, logger, prometheus.DefaultRegisterer)

	srv := http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httptransport.NewRouter(logger, authHandler, sessions, cfg.IsProduction()),
		ReadHeaderTimeout: 5 * time.Second,
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port, "store", cfg.StoreBackend, "tokens", cfg.TokenStore())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}
