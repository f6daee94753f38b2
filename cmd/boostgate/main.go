// Package main provides the entry point for the boostgate server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/mkarel/boostgate/internal/accesskey"
	"github.com/mkarel/boostgate/internal/admin"
	"github.com/mkarel/boostgate/internal/boost"
	"github.com/mkarel/boostgate/internal/boostctl"
	"github.com/mkarel/boostgate/internal/config"
	"github.com/mkarel/boostgate/internal/httpapi"
	"github.com/mkarel/boostgate/internal/metrics"
	appmw "github.com/mkarel/boostgate/internal/middleware"
	"github.com/mkarel/boostgate/internal/storage"
	"github.com/mkarel/boostgate/internal/web"
)

const version = "1.2.0"

const (
	maxRequestBody  = 1 << 20
	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "boostgate: %v\n", err)
		os.Exit(1)
	}
}

// parseLogLevel maps a config value to a slog level. Unknown values fall
// back to info.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logLevel := new(slog.LevelVar)
	logLevel.Set(parseLogLevel(cfg.LogLevel))
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	if err := metrics.Init(prometheus.DefaultRegisterer); err != nil {
		return fmt.Errorf("failed to init metrics: %w", err)
	}

	store, err := storage.New(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		//nolint:errcheck
		store.Close()
	}()

	engine := boost.NewClient(cfg.BoostAPIURL)
	controller := boostctl.New(engine, store, logger,
		boostctl.WithPollInterval(cfg.PollInterval))
	validator := accesskey.NewValidator(store, logger)

	pages, err := web.NewHandler(logger)
	if err != nil {
		return fmt.Errorf("failed to load pages: %w", err)
	}

	adminHandler := admin.NewHandler(store, []byte(cfg.AdminPasswordHash), logLevel, logger)
	apiHandler := httpapi.NewHandler(validator, controller, logger)

	limiter := httpapi.NewRateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)
	defer limiter.Stop()

	r := chi.NewRouter()
	r.Use(appmw.RequestID)
	r.Use(metrics.Middleware)
	r.Use(appmw.HTTPLogging(logger))
	r.Use(appmw.MaxBodySize(maxRequestBody))

	r.Get("/health", adminHandler.HandleHealth)
	r.Get("/ready", adminHandler.HandleReady)
	r.Mount("/api", apiHandler.NewRouter(limiter))
	r.Mount("/admin", adminHandler.NewRouter([]byte(cfg.SessionSecret), cfg.SecureCookies,
		pages.HandleAdminLogin, pages.HandleAdminDashboard, limiter.Middleware))
	r.Mount("/", pages.Routes())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", metrics.Handler())
	metricsSrv := &http.Server{
		Addr:              cfg.MetricsListenAddr,
		Handler:           metricsMux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)

	go func() {
		logger.Info("metrics listening", "addr", cfg.MetricsListenAddr)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("metrics server: %w", err)
		}
	}()

	go func() {
		logger.Info("boostgate starting", "version", version, "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("metrics server shutdown", "error", err)
	}
	if err := controller.Shutdown(shutdownCtx); err != nil {
		logger.Warn("controller shutdown", "error", err)
	}

	logger.Info("stopped")
	return nil
}
