package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	database "github.com/FACorreiaa/go-travel-assistant/app/db"
	appLogger "github.com/FACorreiaa/go-travel-assistant/app/logger"
	"github.com/FACorreiaa/go-travel-assistant/app/observability/metrics"
	"github.com/FACorreiaa/go-travel-assistant/app/tracer"
	"github.com/FACorreiaa/go-travel-assistant/config"
	"github.com/FACorreiaa/go-travel-assistant/internal/api/auth"
	generativeAI "github.com/FACorreiaa/go-travel-assistant/internal/api/generative_ai"
	"github.com/FACorreiaa/go-travel-assistant/internal/container"
)

// @title           Travel Assistant API
// @version         1.0.0
// @description     AI travel assistant: chat with attraction extraction, conversations, trips and navigation links.
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Use standard log until slog is configured
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	logger := appLogger.New(cfg.Mode, os.Stdout)
	slog.SetDefault(logger)

	warnings, err := cfg.Validate()
	if err != nil {
		logger.Error("Invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}
	for _, w := range warnings {
		logger.Warn("Configuration warning", slog.String("warning", w))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// --- Observability ---
	providers, err := tracer.InitTracingAndMetrics(cfg.Observability.ServiceName)
	if err != nil {
		logger.Error("Failed to initialize tracing and metrics", slog.Any("error", err))
		os.Exit(1)
	}
	metrics.InitAppMetrics()

	// --- Database ---
	dbConfig, err := database.NewDatabaseConfig(&cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		os.Exit(1)
	}
	if err = database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
		logger.Error("Failed to run database migrations", slog.Any("error", err))
		os.Exit(1)
	}
	pool, err := database.Init(ctx, dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		os.Exit(1)
	}
	if !database.WaitForDB(ctx, pool, logger) {
		pool.Close()
		logger.Error("Database not ready after waiting, exiting.")
		os.Exit(1)
	}

	// --- AI assistant ---
	assistant, err := generativeAI.NewAssistant(ctx, cfg.AI, logger)
	if err != nil {
		pool.Close()
		logger.Error("Failed to initialize AI assistant", slog.Any("error", err))
		os.Exit(1)
	}
	if p, ok := assistant.(generativeAI.Pinger); ok {
		pingCtx, pingCancel := context.WithTimeout(ctx, cfg.AI.Dify.Timeout)
		if err := p.Ping(pingCtx); err != nil {
			logger.Warn("AI provider connection check failed", slog.String("reason", generativeAI.Reason(err)))
		} else {
			logger.Info("AI provider connection check passed", slog.String("provider", cfg.AI.Provider))
		}
		pingCancel()
	}

	if auth.ConfigureOAuth(cfg) {
		logger.Info("OAuth providers configured")
	}

	c := container.NewContainer(&cfg, pool, pool, assistant, logger)
	defer c.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.HTTPPort),
		Handler:      c.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	metricsRouter := chi.NewMux()
	metricsRouter.Handle("/metrics", providers.MetricsHandler())
	metricsSrv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Observability.MetricsPort),
		Handler:           metricsRouter,
		ReadHeaderTimeout: 5 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("Starting metrics server", slog.String("address", metricsSrv.Addr))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutdown signal received, starting graceful shutdown...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		return errors.Join(
			srv.Shutdown(shutdownCtx),
			metricsSrv.Shutdown(shutdownCtx),
			providers.Shutdown(shutdownCtx),
		)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", slog.Any("error", err))
	}
	logger.Info("Application shut down complete.")
}
