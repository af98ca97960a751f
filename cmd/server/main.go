package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ReachPilot/internal/api"
	"ReachPilot/internal/config"
	"ReachPilot/internal/db"
	"ReachPilot/internal/email"
	"ReachPilot/internal/engine"
	"ReachPilot/internal/mailbox"
	"ReachPilot/internal/metrics"
	"ReachPilot/internal/worker"
)

func main() {

	// ------------------------------------------------
	// Logger
	// ------------------------------------------------
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// ------------------------------------------------
	// Config
	// ------------------------------------------------
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// ------------------------------------------------
	// Root Context + Shutdown
	// ------------------------------------------------
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
		cancel()
	}()

	// ------------------------------------------------
	// Lead Store
	// ------------------------------------------------
	var store *db.Store
	if err := connectWithRetry(ctx, func() error {
		s, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		store = s
		return nil
	}); err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer store.Close()

	// ------------------------------------------------
	// Mailbox
	// ------------------------------------------------
	var box *mailbox.Client
	if err := connectWithRetry(ctx, func() error {
		c, err := mailbox.New(mailbox.Config{
			IMAPHost:     cfg.IMAPHost,
			IMAPPort:     cfg.IMAPPort,
			IMAPUser:     cfg.IMAPUser,
			IMAPPassword: cfg.IMAPPassword,
			IMAPFolder:   cfg.IMAPFolder,
			SMTPHost:     cfg.SMTPHost,
			SMTPPort:     cfg.SMTPPort,
			SMTPUser:     cfg.SMTPUser,
			SMTPPassword: cfg.SMTPPassword,
			From:         cfg.SMTPFrom,
		}, logger)
		if err != nil {
			return err
		}
		box = c
		return nil
	}); err != nil {
		logger.Fatal("mailbox connection failed", zap.Error(err))
	}
	defer box.Close()

	// ------------------------------------------------
	// Metrics
	// ------------------------------------------------
	metrics.Init()

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())

	metricsServer := &http.Server{
		Addr:    ":" + cfg.MetricsPort,
		Handler: metricsMux,
	}

	go func() {
		logger.Info("metrics server started", zap.String("port", cfg.MetricsPort))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("metrics server error", zap.Error(err))
		}
	}()

	// ------------------------------------------------
	// Templates
	// ------------------------------------------------
	templates, err := email.NewResolver()
	if err != nil {
		logger.Fatal("failed to load templates", zap.Error(err))
	}

	// ------------------------------------------------
	// Engine
	// ------------------------------------------------
	dispatcher := engine.NewDispatcher(box, cfg.SendDelay, logger)

	eng := engine.New(store, box, templates, dispatcher, logger, engine.Options{
		InboxBatchSize:  cfg.InboxBatchSize,
		SkillOfferDelay: cfg.SkillOfferDelay,
		ReviewDelay:     cfg.ReviewDelay,
		RejectDelay:     cfg.RejectDelay,
	})

	// ------------------------------------------------
	// Sweep Loop
	// ------------------------------------------------
	var wg sync.WaitGroup

	sweeper := worker.NewSweeper(eng, cfg.SweepInterval, logger)
	sweeper.Start(ctx, &wg)

	// ------------------------------------------------
	// HTTP API Server
	// ------------------------------------------------
	apiHandler := &api.Handler{
		Funnel: eng,
		Log:    logger,
	}

	apiMux := http.NewServeMux()
	apiHandler.Register(apiMux)

	apiServer := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: apiMux,
	}

	go func() {
		logger.Info("api server started", zap.String("port", cfg.APIPort))
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("api server error", zap.Error(err))
		}
	}()

	// ------------------------------------------------
	// Wait for shutdown
	// ------------------------------------------------
	<-ctx.Done()

	logger.Info("shutting down services...")

	// Wait for the in-flight sweep to finish
	wg.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("api shutdown failed", zap.Error(err))
	}

	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics shutdown failed", zap.Error(err))
	}

	logger.Info("application shutdown complete")
}

// connectWithRetry dials a collaborator with exponential backoff so a
// briefly unavailable dependency does not kill startup. A dependency
// still down after the window is fatal.
func connectWithRetry(ctx context.Context, connect func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(connect, backoff.WithContext(b, ctx))
}
