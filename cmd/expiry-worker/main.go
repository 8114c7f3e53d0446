package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mirocommunity/submit-service/internal/config"
	"github.com/mirocommunity/submit-service/internal/storage/postgres"
)

type ExpiryWorker struct {
	storage  *postgres.Postgres
	interval time.Duration
	logger   *slog.Logger
}

func NewExpiryWorker(storage *postgres.Postgres, interval time.Duration) *ExpiryWorker {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	return &ExpiryWorker{
		storage:  storage,
		interval: interval,
		logger:   logger,
	}
}

func (ew *ExpiryWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(ew.interval)
	defer ticker.Stop()

	ew.logger.Info("Expiry worker started",
		"interval", ew.interval.String())

	// Run once immediately on startup
	ew.processExpiredFileURLs(ctx)

	for {
		select {
		case <-ctx.Done():
			ew.logger.Info("Expiry worker shutting down")
			return
		case <-ticker.C:
			ew.processExpiredFileURLs(ctx)
		}
	}
}

func (ew *ExpiryWorker) processExpiredFileURLs(ctx context.Context) {
	startTime := time.Now()

	ew.logger.Info("Starting expired file URL cleanup")

	count, err := ew.storage.ClearExpiredFileURLs()
	if err != nil {
		ew.logger.Error("Failed to clear expired file URLs",
			"error", err.Error(),
			"duration_ms", time.Since(startTime).Milliseconds())
		return
	}

	duration := time.Since(startTime)

	ew.logger.Info("Completed expired file URL cleanup",
		"urls_cleared", count,
		"duration_ms", duration.Milliseconds(),
		"duration", duration.String())
}

func main() {
	// Load config
	cfg := config.MustLoad()

	// Initialize database connection
	storage, err := postgres.NewPostgres(cfg)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	slog.Info("Connected to Postgres database")

	// Create worker with 5-minute interval
	worker := NewExpiryWorker(storage, 5*time.Minute)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		slog.Info("Received shutdown signal")
		cancel()
	}()

	// Start the worker
	worker.Start(ctx)

	slog.Info("Expiry worker stopped")
}
