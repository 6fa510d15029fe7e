package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"splitbook/internal/amqp"
	"splitbook/internal/analytics"
	"splitbook/internal/config"
	"splitbook/internal/storage"
	"splitbook/internal/worker"
)

func main() {
	// Load .env for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting splitbook-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the rollup worker")
		os.Exit(1)
	}

	loc, err := cfg.Location()
	if err != nil {
		logger.Error("Failed to load timezone", "timezone", cfg.Timezone, "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// The worker invalidates before every recompute, so the engine's own
	// default cache is enough here.
	engine := analytics.NewEngine(repo, nil, loc)
	rollupWorker := worker.NewRollupWorker(repo, engine)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	logger.Info("Consuming ledger mutations",
		"queue", cfg.AMQPQueue,
		"exchange", cfg.AMQPExchange)

	err = amqp.ConsumeWithReconnect(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue,
		func(msg *amqp.LedgerMutationMessage) error {
			return rollupWorker.HandleMutation(ctx, msg)
		})
	if err != nil && err != context.Canceled {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully")
}
