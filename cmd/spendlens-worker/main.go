package main

import (
	"context"
	"errors"
	"os"
	"time"

	"spendlens/internal/amqp"
	"spendlens/internal/cli"
	"spendlens/internal/filter"
	"spendlens/internal/log"
	"spendlens/internal/views"
	"spendlens/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	logger.Info("Starting spendlens-worker", log.FieldOperation, log.OpStartup)

	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	startCtx, startCancel := context.WithTimeout(context.Background(), 30*time.Second)
	result := cli.InitBackend(startCtx, logger, cfg)
	startCancel()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		if err := amqpClient.Close(); err != nil {
			logger.Error("Failed to close AMQP client", log.FieldError, err)
		}
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Failed to close backend", log.FieldError, err)
			}
		}
	})

	filters := filter.NewStore(ctx, result.Backend)
	engine := views.NewEngine(filters, cfg.FiscalYear, cfg.CacheSize)
	refresher := worker.NewRefreshWorker(result.Backend, result.Backend, filters, engine, logger)

	if err := refresher.RefreshAll(ctx); err != nil {
		logger.Error("Startup refresh failed", log.FieldError, err)
		// Keep consuming, the next notification retries the load.
	}

	if err := amqpClient.Consume(ctx, refresher); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Notification consumption failed", log.FieldOperation, log.OpConsume, log.FieldError, err)
	}

	cli.WaitForShutdown(ctx, done)
}
