package main

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"moneybook/internal/amqp"
	"moneybook/internal/cli"
	"moneybook/internal/export/sheets"
	"moneybook/internal/log"
	"moneybook/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	cfg, err := cli.LoadConfig()
	if err != nil {
		cli.Fatal(log.New(log.DefaultConfig()), "Configuration validation failed", err)
	}
	logger := cli.SetupLogger(cfg, log.ComponentWorker)
	logger.Info("Starting moneybook-worker")

	if !cfg.ExportEnabled() {
		cli.Fatal(logger, "Google Sheets export is not configured",
			errors.New("GOOGLE_SPREADSHEET_ID and a service account or OAuth token are required"))
	}

	result, err := cli.InitBackend(context.Background(), logger, cfg)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize backend", err, "backend", cfg.DataBackend)
	}
	defer result.Close()

	exporter, err := sheets.New(context.Background(), cfg.GoogleSpreadsheetID, sheets.Credentials{
		JSON:  cfg.GoogleServiceAccountJSON,
		File:  cfg.GoogleServiceAccountFile,
		OAuth: sheets.OAuthClient{
			JSON: cfg.GoogleOAuthClientJSON,
			File: cfg.GoogleOAuthClientFile,
		},
		TokenFile: cfg.GoogleOAuthTokenFile,
	}, cfg.Location(), logger)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize Google Sheets client", err)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	exportWorker := worker.NewExportWorker(result.Backend, exporter, worker.Options{
		Logger:   logger,
		Location: cfg.Location(),
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)
	g, gctx := errgroup.WithContext(ctx)

	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, logger)
		if err != nil {
			cli.Fatal(logger, "Failed to initialize AMQP client", err)
		}
		defer amqpClient.Close()

		g.Go(func() error {
			return amqpClient.ConsumeWithRetry(gctx, cfg.AMQPQueue, exportWorker.HandleChange)
		})
	} else {
		logger.Info("AMQP disabled, relying on periodic export only")
	}

	g.Go(func() error {
		return exportWorker.Run(gctx, cfg.ExportInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped", log.FieldError, err)
	}
	if ctx.Err() != nil {
		<-done
	}
	logger.Info("Worker shutdown complete", "pending", exportWorker.Pending())
}
