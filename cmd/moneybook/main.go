package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"moneybook/internal/amqp"
	"moneybook/internal/auth"
	"moneybook/internal/cli"
	"moneybook/internal/feed"
	apphttp "moneybook/internal/http"
	"moneybook/internal/log"
	"moneybook/internal/services"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	cfg, err := cli.LoadConfig()
	if err != nil {
		cli.Fatal(log.New(log.DefaultConfig()), "Configuration validation failed", err)
	}
	logger := cli.SetupLogger(cfg, log.ComponentApp)

	result, err := cli.InitBackend(context.Background(), logger, cfg)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize backend", err, "backend", cfg.DataBackend)
	}
	defer result.Close()
	store := result.Backend

	hub := feed.NewHub(store, logger)
	defer hub.Close()

	// Without AMQP the hub hears about writes directly. With AMQP every
	// replica publishes and listens on its own exclusive queue.
	var notifier feed.Notifier = hub
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, logger)
		if err != nil {
			cli.Fatal(logger, "Failed to initialize AMQP client", err)
		}
		defer amqpClient.Close()
		notifier = amqpClient
	}

	srv, err := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Auth:    auth.NewService(store, bcrypt.DefaultCost),
		Records: services.NewRecordService(store, notifier, logger),
		Feed:    hub,
		Ready:   store.Ping,
	}, apphttp.Options{
		SessionTTL: cfg.SessionTTL,
		Location:   cfg.Location(),
		Logger:     logger,
	})
	if err != nil {
		cli.Fatal(logger, "Failed to create HTTP server", err)
	}

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	})

	if amqpClient != nil {
		go func() {
			err := amqpClient.ConsumeWithRetry(ctx, "", hub.Notify)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Change feed consumer stopped", log.FieldError, err)
			}
		}()
	}

	logger.Info("Starting moneybook server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"amqp", amqpClient != nil,
		"timezone", cfg.Location().String())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		cli.Fatal(logger, "Server error", err, "port", cfg.Port)
	}

	<-done
	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
