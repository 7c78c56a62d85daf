package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"nexo/internal/amqp"
	"nexo/internal/backend"
	"nexo/internal/config"
	apphttp "nexo/internal/http"
	"nexo/internal/ledger"
	applog "nexo/internal/log"
	"nexo/internal/payment"
	"nexo/internal/services"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Persistence backend and persisted state.
	result, err := backend.Create(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", "error", err)
			}
		}()
	}

	// AMQP event publishing is optional; without it mutations stay local.
	var publisher services.Publisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
			logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	l := ledger.New(result.State.Transactions, result.State.Accounts)
	tracker := services.NewTracker(l, result.Store, publisher, result.State.Profile)

	// Fresh installs get a wallet account so the first transaction works.
	if err := tracker.EnsureDefaultAccount(ctx); err != nil {
		logger.Error("Failed to seed default account", "error", err)
		os.Exit(1)
	}

	simulator := payment.NewSimulator(cfg.PaymentDuration, func(ctx context.Context, plan payment.Plan, until time.Time) {
		if err := tracker.ActivateSubscription(ctx, until); err != nil {
			logger.ErrorContext(ctx, "Failed to activate subscription", "error", err, "plan", string(plan))
		}
	})

	srv := apphttp.NewServer(":"+cfg.Port, tracker, simulator)
	srv.Handler = applog.Middleware(logger.WithComponent(applog.ComponentHTTP))(srv.Handler)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting nexo server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"transactions", len(result.State.Transactions),
		"accounts", len(result.State.Accounts))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
