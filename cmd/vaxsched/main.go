package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/vaxsched/adapter/cli"
	"github.com/felixgeelhaar/vaxsched/internal/app"
	"github.com/felixgeelhaar/vaxsched/pkg/config"
	"github.com/felixgeelhaar/vaxsched/pkg/observability"
)

func main() {
	logger := observability.LoggerFromEnv()

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// In development without .env, use defaults
		logger.Warn("failed to load config, using development mode", "error", err)
		cfg = &config.Config{AppEnv: "development"}
	}

	// Update logger level based on config
	if cfg.IsDevelopment() {
		logger = observability.NewLogger(observability.LogConfig{
			Level: observability.LogLevelDebug,
		})
	}
	cli.SetLogger(logger)
	slog.SetDefault(logger)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	// Start outbox processor in background (optional in CLI)
	if cfg.OutboxProcessorEnabled {
		go container.OutboxProcessor.Start(ctx)
	} else {
		logger.Info("outbox processor disabled in CLI")
	}

	// Create CLI app with handlers
	cliApp := cli.NewApp(
		container.RegisterAccountHandler,
		container.LoginHandler,
		container.LogoutHandler,
		container.CurrentSessionHandler,
		container.AddDosesHandler,
		container.PublishSlotHandler,
		container.SearchScheduleHandler,
		container.ReserveHandler,
		container.ListAppointmentsHandler,
	)
	cli.SetApp(cliApp)

	// Execute CLI
	cli.Execute()
}
