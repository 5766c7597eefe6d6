package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mcoot/charsheet-go/internal/api"
	"github.com/mcoot/charsheet-go/internal/config"
	"github.com/mcoot/charsheet-go/internal/factory"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Level(),
	}))
	slog.SetDefault(logger)

	// Create application factory
	app, err := factory.New(cfg.Factory(logger))
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.SeedMaster() {
		if _, err := app.AuthService.EnsureMaster(context.Background(), cfg.MasterName, cfg.MasterEmail, cfg.MasterPassword); err != nil {
			logger.Error("failed to seed master account", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	router := api.NewRouter(api.RouterConfig{
		Logger:              logger,
		AuthService:         app.AuthService,
		TokenService:        app.TokenService,
		CharacterController: app.CharacterController,
	})

	server := api.NewServer(router, cfg.Server(), logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("server stopped")
}
