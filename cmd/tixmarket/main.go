package main

import (
	"context"
	"log/slog"
	"os"

	_ "github.com/kirinyoku/tixmarket/docs"
	"github.com/kirinyoku/tixmarket/internal/app"
	"github.com/kirinyoku/tixmarket/internal/config"
)

// @title                       TixMarket API
// @version                     1.0
// @description                 Ticket marketplace: vendors list trips, customers book and pay, admins moderate.
// @host                        localhost:8080
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	cfg, err := config.New()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	level.Set(cfg.LogLevel)

	ctx := context.Background()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to create application", "error", err)
		os.Exit(1)
	}

	if err := application.Run(ctx); err != nil {
		logger.Error("application finished with error", "error", err)
		os.Exit(1)
	}
}
