package main

import (
	"context"
	"log"
	"os"

	"github.com/vincentino1/account-service/internal/logging"
	"github.com/vincentino1/account-service/internal/server"
	"github.com/vincentino1/account-service/internal/server/config"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger, err := logging.New(cfg.LogFormat, !cfg.IsProduction(), os.Stdout)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "startup failed", "error", err)
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error(ctx, "server failed", "error", err)
		os.Exit(1)
	}
}
