package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/goliatone/go-tablegen/internal/app"
	"github.com/goliatone/go-tablegen/internal/cli"
	"github.com/goliatone/go-tablegen/internal/config"
	"github.com/goliatone/go-tablegen/internal/logging"
	"github.com/goliatone/go-tablegen/internal/server"
)

func main() {
	configPath := flag.String("config", os.Getenv("TABLEGEN_CONFIG"), "TOML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("failed to initialise", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Serve(ctx, server.New(a), cfg.Server.ShutdownTimeout.Duration); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
