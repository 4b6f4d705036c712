package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/noah-isme/court-facilities-api/internal/app"
	"github.com/noah-isme/court-facilities-api/pkg/config"
	"github.com/noah-isme/court-facilities-api/pkg/logger"
)

// @title Court Facilities API
// @version 1.0.0
// @description Court building inventory, courtroom photos, court term schedules and term imports.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, err := app.New(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("failed to initialise server", zap.Error(err))
	}
	defer server.Close()

	if err := server.Run(ctx); err != nil {
		logr.Error("server stopped with error", zap.Error(err))
		os.Exit(1)
	}
}
