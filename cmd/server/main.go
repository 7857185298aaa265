// Package main is the entry point for the riskalloc service.
// It serves the optimal split between one risky asset and a risk-free asset
// as a function of risk aversion, over HTTP and a websocket slider stream.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/riskalloc/internal/config"
	"github.com/aristath/riskalloc/internal/di"
	"github.com/aristath/riskalloc/internal/server"
	"github.com/aristath/riskalloc/pkg/logger"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

// main loads configuration, wires dependencies, starts the HTTP server and
// waits for SIGINT/SIGTERM to shut down gracefully.
func main() {
	// Load configuration first to get log level
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Str("version", version).Msg("Starting riskalloc")

	// Wire all dependencies (config.db, settings, allocation services).
	// Stored market overrides are applied to cfg during wiring.
	container, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	// Closing flushes the WAL
	defer container.Close()

	container.Scheduler.Start()

	srv := server.New(server.Config{
		Log:       log,
		Config:    cfg,
		Container: container,
		Version:   version,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Let a running maintenance job finish before the database closes
	container.Scheduler.Stop()

	// Give in-flight requests up to 10 seconds to finish
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
