// ABOUTME: This file is the application entry point: config, telemetry, wiring, serve, shutdown
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andrewvu270/MindForge-sub000/config"
	logger "github.com/andrewvu270/MindForge-sub000/utils/logger"
	"github.com/andrewvu270/MindForge-sub000/utils/otel"
)

// Run initializes all dependencies, starts the server and background loops,
// then waits for a shutdown signal.
func Run(ctx context.Context) error {
	otelCfg := otel.ConfigFromEnv()
	otelShutdown, err := otel.InitProvider(ctx, otelCfg)
	if err != nil {
		fmt.Printf("Failed to initialize OpenTelemetry: %v\n", err)
		otelCfg.Enabled = false
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if otelShutdown != nil {
			if err := otelShutdown(shutdownCtx); err != nil {
				fmt.Printf("Failed to shutdown OpenTelemetry: %v\n", err)
			}
		}
	}()

	log := logger.Init(logger.LoadConfigFromEnv(), otelCfg.Enabled)

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log.Info("starting content-hub service",
		"port", cfg.Server.Port,
		"otel_enabled", otelCfg.Enabled,
		"service", otelCfg.ServiceName)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	deps, cleanup, err := BuildDependencies(runCtx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to build dependencies: %w", err)
	}
	defer cleanup()

	// Periodic removal of expired cache entries.
	go deps.Cache.RunSweeper(runCtx, cfg.Cache.SweepInterval)

	httpServer := NewHTTPServer(deps, otelCfg.Enabled, otelCfg.ServiceName)
	StartHTTPServer(httpServer, cfg.Server.Port, log)

	log.Info("content-hub service started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	log.Info("shutting down content-hub service")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("error shutting down HTTP server", "error", err)
	}

	log.Info("content-hub service stopped")
	return nil
}
