// Package cli holds the interactive menu and the initialization helpers
// shared by command entry points.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fintrack/internal/config"
	"fintrack/internal/log"
)

// SetupLogger initializes structured logging and installs it as the
// process default.
func SetupLogger(component string) *log.Logger {
	logger := log.New(log.LevelFromEnv(), component)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development. Errors are
// ignored silently as the file is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it. Returns the
// config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// LoadSettings loads user settings, creating the file with defaults on
// first run. Exits the process when the file exists but is unusable.
func LoadSettings(logger *log.Logger, path string) config.Settings {
	settings, err := config.LoadSettings(path)
	if err != nil {
		logger.Error("failed to load user settings", "error", err, "path", path)
		os.Exit(1)
	}
	return settings
}

// GracefulShutdown sets up signal handling. Returns a context cancelled on
// SIGINT/SIGTERM and a channel closed once cleanup has run.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func()) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if cleanup != nil {
			cleanup()
		}
		cancel()

		select {
		case <-shutdownCtx.Done():
			logger.Warn("shutdown timeout reached")
		default:
			logger.Info("shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}
