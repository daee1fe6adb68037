package main

import (
	"context"
	"os"
	"time"

	"fintrack/internal/ai"
	"fintrack/internal/cache"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/ledger"
	"fintrack/internal/retry"
	gsheet "fintrack/internal/sheets/google"
	mem "fintrack/internal/sheets/memory"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger("fintrack")
	cfg := cli.LoadAndValidateConfig(logger)
	settings := cli.LoadSettings(logger, cfg.SettingsPath)

	if settings.FirstRun {
		logger.Info("first run, settings file created", "path", cfg.SettingsPath)
		settings.FirstRun = false
		if err := config.SaveSettings(cfg.SettingsPath, settings); err != nil {
			logger.Warn("could not persist settings", "error", err)
		}
	}

	// Choose data backend (default: memory).
	var store ledger.Store
	switch cfg.DataBackend {
	case "sheets":
		c, err := gsheet.New(context.Background(), gsheet.Config{
			SpreadsheetID:     cfg.SpreadsheetID,
			TransactionsSheet: cfg.TransactionsSheet,
			AnalysisSheet:     cfg.AnalysisSheet,
			CredentialsJSON:   cfg.Credentials(),
			RequestsPerSec:    cfg.SheetsRequestsPerSec,
		})
		if err != nil {
			logger.Error("failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		store = c
		logger.Info("initialized Google Sheets backend", "spreadsheet", cfg.SpreadsheetID)
	default:
		store = mem.New()
		logger.Info("initialized memory backend")
	}

	retrier := retry.New(cfg.RetryAttempts, cfg.RetryBaseDelay,
		retry.WithLogger(logger.WithComponent("retry")))

	book := ledger.New(store, retrier,
		ledger.WithTTL(cfg.CacheTTL),
		ledger.WithCurrency(settings.Currency),
		ledger.WithLimits(settings.Limits()),
		ledger.WithLogger(logger.WithComponent("ledger")))

	manager := cache.NewManager()
	book.RegisterCaches(manager)
	manager.StartCleanup(cfg.CacheTTL)
	defer manager.Stop()

	assistant := ai.NewAssistant(ai.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel))
	if !assistant.Enabled() {
		logger.Info("AI assistant disabled, rule-based fallbacks active")
	}

	ctx, _ := cli.GracefulShutdown(logger, 10*time.Second, manager.Stop)

	if err := book.Init(ctx); err != nil {
		logger.Error("failed to initialize worksheets", "error", err)
		os.Exit(1)
	}

	menu := cli.NewMenu(book, assistant, settings, os.Stdin, os.Stdout)
	if err := menu.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("menu exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("session ended")
}
