package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config carries process configuration from the environment. User-facing
// preferences (currency, limits) live in the settings file instead; see
// settings.go.
type Config struct {
	// Google Sheets
	SpreadsheetID        string
	TransactionsSheet    string
	AnalysisSheet        string
	ServiceAccountJSON   string
	ServiceAccountFile   string
	SheetsRequestsPerSec float64

	// Gemini
	GeminiAPIKey string
	GeminiModel  string

	// Core knobs
	CacheTTL       time.Duration
	RetryAttempts  int
	RetryBaseDelay time.Duration

	// Backend selection: "sheets" or "memory"
	DataBackend string

	// Settings file path
	SettingsPath string
}

func Load() *Config {
	return &Config{
		SpreadsheetID:        getEnv("GOOGLE_SPREADSHEET_ID", ""),
		TransactionsSheet:    getEnv("TRANSACTIONS_SHEET_NAME", "Transactions"),
		AnalysisSheet:        getEnv("ANALYSIS_SHEET_NAME", "Charts & Analysis"),
		ServiceAccountJSON:   getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		ServiceAccountFile:   getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")),
		SheetsRequestsPerSec: getEnvFloat("SHEETS_REQUESTS_PER_SEC", 1.0),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-flash-latest"),

		CacheTTL:       getEnvDuration("CACHE_TTL", 30*time.Second),
		RetryAttempts:  getEnvInt("RETRY_ATTEMPTS", 3),
		RetryBaseDelay: getEnvDuration("RETRY_BASE_DELAY", 500*time.Millisecond),

		DataBackend: getEnv("DATA_BACKEND", "memory"),

		SettingsPath: getEnv("SETTINGS_PATH", "user_settings.json"),
	}
}

// Credentials returns the service account JSON, reading it from disk when
// only a file path is configured. Inline JSON wins over the file.
func (c *Config) Credentials() []byte {
	if c.ServiceAccountJSON != "" {
		return []byte(c.ServiceAccountJSON)
	}
	if c.ServiceAccountFile != "" {
		if data, err := os.ReadFile(c.ServiceAccountFile); err == nil {
			return data
		}
	}
	return nil
}

// Validate collects all configuration problems into one error.
func (c *Config) Validate() error {
	var errs []string

	switch c.DataBackend {
	case "memory":
		// No remote credentials needed.
	case "sheets":
		if c.SpreadsheetID == "" {
			errs = append(errs, "GOOGLE_SPREADSHEET_ID is required when using the sheets backend")
		}
		if c.ServiceAccountJSON == "" && c.ServiceAccountFile == "" {
			errs = append(errs, "set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS for the sheets backend")
		}
		if c.ServiceAccountFile != "" {
			if _, err := os.Stat(c.ServiceAccountFile); os.IsNotExist(err) {
				errs = append(errs, fmt.Sprintf("service account file does not exist: %s", c.ServiceAccountFile))
			}
		}
		if c.TransactionsSheet == "" {
			errs = append(errs, "transactions sheet name cannot be empty")
		}
		if c.AnalysisSheet == "" {
			errs = append(errs, "analysis sheet name cannot be empty")
		}
	default:
		errs = append(errs, fmt.Sprintf("invalid data backend %q: must be one of [memory sheets]", c.DataBackend))
	}

	if c.SheetsRequestsPerSec <= 0 {
		errs = append(errs, fmt.Sprintf("invalid sheets rate limit %v: must be positive", c.SheetsRequestsPerSec))
	}

	if c.CacheTTL < time.Second {
		errs = append(errs, fmt.Sprintf("invalid cache TTL %v: must be at least 1 second", c.CacheTTL))
	} else if c.CacheTTL > time.Hour {
		errs = append(errs, fmt.Sprintf("invalid cache TTL %v: must be at most 1 hour", c.CacheTTL))
	}

	if c.RetryAttempts < 1 || c.RetryAttempts > 10 {
		errs = append(errs, fmt.Sprintf("invalid retry attempts %d: must be between 1 and 10", c.RetryAttempts))
	}
	if c.RetryBaseDelay < 10*time.Millisecond || c.RetryBaseDelay > time.Minute {
		errs = append(errs, fmt.Sprintf("invalid retry base delay %v: must be between 10ms and 1m", c.RetryBaseDelay))
	}

	if c.SettingsPath == "" {
		errs = append(errs, "settings path cannot be empty")
	}

	// Gemini is optional: a missing key degrades to the rule-based
	// fallback rather than failing validation.

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
