package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// Settings are user preferences persisted as a flat JSON document next to
// the binary. Unlike Config they survive restarts and are meant to be
// edited by hand.
type Settings struct {
	Currency              string          `json:"currency"`
	DecimalPlaces         int             `json:"decimal_places"`
	MaxRecentTransactions int             `json:"max_recent_transactions"`
	MaxDescriptionLength  int             `json:"max_description_length"`
	MaxAmount             decimal.Decimal `json:"max_amount"`
	AutoUpdateAnalysis    bool            `json:"auto_update_analysis"`
	FirstRun              bool            `json:"first_run"`
}

func DefaultSettings() Settings {
	limits := core.DefaultLimits()
	return Settings{
		Currency:              "USD",
		DecimalPlaces:         2,
		MaxRecentTransactions: 10,
		MaxDescriptionLength:  limits.MaxDescriptionLen,
		MaxAmount:             limits.MaxAmount,
		AutoUpdateAnalysis:    true,
		FirstRun:              true,
	}
}

// Limits converts the persisted bounds into the domain's Limits value.
// Unset or nonsense values fall back to the defaults.
func (s Settings) Limits() core.Limits {
	limits := core.DefaultLimits()
	if s.MaxDescriptionLength > 0 {
		limits.MaxDescriptionLen = s.MaxDescriptionLength
	}
	if s.MaxAmount.IsPositive() {
		limits.MaxAmount = s.MaxAmount
	}
	return limits
}

// LoadSettings reads the settings file, creating it with defaults when it
// does not exist yet. A corrupt file is an error rather than a silent reset
// so a typo cannot wipe preferences.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		s := DefaultSettings()
		if err := SaveSettings(path, s); err != nil {
			return Settings{}, err
		}
		return s, nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("read settings %s: %w", path, err)
	}

	s := DefaultSettings()
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parse settings %s: %w", path, err)
	}
	if err := core.ValidateCurrency(s.Currency); err != nil {
		return Settings{}, fmt.Errorf("settings %s: %w", path, err)
	}
	return s, nil
}

func SaveSettings(path string, s Settings) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write settings %s: %w", path, err)
	}
	return nil
}
