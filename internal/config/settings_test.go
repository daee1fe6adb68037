package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
)

func TestLoadSettingsCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_settings.json")

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Currency != "USD" || !s.FirstRun {
		t.Fatalf("unexpected defaults: %+v", s)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("settings file not written: %v", err)
	}
}

func TestLoadSettingsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_settings.json")

	s := DefaultSettings()
	s.Currency = "EUR"
	s.MaxRecentTransactions = 25
	s.FirstRun = false
	if err := SaveSettings(path, s); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Currency != "EUR" || got.MaxRecentTransactions != 25 || got.FirstRun {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestLoadSettingsRejectsCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_settings.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSettings(path); err == nil {
		t.Fatal("expected error for corrupt settings file")
	}
}

func TestLoadSettingsRejectsBadCurrency(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_settings.json")
	if err := os.WriteFile(path, []byte(`{"currency":"us"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSettings(path); err == nil {
		t.Fatal("expected error for invalid currency")
	}
}

func TestSettingsLimits(t *testing.T) {
	s := DefaultSettings()
	s.MaxDescriptionLength = 80
	s.MaxAmount = decimal.NewFromInt(5000)
	limits := s.Limits()
	if limits.MaxDescriptionLen != 80 {
		t.Errorf("MaxDescriptionLen = %d, want 80", limits.MaxDescriptionLen)
	}
	if !limits.MaxAmount.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("MaxAmount = %s, want 5000", limits.MaxAmount)
	}

	// Zero values fall back to defaults
	s.MaxDescriptionLength = 0
	s.MaxAmount = decimal.Zero
	limits = s.Limits()
	if limits.MaxDescriptionLen != 200 {
		t.Errorf("fallback MaxDescriptionLen = %d, want 200", limits.MaxDescriptionLen)
	}
}
