package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"CompSim/internal/bonus"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Engine.ActivationFee != 20790 {
		t.Errorf("expected fee 20790, got %d", cfg.Engine.ActivationFee)
	}
	if cfg.Bonus.MatchingBase != "product" {
		t.Errorf("expected product matching, got %q", cfg.Bonus.MatchingBase)
	}
	if cfg.Roster.Path != "data/nodes.csv" {
		t.Errorf("unexpected roster path %q", cfg.Roster.Path)
	}
	if cfg.Schedule.SeasonCron == "" || cfg.Ledger.StateFile == "" || cfg.Database.SQLitePath == "" {
		t.Errorf("missing defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
	if err := cfg.ValidateNotifier(); err == nil {
		t.Error("expected notifier validation to fail without a token")
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
engine:
  activation_fee: 10000
  strict_sponsors: true
bonus:
  level_rates: ["1000", "2000", "3000", "4000"]
  matching_rates: ["0.1", "0.05", "0.025"]
  car_bonus: 50000
  sharing_rate: "0.02"
roster:
  generate:
    layers: [1, 5, 2]
    seed: 7
telegram:
  bot_token: from-file
`)
	t.Setenv("ACTIVATION_FEE", "30000")
	t.Setenv("MATCHING_BASE", "RISEUP")
	t.Setenv("TELEGRAM_CHAT_ID", "42")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Engine.ActivationFee != 30000 {
		t.Errorf("env should override fee, got %d", cfg.Engine.ActivationFee)
	}
	if !cfg.Engine.StrictSponsors {
		t.Error("expected strict sponsors")
	}
	if cfg.Roster.Path != "" {
		t.Errorf("generated roster should not get a default path, got %q", cfg.Roster.Path)
	}
	if err := cfg.ValidateNotifier(); err != nil {
		t.Errorf("notifier config: %v", err)
	}

	p, err := cfg.BonusParams()
	if err != nil {
		t.Fatalf("bonus params: %v", err)
	}
	if p.Matching != bonus.MatchOnRiseup {
		t.Errorf("expected riseup base, got %q", p.Matching)
	}
	if !p.LevelRates[3].Equal(decimal.NewFromInt(4000)) {
		t.Errorf("unexpected level rate %s", p.LevelRates[3])
	}
	if !p.MatchingRates[2].Equal(decimal.RequireFromString("0.025")) {
		t.Errorf("unexpected matching rate %s", p.MatchingRates[2])
	}
	if p.CarBonus != 50000 || p.HouseBonus != 150000 {
		t.Errorf("unexpected car/house %d/%d", p.CarBonus, p.HouseBonus)
	}
	if !p.SharingRate.Equal(decimal.RequireFromString("0.02")) {
		t.Errorf("unexpected sharing rate %s", p.SharingRate)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("validate: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Config)
	}{
		{"zero fee", func(c *Config) { c.Engine.ActivationFee = 0 }},
		{"unknown base", func(c *Config) { c.Bonus.MatchingBase = "volume" }},
		{"short rates", func(c *Config) { c.Bonus.LevelRates = []string{"1", "2"} }},
		{"bad decimal", func(c *Config) { c.Bonus.SharingRate = "1%" }},
		{"negative rate", func(c *Config) { c.Bonus.MatchingRates = []string{"-0.1", "0", "0"} }},
		{"no roster", func(c *Config) { c.Roster.Path = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
			if err != nil {
				t.Fatal(err)
			}
			tt.edit(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}

func TestLoad_BadYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "engine: [")); err == nil {
		t.Error("expected parse error")
	}
}
