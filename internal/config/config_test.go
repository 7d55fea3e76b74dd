package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Scan.IntervalSeconds != 300 {
		t.Errorf("scan interval default = %d", cfg.Scan.IntervalSeconds)
	}
	if cfg.Cooldown() != 15*time.Minute {
		t.Errorf("cooldown default = %s", cfg.Cooldown())
	}
	if cfg.PumpDumpWindow() != 10*time.Minute {
		t.Errorf("pump/dump window default = %s", cfg.PumpDumpWindow())
	}
	if cfg.Scan.AlertStrategy != "cooldown" {
		t.Errorf("alert strategy default = %q", cfg.Scan.AlertStrategy)
	}
	if cfg.Provider.BaseURL != "https://api.coinlore.net" {
		t.Errorf("provider base url default = %q", cfg.Provider.BaseURL)
	}
	if cfg.TelegramConfigured() {
		t.Error("telegram must not be configured by default")
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
scan:
  scan_interval_seconds: 60
  cooldown_seconds: 120
  alert_strategy: transition
telegram:
  bot_token: "123:abc"
  chat_id: "-100200,300400"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Scan.IntervalSeconds != 60 {
		t.Errorf("scan interval = %d", cfg.Scan.IntervalSeconds)
	}
	if cfg.Cooldown() != 2*time.Minute {
		t.Errorf("cooldown = %s", cfg.Cooldown())
	}
	if cfg.Scan.AlertStrategy != "transition" {
		t.Errorf("alert strategy = %q", cfg.Scan.AlertStrategy)
	}
	if !cfg.TelegramConfigured() {
		t.Error("telegram should be configured")
	}
	// Untouched fields keep their defaults.
	if cfg.Scan.HistoryLookback != 168 {
		t.Errorf("history lookback = %d", cfg.Scan.HistoryLookback)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "scan:\n  threshold_percent: 1.0\n")
	t.Setenv("THRESHOLD_PERCENT", "3.5")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Scan.ThresholdPercent != 3.5 {
		t.Errorf("env override lost: %.1f", cfg.Scan.ThresholdPercent)
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"bad alert strategy", "scan:\n  alert_strategy: shout\n"},
		{"zero pump threshold", "scan:\n  pump_dump_threshold_percent: -1\n"},
		{"lookback too small", "scan:\n  history_lookback: 2\n"},
		{"bad log level", "log:\n  level: loud\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tc.yaml)); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
