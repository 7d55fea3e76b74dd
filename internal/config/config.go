// Package config loads application configuration from a YAML file, fills
// defaults, applies environment overrides, and validates the result.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token" envconfig:"TELEGRAM_TOKEN"`
		// ChatID may be a comma-separated list of chats.
		ChatID string `yaml:"chat_id" envconfig:"TELEGRAM_CHAT_ID"`
	} `yaml:"telegram"`

	Provider struct {
		BaseURL        string `yaml:"base_url" default:"https://api.coinlore.net" envconfig:"PROVIDER_BASE_URL" validate:"required,url"`
		FetchBatchSize int    `yaml:"fetch_batch_size" default:"50" envconfig:"FETCH_BATCH_SIZE" validate:"min=1,max=100"`
	} `yaml:"provider"`

	Scan struct {
		IntervalSeconds          int     `yaml:"scan_interval_seconds" default:"300" envconfig:"SCAN_INTERVAL_SECONDS" validate:"min=1"`
		ThresholdPercent         float64 `yaml:"threshold_percent" default:"2.0" envconfig:"THRESHOLD_PERCENT" validate:"min=0"`
		CooldownSeconds          int     `yaml:"cooldown_seconds" default:"900" envconfig:"ALERT_COOLDOWN_SECONDS" validate:"min=0"`
		HistoryLookback          int     `yaml:"history_lookback" default:"168" envconfig:"HISTORY_LOOKBACK" validate:"min=10"`
		PumpDumpWindowSeconds    int     `yaml:"pump_dump_window_seconds" default:"600" envconfig:"PUMP_DUMP_WINDOW_SECONDS" validate:"min=1"`
		PumpDumpThresholdPercent float64 `yaml:"pump_dump_threshold_percent" default:"5.0" envconfig:"PUMP_DUMP_THRESHOLD_PERCENT" validate:"gt=0"`
		VolumeSpikeMultiplier    float64 `yaml:"volume_spike_multiplier" default:"2.5" envconfig:"VOLUME_SPIKE_MULTIPLIER" validate:"gt=0"`
		// AlertStrategy selects the gatekeeper policy: "cooldown" gates on
		// elapsed time only; "transition" additionally requires a signal change.
		AlertStrategy string `yaml:"alert_strategy" default:"cooldown" envconfig:"ALERT_STRATEGY" validate:"oneof=cooldown transition"`
	} `yaml:"scan"`

	WatchList string `yaml:"watch_list" default:"coinlist.csv" envconfig:"COIN_LIST_PATH" validate:"required"`

	Database struct {
		// SQLitePath empty means run on the in-memory store (state lost on
		// restart; useful for development only).
		SQLitePath string `yaml:"sqlite_path" default:"data/coinsentinel.db" envconfig:"DATABASE_PATH"`
	} `yaml:"database"`

	API struct {
		ListenAddr string `yaml:"listen_addr" default:":8080" envconfig:"API_LISTEN_ADDR"`
	} `yaml:"api"`

	Log struct {
		Level  string `yaml:"level" default:"info" envconfig:"LOG_LEVEL" validate:"oneof=trace debug info warn error"`
		Format string `yaml:"format" default:"console" envconfig:"LOG_FORMAT" validate:"oneof=console json"`
	} `yaml:"log"`

	Proxy      string `yaml:"proxy" envconfig:"HTTPS_PROXY"`
	RunOnStart bool   `yaml:"run_on_start" envconfig:"RUN_ON_START"`
}

// Load reads config from a YAML file (missing file is fine: defaults plus
// environment carry a full configuration), then applies defaults, environment
// overrides, and validation, in that order.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("apply env overrides: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Cooldown returns the gatekeeper suppression window.
func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.Scan.CooldownSeconds) * time.Second
}

// PumpDumpWindow returns the volatility detector's trailing window.
func (c *Config) PumpDumpWindow() time.Duration {
	return time.Duration(c.Scan.PumpDumpWindowSeconds) * time.Second
}

// TelegramConfigured reports whether real alert delivery is possible.
func (c *Config) TelegramConfigured() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}
