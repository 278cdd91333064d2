package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"PriceBoard/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		Provider       string `yaml:"provider"` // yahoo, sheet or mock
		SheetPath      string `yaml:"sheet_path"`
		PreferAdjusted bool   `yaml:"prefer_adjusted"`
	} `yaml:"data_source"`
	Dashboard struct {
		Symbols []string `yaml:"symbols"`
		Period  string   `yaml:"period"`
		View    string   `yaml:"view"`
	} `yaml:"dashboard"`
	Schedule struct {
		DailyCron string `yaml:"daily_cron"`
	} `yaml:"schedule"`
	Session struct {
		StateFile string `yaml:"state_file"`
	} `yaml:"session"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides. A missing file is not an error.
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

	// .env never overrides variables already set in the process
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("PRICEBOARD_SYMBOLS"); v != "" {
		cfg.Dashboard.Symbols = SplitSymbols(v)
	}
	if v := os.Getenv("PRICEBOARD_PERIOD"); v != "" {
		cfg.Dashboard.Period = v
	}
	if v := os.Getenv("PRICEBOARD_VIEW"); v != "" {
		cfg.Dashboard.View = v
	}
	if v := os.Getenv("PRICEBOARD_SHEET"); v != "" {
		cfg.DataSource.Provider = "sheet"
		cfg.DataSource.SheetPath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_DAILY"); v != "" {
		cfg.Schedule.DailyCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}

	// Defaults
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = "yahoo"
	}
	if len(cfg.Dashboard.Symbols) == 0 {
		cfg.Dashboard.Symbols = []string{"BTC-USD", "ETH-USD", "SPY", "GLD"}
	}
	if cfg.Dashboard.Period == "" {
		cfg.Dashboard.Period = string(model.Period6mo)
	}
	if cfg.Dashboard.View == "" {
		cfg.Dashboard.View = string(model.ViewPrice)
	}
	if cfg.Schedule.DailyCron == "" {
		cfg.Schedule.DailyCron = "0 0 22 * * 1-5"
	}
	if cfg.Session.StateFile == "" {
		cfg.Session.StateFile = "data/sessions.json"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/priceboard.db"
	}

	return cfg, nil
}

// Validate checks the dashboard and data source settings.
func (c *Config) Validate() error {
	if _, err := model.ParsePeriod(c.Dashboard.Period); err != nil {
		return fmt.Errorf("dashboard.period: %w", err)
	}
	if _, err := model.ParseViewMode(c.Dashboard.View); err != nil {
		return fmt.Errorf("dashboard.view: %w", err)
	}
	if len(c.Dashboard.Symbols) == 0 {
		return fmt.Errorf("dashboard.symbols must not be empty")
	}
	switch c.DataSource.Provider {
	case "yahoo", "mock":
	case "sheet":
		if c.DataSource.SheetPath == "" {
			return fmt.Errorf("data_source.sheet_path is required for the sheet provider")
		}
	default:
		return fmt.Errorf("data_source.provider %q is not one of yahoo, sheet, mock", c.DataSource.Provider)
	}
	return nil
}

// ValidateTelegram checks the settings the bot needs on top of Validate.
func (c *Config) ValidateTelegram() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	return nil
}

// Selection is the default dashboard selection. Call Validate first.
func (c *Config) Selection() model.Selection {
	period, _ := model.ParsePeriod(c.Dashboard.Period)
	mode, _ := model.ParseViewMode(c.Dashboard.View)
	return model.Selection{
		Symbols: append([]string(nil), c.Dashboard.Symbols...),
		Period:  period,
		Mode:    mode,
	}
}

// FieldPreference returns the price field order for the normalizer.
func (c *Config) FieldPreference() []model.Field {
	if c.DataSource.PreferAdjusted {
		return []model.Field{model.FieldAdjustedClose, model.FieldClose}
	}
	return model.DefaultFieldPreference
}

// SplitSymbols parses a comma or space separated ticker list, upper-casing
// each entry and dropping blanks.
func SplitSymbols(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == ';' || r == '\t' || r == '\n'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, strings.ToUpper(f))
	}
	return out
}
