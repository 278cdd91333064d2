package config

import (
	"os"
	"path/filepath"
	"testing"

	"PriceBoard/internal/model"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "PRICEBOARD_SYMBOLS", "PRICEBOARD_PERIOD",
		"PRICEBOARD_VIEW", "PRICEBOARD_SHEET", "HTTPS_PROXY", "CRON_DAILY", "SQLITE_PATH",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DataSource.Provider != "yahoo" {
		t.Errorf("expected yahoo provider, got %q", cfg.DataSource.Provider)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
	if err := cfg.ValidateTelegram(); err == nil {
		t.Error("expected telegram validation to fail without a token")
	}
	sel := cfg.Selection()
	if sel.Period != model.Period6mo || sel.Mode != model.ViewPrice || len(sel.Symbols) != 4 {
		t.Errorf("unexpected default selection: %+v", sel)
	}
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
telegram:
  bot_token: file-token
  chat_id: "42"
data_source:
  prefer_adjusted: true
dashboard:
  symbols: [SPY, QQQ]
  period: 1y
  view: rebased
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("PRICEBOARD_VIEW", "cum")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Telegram.BotToken != "env-token" {
		t.Errorf("env should override file, got %q", cfg.Telegram.BotToken)
	}
	if err := cfg.ValidateTelegram(); err != nil {
		t.Errorf("unexpected telegram error: %v", err)
	}
	sel := cfg.Selection()
	if sel.Mode != model.ViewCumulativeReturn || sel.Period != model.Period1y {
		t.Errorf("unexpected selection: %+v", sel)
	}
	if pref := cfg.FieldPreference(); pref[0] != model.FieldAdjustedClose {
		t.Errorf("expected adjusted close first, got %v", pref)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad period", func(c *Config) { c.Dashboard.Period = "10y" }},
		{"bad view", func(c *Config) { c.Dashboard.View = "log" }},
		{"no symbols", func(c *Config) { c.Dashboard.Symbols = nil }},
		{"sheet without path", func(c *Config) { c.DataSource.Provider = "sheet" }},
		{"unknown provider", func(c *Config) { c.DataSource.Provider = "bloomberg" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.DataSource.Provider = "yahoo"
			cfg.Dashboard.Symbols = []string{"SPY"}
			cfg.Dashboard.Period = "1mo"
			cfg.Dashboard.View = "price"
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSplitSymbols(t *testing.T) {
	got := SplitSymbols(" btc-usd, eth-usd;spy  gld ,,")
	want := []string{"BTC-USD", "ETH-USD", "SPY", "GLD"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}
