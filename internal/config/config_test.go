package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Upbit.BaseURL != "https://api.upbit.com" {
		t.Errorf("unexpected base url %q", cfg.Upbit.BaseURL)
	}
	if cfg.Strategy.Profile != "conservative" {
		t.Errorf("unexpected profile %q", cfg.Strategy.Profile)
	}
	if cfg.Monitor.ScanIntervalSec != 300 || cfg.Monitor.AlertCooldownSec != 3600 {
		t.Errorf("unexpected monitor defaults: %+v", cfg.Monitor)
	}
	if cfg.Backtest.InitialCapital != 1000000 || cfg.Backtest.Days != 1095 {
		t.Errorf("unexpected backtest defaults: %+v", cfg.Backtest)
	}
	if len(cfg.Watchlist) == 0 {
		t.Error("default watchlist must not be empty")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeTempConfig(t, `
strategy:
  profile: aggressive
monitor:
  scan_interval: 60
indicator:
  bb_period: 10
watchlist:
  - symbol: KRW-BTC
    name: Bitcoin
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Strategy.Profile != "aggressive" {
		t.Errorf("unexpected profile %q", cfg.Strategy.Profile)
	}
	if cfg.Monitor.ScanIntervalSec != 60 {
		t.Errorf("unexpected scan interval %d", cfg.Monitor.ScanIntervalSec)
	}
	if cfg.Indicator.BBPeriod != 10 {
		t.Errorf("unexpected bb period %d", cfg.Indicator.BBPeriod)
	}
	// Untouched fields keep their defaults.
	if cfg.Indicator.RSIPeriod != 14 {
		t.Errorf("unexpected rsi period %d", cfg.Indicator.RSIPeriod)
	}
	if len(cfg.Watchlist) != 1 || cfg.Watchlist[0].Symbol != "KRW-BTC" {
		t.Errorf("unexpected watchlist %+v", cfg.Watchlist)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeTempConfig(t, `
telegram:
  bot_token: from-file
strategy:
  profile: balanced
`)
	t.Setenv("UPBIT_BOLLINGER_TELEGRAM_BOT_TOKEN", "from-env")
	t.Setenv("STRATEGY_PROFILE", "aggressive")
	t.Setenv("SCAN_INTERVAL", "120")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.BotToken != "from-env" {
		t.Errorf("env must win, got %q", cfg.Telegram.BotToken)
	}
	if cfg.Strategy.Profile != "aggressive" {
		t.Errorf("env must win, got %q", cfg.Strategy.Profile)
	}
	if cfg.Monitor.ScanIntervalSec != 120 {
		t.Errorf("env must win, got %d", cfg.Monitor.ScanIntervalSec)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		return cfg
	}

	cfg := base()
	cfg.Strategy.Profile = "reckless"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown profile")
	}

	cfg = base()
	cfg.Monitor.ScanIntervalSec = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative scan interval")
	}

	cfg = base()
	cfg.Backtest.InitialCapital = -100
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative capital")
	}

	cfg = base()
	cfg.Watchlist = nil
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty watchlist")
	}

	cfg = base()
	cfg.Upbit.AccessKey = "key-without-secret"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for half-configured credentials")
	}
}
