package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"UpbitSentinel/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Upbit struct {
		BaseURL   string `yaml:"base_url"`
		AccessKey string `yaml:"access_key"`
		SecretKey string `yaml:"secret_key"`
	} `yaml:"upbit"`
	Strategy struct {
		Profile string `yaml:"profile"`
	} `yaml:"strategy"`
	Monitor struct {
		ScanIntervalSec      int `yaml:"scan_interval"`
		AlertCooldownSec     int `yaml:"alert_cooldown"`
		HeartbeatIntervalSec int `yaml:"heartbeat_interval"`
	} `yaml:"monitor"`
	Indicator struct {
		BBPeriod            int     `yaml:"bb_period"`
		BBStdMultiplier     float64 `yaml:"bb_std_multiplier"`
		RSIPeriod           int     `yaml:"rsi_period"`
		VolatilityLookback  int     `yaml:"volatility_lookback"`
		VolatilityThreshold float64 `yaml:"volatility_threshold"`
	} `yaml:"indicator"`
	Backtest struct {
		InitialCapital float64 `yaml:"initial_capital"`
		Days           int     `yaml:"days"`
		MaxInstruments int     `yaml:"max_instruments"`
		OutputDir      string  `yaml:"output_dir"`
	} `yaml:"backtest"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Watchlist []model.Instrument `yaml:"watchlist"`
	Proxy     string             `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error; env vars and
// defaults alone can fully configure the bot.
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

	// Environment variable overrides
	if v := os.Getenv("UPBIT_BOLLINGER_TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("UPBIT_BOLLINGER_TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("UPBIT_ACCESS_KEY"); v != "" {
		cfg.Upbit.AccessKey = v
	}
	if v := os.Getenv("UPBIT_SECRET_KEY"); v != "" {
		cfg.Upbit.SecretKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("STRATEGY_PROFILE"); v != "" {
		cfg.Strategy.Profile = v
	}
	if v := os.Getenv("SCAN_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Monitor.ScanIntervalSec = n
		}
	}
	if v := os.Getenv("INITIAL_CAPITAL"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Backtest.InitialCapital = f
		}
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Upbit.BaseURL == "" {
		cfg.Upbit.BaseURL = "https://api.upbit.com"
	}
	if cfg.Strategy.Profile == "" {
		cfg.Strategy.Profile = "conservative"
	}
	if cfg.Monitor.ScanIntervalSec == 0 {
		cfg.Monitor.ScanIntervalSec = 300
	}
	if cfg.Monitor.AlertCooldownSec == 0 {
		cfg.Monitor.AlertCooldownSec = 3600
	}
	if cfg.Monitor.HeartbeatIntervalSec == 0 {
		cfg.Monitor.HeartbeatIntervalSec = 3600
	}
	if cfg.Indicator.BBPeriod == 0 {
		cfg.Indicator.BBPeriod = 20
	}
	if cfg.Indicator.BBStdMultiplier == 0 {
		cfg.Indicator.BBStdMultiplier = 2.0
	}
	if cfg.Indicator.RSIPeriod == 0 {
		cfg.Indicator.RSIPeriod = 14
	}
	if cfg.Indicator.VolatilityLookback == 0 {
		cfg.Indicator.VolatilityLookback = 50
	}
	if cfg.Indicator.VolatilityThreshold == 0 {
		cfg.Indicator.VolatilityThreshold = 0.2
	}
	if cfg.Backtest.InitialCapital == 0 {
		cfg.Backtest.InitialCapital = 1000000
	}
	if cfg.Backtest.Days == 0 {
		cfg.Backtest.Days = 1095
	}
	if cfg.Backtest.MaxInstruments == 0 {
		cfg.Backtest.MaxInstruments = 15
	}
	if cfg.Backtest.OutputDir == "" {
		cfg.Backtest.OutputDir = "upbit_output_files"
	}
	if len(cfg.Watchlist) == 0 {
		cfg.Watchlist = DefaultWatchlist()
	}
}

// Validate checks constraints that would otherwise surface as confusing
// runtime behavior.
func (c *Config) Validate() error {
	switch c.Strategy.Profile {
	case "conservative", "balanced", "aggressive":
	default:
		return fmt.Errorf("strategy.profile must be conservative, balanced, or aggressive (got %q)", c.Strategy.Profile)
	}
	if c.Monitor.ScanIntervalSec <= 0 {
		return fmt.Errorf("monitor.scan_interval must be positive")
	}
	if c.Backtest.InitialCapital <= 0 {
		return fmt.Errorf("backtest.initial_capital must be positive")
	}
	if len(c.Watchlist) == 0 {
		return fmt.Errorf("watchlist must not be empty")
	}
	if (c.Upbit.AccessKey == "") != (c.Upbit.SecretKey == "") {
		return fmt.Errorf("upbit access_key and secret_key must be set together")
	}
	return nil
}

// DefaultWatchlist is the built-in Upbit KRW-market universe, ordered by tier.
func DefaultWatchlist() []model.Instrument {
	return []model.Instrument{
		// Majors
		{Symbol: "KRW-BTC", Name: "Bitcoin"},
		{Symbol: "KRW-ETH", Name: "Ethereum"},
		{Symbol: "KRW-XRP", Name: "Ripple"},
		{Symbol: "KRW-ADA", Name: "Cardano"},
		{Symbol: "KRW-DOT", Name: "Polkadot"},
		// Large caps
		{Symbol: "KRW-LINK", Name: "Chainlink"},
		{Symbol: "KRW-SOL", Name: "Solana"},
		{Symbol: "KRW-TRX", Name: "Tron"},
		{Symbol: "KRW-AVAX", Name: "Avalanche"},
		{Symbol: "KRW-XLM", Name: "Stellar"},
		// Mid caps
		{Symbol: "KRW-DOGE", Name: "Dogecoin"},
		{Symbol: "KRW-SHIB", Name: "Shiba Inu"},
		{Symbol: "KRW-HBAR", Name: "Hedera"},
		{Symbol: "KRW-ALGO", Name: "Algorand"},
		{Symbol: "KRW-ATOM", Name: "Cosmos"},
		// Small caps
		{Symbol: "KRW-THETA", Name: "Theta"},
		{Symbol: "KRW-VET", Name: "VeChain"},
		{Symbol: "KRW-NEAR", Name: "Near Protocol"},
		{Symbol: "KRW-APT", Name: "Aptos"},
		{Symbol: "KRW-ARB", Name: "Arbitrum"},
	}
}
