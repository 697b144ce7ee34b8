package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Gemini     GeminiConfig     `yaml:"gemini"`
	Trading    TradingConfig    `yaml:"trading"`
	Simulation SimulationConfig `yaml:"simulation"`
	MarketData MarketDataConfig `yaml:"marketdata"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Web        WebConfig        `yaml:"web"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type GeminiConfig struct {
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type TradingConfig struct {
	RefreshInterval  string  `yaml:"refresh_interval"`
	AnalysisInterval string  `yaml:"analysis_interval"`
	AutoExecute      bool    `yaml:"auto_execute"`
	InitialCash      float64 `yaml:"initial_cash"`
	DefaultBuyQty    int64   `yaml:"default_buy_qty"`
	LogCapacity      int     `yaml:"log_capacity"`
}

type SimulationConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Seed      int64   `yaml:"seed"`
	TrendBias float64 `yaml:"trend_bias"`
}

type MarketDataConfig struct {
	Enabled        bool   `yaml:"enabled"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
}

type WebConfig struct {
	Port int `yaml:"port"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	setDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Gemini.BaseURL == "" {
		cfg.Gemini.BaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"
	}
	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = "gemini-2.0-flash"
	}
	if cfg.Gemini.TimeoutSeconds == 0 {
		cfg.Gemini.TimeoutSeconds = 120
	}
	if cfg.Trading.RefreshInterval == "" {
		cfg.Trading.RefreshInterval = "30s"
	}
	if cfg.Trading.AnalysisInterval == "" {
		cfg.Trading.AnalysisInterval = "15m"
	}
	if cfg.Trading.DefaultBuyQty == 0 {
		cfg.Trading.DefaultBuyQty = 10
	}
	if cfg.Trading.LogCapacity == 0 {
		cfg.Trading.LogCapacity = 50
	}
	if cfg.MarketData.TimeoutSeconds == 0 {
		cfg.MarketData.TimeoutSeconds = 10
	}
	if cfg.Web.Port == 0 {
		cfg.Web.Port = 8080
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

func (c *Config) Validate() error {
	if c.Gemini.APIKey == "" && !c.Simulation.Enabled {
		return fmt.Errorf("gemini.api_key is required unless simulation is enabled")
	}
	if _, err := time.ParseDuration(c.Trading.RefreshInterval); err != nil {
		return fmt.Errorf("invalid trading.refresh_interval %q: %w", c.Trading.RefreshInterval, err)
	}
	if _, err := time.ParseDuration(c.Trading.AnalysisInterval); err != nil {
		return fmt.Errorf("invalid trading.analysis_interval %q: %w", c.Trading.AnalysisInterval, err)
	}
	if c.Trading.InitialCash < 0 {
		return fmt.Errorf("trading.initial_cash must not be negative")
	}
	if c.MarketData.Enabled && c.MarketData.BaseURL == "" {
		return fmt.Errorf("marketdata.base_url is required when marketdata is enabled")
	}
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == 0 {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}
	return nil
}

func (c *Config) RefreshInterval() time.Duration {
	d, _ := time.ParseDuration(c.Trading.RefreshInterval)
	return d
}

func (c *Config) AnalysisInterval() time.Duration {
	d, _ := time.ParseDuration(c.Trading.AnalysisInterval)
	return d
}

func (c *Config) GeminiTimeout() time.Duration {
	return time.Duration(c.Gemini.TimeoutSeconds) * time.Second
}

func (c *Config) MarketDataTimeout() time.Duration {
	return time.Duration(c.MarketData.TimeoutSeconds) * time.Second
}
