package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Market struct {
		Symbols          []string `yaml:"symbols"`
		Period           string   `yaml:"period"`
		Interval         string   `yaml:"interval"`
		ExchangeTimezone string   `yaml:"exchange_timezone"`
	} `yaml:"market"`
	DataSource struct {
		QueryURL       string `yaml:"query_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"data_source"`
	Storage struct {
		DataDir    string `yaml:"data_dir"`
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"storage"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
	} `yaml:"schedule"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
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
	if v := os.Getenv("STOCKSCOPE_SYMBOLS"); v != "" {
		cfg.Market.Symbols = splitSymbols(v)
	}
	if v := os.Getenv("STOCKSCOPE_PERIOD"); v != "" {
		cfg.Market.Period = v
	}
	if v := os.Getenv("STOCKSCOPE_INTERVAL"); v != "" {
		cfg.Market.Interval = v
	}
	if v := os.Getenv("EXCHANGE_TIMEZONE"); v != "" {
		cfg.Market.ExchangeTimezone = v
	}
	if v := os.Getenv("YAHOO_QUERY_URL"); v != "" {
		cfg.DataSource.QueryURL = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("CRON_REFRESH"); v != "" {
		cfg.Schedule.RefreshCron = v
	}

	// Defaults
	if len(cfg.Market.Symbols) == 0 {
		cfg.Market.Symbols = []string{"AAPL"}
	}
	if cfg.Market.Period == "" {
		cfg.Market.Period = "1y"
	}
	if cfg.Market.Interval == "" {
		cfg.Market.Interval = "1d"
	}
	if cfg.Market.ExchangeTimezone == "" {
		cfg.Market.ExchangeTimezone = "America/New_York"
	}
	if cfg.DataSource.TimeoutSeconds == 0 {
		cfg.DataSource.TimeoutSeconds = 30
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = "data"
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = "data/stockscope.db"
	}
	if cfg.Schedule.RefreshCron == "" {
		// Weekdays at 17:30, after the US close.
		cfg.Schedule.RefreshCron = "0 30 17 * * 1-5"
	}

	return cfg, nil
}

// Validate checks that all required fields are set and loadable.
func (c *Config) Validate() error {
	if len(c.Market.Symbols) == 0 {
		return fmt.Errorf("market.symbols is required")
	}
	for _, s := range c.Market.Symbols {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("market.symbols contains an empty symbol")
		}
	}
	if _, err := time.LoadLocation(c.Market.ExchangeTimezone); err != nil {
		return fmt.Errorf("market.exchange_timezone: %w", err)
	}
	if c.DataSource.TimeoutSeconds < 0 {
		return fmt.Errorf("data_source.timeout_seconds must not be negative")
	}
	return nil
}

// ExchangeTZ loads the configured exchange timezone.
func (c *Config) ExchangeTZ() (*time.Location, error) {
	return time.LoadLocation(c.Market.ExchangeTimezone)
}

// Timeout returns the data source timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.DataSource.TimeoutSeconds) * time.Second
}

func splitSymbols(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
