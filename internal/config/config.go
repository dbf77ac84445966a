package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"StockPulse/internal/strategy"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	DataSource struct {
		Provider string        `yaml:"provider"` // "yahoo" or "rest"
		BaseURL  string        `yaml:"base_url"`
		APIKey   string        `yaml:"api_key"`
		Period   string        `yaml:"period"`
		Interval string        `yaml:"interval"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"data_source"`
	Cache struct {
		RedisAddr     string        `yaml:"redis_addr"`
		RedisPassword string        `yaml:"redis_password"`
		TTL           time.Duration `yaml:"ttl"`
	} `yaml:"cache"`
	Strategy struct {
		BuyThreshold  float64 `yaml:"buy_threshold"`
		SellThreshold float64 `yaml:"sell_threshold"`
	} `yaml:"strategy"`
	Schedule struct {
		RankCron   string   `yaml:"rank_cron"`
		Watchlist  []string `yaml:"watchlist"`
		RunOnStart bool     `yaml:"run_on_start"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Tracing struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"tracing"`
	Proxy string `yaml:"proxy"`
}

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment. Missing files are ignored; variables already set win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	// Seeded before YAML and env so either threshold can be overridden alone.
	cfg.Strategy.BuyThreshold = strategy.DefaultThresholds.Buy
	cfg.Strategy.SellThreshold = strategy.DefaultThresholds.Sell

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	str := map[string]*string{
		"SERVER_ADDR":          &c.Server.Addr,
		"DATA_SOURCE":          &c.DataSource.Provider,
		"DATA_SOURCE_BASE_URL": &c.DataSource.BaseURL,
		"DATA_SOURCE_API_KEY":  &c.DataSource.APIKey,
		"REDIS_ADDR":           &c.Cache.RedisAddr,
		"REDIS_PASSWORD":       &c.Cache.RedisPassword,
		"CRON_RANK":            &c.Schedule.RankCron,
		"TELEGRAM_BOT_TOKEN":   &c.Telegram.BotToken,
		"TELEGRAM_CHAT_ID":     &c.Telegram.ChatID,
		"SQLITE_PATH":          &c.Database.SQLitePath,
		"LOG_LEVEL":            &c.Log.Level,
		"LOG_FORMAT":           &c.Log.Format,
		"HTTPS_PROXY":          &c.Proxy,
	}
	for key, dst := range str {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	floats := map[string]*float64{
		"BUY_THRESHOLD":  &c.Strategy.BuyThreshold,
		"SELL_THRESHOLD": &c.Strategy.SellThreshold,
	}
	for key, dst := range floats {
		if v := os.Getenv(key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = f
		}
	}

	if v := os.Getenv("CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CACHE_TTL: %w", err)
		}
		c.Cache.TTL = d
	}
	if v := os.Getenv("TRACING_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TRACING_ENABLED: %w", err)
		}
		c.Tracing.Enabled = b
	}
	if v := os.Getenv("RUN_ON_START"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("RUN_ON_START: %w", err)
		}
		c.Schedule.RunOnStart = b
	}
	if v := os.Getenv("WATCHLIST"); v != "" {
		c.Schedule.Watchlist = SplitSymbols(v)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":5002"
	}
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "yahoo"
	}
	if c.DataSource.Period == "" {
		c.DataSource.Period = "5d"
	}
	if c.DataSource.Interval == "" {
		c.DataSource.Interval = "15m"
	}
	if c.DataSource.Timeout == 0 {
		c.DataSource.Timeout = 15 * time.Second
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 60 * time.Second
	}
	if c.Schedule.RankCron == "" {
		c.Schedule.RankCron = "0 */15 9-16 * * 1-5"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/stockpulse.db"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

// Validate checks that the configuration is consistent.
func (c *Config) Validate() error {
	if err := c.Thresholds().Validate(); err != nil {
		return fmt.Errorf("strategy: %w", err)
	}
	switch c.DataSource.Provider {
	case "yahoo", "mock":
	case "rest":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the rest provider")
		}
	default:
		return fmt.Errorf("unknown data_source.provider %q", c.DataSource.Provider)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	if len(c.Schedule.Watchlist) > 0 && c.Schedule.RankCron == "" {
		return fmt.Errorf("schedule.rank_cron is required when a watchlist is configured")
	}
	return nil
}

// Thresholds returns the configured recommendation thresholds.
func (c *Config) Thresholds() strategy.Thresholds {
	return strategy.Thresholds{Buy: c.Strategy.BuyThreshold, Sell: c.Strategy.SellThreshold}
}

// TelegramEnabled reports whether Telegram notifications are configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// SplitSymbols splits a comma separated list, trimming blanks.
func SplitSymbols(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
