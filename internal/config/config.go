package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Addr    string `yaml:"addr"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"server"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Session struct {
		HashKey  string `yaml:"hash_key"`
		BlockKey string `yaml:"block_key"`
	} `yaml:"session"`

	Redis struct {
		Address         string `yaml:"address"`
		Password        string `yaml:"password"`
		DB              int    `yaml:"db"`
		CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	} `yaml:"redis"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Booking struct {
		MaxAdvanceDays    int     `yaml:"max_advance_days"`
		SubmitRatePerSec  float64 `yaml:"submit_rate_per_sec"`
		SubmitBurst       int     `yaml:"submit_burst"`
	} `yaml:"booking"`

	Backup struct {
		Enabled       bool   `yaml:"enabled"`
		IntervalHours int    `yaml:"interval_hours"`
		Path          string `yaml:"path"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"backup"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/slotbook.db"
	}

	if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MaxAdvanceDays returns how many days ahead the day picker reaches.
func (c *Config) MaxAdvanceDays() int {
	if c.Booking.MaxAdvanceDays <= 0 {
		return 30
	}
	return c.Booking.MaxAdvanceDays
}

// CacheTTL returns the Redis cache TTL, zero when caching is disabled.
func (c *Config) CacheTTL() time.Duration {
	if c.Redis.Address == "" || c.Redis.CacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Redis.CacheTTLSeconds) * time.Second
}

// SubmitRate returns the public submission rate limit settings.
func (c *Config) SubmitRate() (perSec float64, burst int) {
	perSec = c.Booking.SubmitRatePerSec
	if perSec <= 0 {
		perSec = 1
	}
	burst = c.Booking.SubmitBurst
	if burst <= 0 {
		burst = 5
	}
	return perSec, burst
}
