package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	Environment string `toml:"environment"`
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`
	// storage; InMemory keeps sessions in process memory and serves
	// workouts from WorkoutsFile instead of postgres
	InMemory     bool   `toml:"in_memory"`
	WorkoutsFile string `toml:"workouts_file"`
	// postgres
	PostgresHost string `toml:"postgres_host"`
	PostgresPort string `toml:"postgres_port"`
	DBName       string `toml:"db_name"`
	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`
	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`
	// http
	AllowedOrigins  []string `toml:"allowed_origins"`
	RateLimitPerMin int      `toml:"rate_limit_per_min"`
	// sessions
	SweeperInterval Duration `toml:"sweeper_interval"`
	AbandonAfter    Duration `toml:"abandon_after"`
	// workout catalog cache
	CatalogCacheSizeMB     int `toml:"catalog_cache_size_mb"`
	CatalogCacheTTLSeconds int `toml:"catalog_cache_ttl_seconds"`
}

// Duration wraps time.Duration so it can be written as "15m" in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

// Load reads the TOML file at path and returns the section for env, with
// defaults applied to unset values.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file [%s]: %w", path, err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("config for env [%s] not found in [%s]", env, path)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.RateLimitPerMin <= 0 {
		c.RateLimitPerMin = 120
	}
	if c.SweeperInterval.Duration <= 0 {
		c.SweeperInterval.Duration = 15 * time.Minute
	}
	if c.AbandonAfter.Duration <= 0 {
		c.AbandonAfter.Duration = 24 * time.Hour
	}
	if c.CatalogCacheSizeMB <= 0 {
		c.CatalogCacheSizeMB = 10
	}
	if c.CatalogCacheTTLSeconds <= 0 {
		c.CatalogCacheTTLSeconds = 300
	}
}
