// Package config provides configuration management for ARGUS.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/argussky/argus/internal/api/gateway"
	"github.com/argussky/argus/internal/classify"
	"github.com/argussky/argus/internal/collect"
	"github.com/argussky/argus/internal/pipeline"
)

// Config holds all ARGUS configuration.
type Config struct {
	Server     ServerConfig            `yaml:"server"`
	Redis      RedisConfig             `yaml:"redis"`
	AI         AIConfig                `yaml:"ai"`
	Collectors CollectorsConfig        `yaml:"collectors"`
	Pipeline   pipeline.Config         `yaml:"pipeline"`
	Scheduler  SchedulerConfig         `yaml:"scheduler"`
	Simulator  SimulatorConfig         `yaml:"simulator"`
	Broadcast  BroadcastConfig         `yaml:"broadcast"`
	RateLimit  gateway.RateLimitConfig `yaml:"rate_limit"`
	Logging    LoggingConfig           `yaml:"logging"`
	Metrics    MetricsConfig           `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// RedisConfig holds Redis connection settings for the rate limiter.
type RedisConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Addr        string `yaml:"addr"`
	PasswordEnv string `yaml:"password_env"`
	DB          int    `yaml:"db"`
	PoolSize    int    `yaml:"pool_size"`
}

// Password resolves the Redis password from the environment.
func (c RedisConfig) Password() string {
	if c.PasswordEnv == "" {
		return ""
	}
	return os.Getenv(c.PasswordEnv)
}

// AIConfig holds the model backend settings.
type AIConfig struct {
	Enabled   bool                     `yaml:"enabled"`
	Anthropic classify.AnthropicConfig `yaml:"anthropic"`
}

// CollectorsConfig holds the per-source collection settings.
type CollectorsConfig struct {
	NewsAPI   SourceConfig          `yaml:"newsapi"`
	GDELT     GDELTSourceConfig     `yaml:"gdelt"`
	AbuseIPDB AbuseIPDBSourceConfig `yaml:"abuseipdb"`
	Fallback  FallbackSourceConfig  `yaml:"fallback"`
}

// SourceConfig wraps the NewsAPI collector settings with an enable switch.
type SourceConfig struct {
	Enabled bool                  `yaml:"enabled"`
	NewsAPI collect.NewsAPIConfig `yaml:",inline"`
}

// GDELTSourceConfig wraps the GDELT collector settings.
type GDELTSourceConfig struct {
	Enabled bool                `yaml:"enabled"`
	GDELT   collect.GDELTConfig `yaml:",inline"`
}

// AbuseIPDBSourceConfig wraps the AbuseIPDB collector settings.
type AbuseIPDBSourceConfig struct {
	Enabled   bool                    `yaml:"enabled"`
	AbuseIPDB collect.AbuseIPDBConfig `yaml:",inline"`
}

// FallbackSourceConfig controls the simulated fallback batch.
type FallbackSourceConfig struct {
	Enabled bool `yaml:"enabled"`
}

// SchedulerConfig controls the periodic background run.
type SchedulerConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

// SimulatorConfig controls the CCTV simulator.
type SimulatorConfig struct {
	AutoStart   bool          `yaml:"auto_start"`
	Interval    time.Duration `yaml:"interval"`
	Probability float64       `yaml:"probability"`
}

// BroadcastConfig controls the SSE fan-out.
type BroadcastConfig struct {
	Heartbeat time.Duration `yaml:"heartbeat"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load reads configuration from a YAML file, layered over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    0, // SSE endpoints hold connections open
			ShutdownTimeout: 10 * time.Second,
		},
		Redis: RedisConfig{
			Enabled:     false,
			Addr:        "localhost:6379",
			PasswordEnv: "REDIS_PASSWORD",
			DB:          0,
			PoolSize:    10,
		},
		AI: AIConfig{
			Enabled:   true,
			Anthropic: classify.DefaultAnthropicConfig(),
		},
		Collectors: CollectorsConfig{
			NewsAPI: SourceConfig{
				Enabled: true,
				NewsAPI: collect.NewsAPIConfig{
					APIKeyEnv: "NEWS_API_KEY",
					PageSize:  10,
					Timeout:   15 * time.Second,
				},
			},
			GDELT: GDELTSourceConfig{
				Enabled: true,
				GDELT: collect.GDELTConfig{
					MaxRecords: 10,
					Timeout:    15 * time.Second,
				},
			},
			AbuseIPDB: AbuseIPDBSourceConfig{
				Enabled: true,
				AbuseIPDB: collect.AbuseIPDBConfig{
					APIKeyEnv: "ABUSEIPDB_API_KEY",
					Timeout:   15 * time.Second,
				},
			},
			Fallback: FallbackSourceConfig{Enabled: true},
		},
		Pipeline: pipeline.DefaultConfig(),
		Scheduler: SchedulerConfig{
			Enabled:  true,
			Interval: time.Hour,
		},
		Simulator: SimulatorConfig{
			AutoStart:   true,
			Interval:    30 * time.Second,
			Probability: 0.4,
		},
		Broadcast: BroadcastConfig{
			Heartbeat: 30 * time.Second,
		},
		RateLimit: gateway.RateLimitConfig{
			Enabled:           false,
			RequestsPerMinute: 60,
			IncludeHeaders:    true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{Enabled: true},
	}
}
