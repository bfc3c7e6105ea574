package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	Riot     RiotConfig     `yaml:"riot"`
	Cache    CacheConfig    `yaml:"cache"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type AppConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type RiotConfig struct {
	APIKey string `yaml:"api_key"`
	// Region routes account/match endpoints (americas, europe, asia).
	Region string `yaml:"region"`
	// Platform routes mastery/league/spectator endpoints (na1, euw1, ...).
	Platform string `yaml:"platform"`
	// QuotaProfile selects the rate-limit tier: "personal" or "production".
	QuotaProfile string `yaml:"quota_profile"`
}

type CacheConfig struct {
	MaxEntries    int           `yaml:"max_entries"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
	TTL           TTLConfig     `yaml:"ttl"`
}

// TTLConfig holds per-category cache lifetimes, keyed to payload
// volatility: static reference data barely changes, completed matches
// are immutable, identity/rank move on a minutes scale, live games on
// a seconds scale.
type TTLConfig struct {
	Static      time.Duration `yaml:"static"`
	Identity    time.Duration `yaml:"identity"`
	MatchDetail time.Duration `yaml:"match_detail"`
	LiveGame    time.Duration `yaml:"live_game"`
}

type PipelineConfig struct {
	MatchCount int `yaml:"match_count"`
	Workers    int `yaml:"workers"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
	MaxAge int    `yaml:"max_age"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:    "rift-insights",
			Version: "0.1.0",
		},
		Riot: RiotConfig{
			Region:       "americas",
			Platform:     "na1",
			QuotaProfile: "personal",
		},
		Cache: CacheConfig{
			MaxEntries:    2000,
			SweepInterval: 5 * time.Minute,
			TTL: TTLConfig{
				Static:      24 * time.Hour,
				Identity:    15 * time.Minute,
				MatchDetail: time.Hour,
				LiveGame:    30 * time.Second,
			},
		},
		Pipeline: PipelineConfig{
			MatchCount: 20,
			Workers:    5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
	}
}

// Load reads a YAML config file, applies env overrides and validates.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("RIOT_API_KEY"); v != "" {
		c.Riot.APIKey = strings.TrimSpace(v)
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = strings.TrimSpace(v)
	}
	if v := os.Getenv("RIOT_REGION"); v != "" {
		c.Riot.Region = strings.TrimSpace(v)
	}
	if v := os.Getenv("RIOT_PLATFORM"); v != "" {
		c.Riot.Platform = strings.TrimSpace(v)
	}
}

func validate(cfg *Config) error {
	switch cfg.Riot.QuotaProfile {
	case "personal", "production":
	default:
		return fmt.Errorf("riot.quota_profile must be 'personal' or 'production', got '%s'", cfg.Riot.QuotaProfile)
	}

	if cfg.Cache.MaxEntries <= 0 {
		return fmt.Errorf("cache.max_entries must be greater than 0")
	}
	if cfg.Cache.SweepInterval <= 0 {
		return fmt.Errorf("cache.sweep_interval must be greater than 0")
	}
	for name, ttl := range map[string]time.Duration{
		"static":       cfg.Cache.TTL.Static,
		"identity":     cfg.Cache.TTL.Identity,
		"match_detail": cfg.Cache.TTL.MatchDetail,
		"live_game":    cfg.Cache.TTL.LiveGame,
	} {
		if ttl <= 0 {
			return fmt.Errorf("cache.ttl.%s must be greater than 0", name)
		}
	}

	if cfg.Pipeline.MatchCount <= 0 {
		return fmt.Errorf("pipeline.match_count must be greater than 0")
	}
	if cfg.Pipeline.Workers <= 0 {
		return fmt.Errorf("pipeline.workers must be greater than 0")
	}

	return nil
}
