package config

import (
	"os"
	"testing"
	"time"
)

// writeTempConfig creates a config file and returns its path.
func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "cfg-*.yml")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close temp file: %v", err)
	}
	return f.Name()
}

func TestLoad(t *testing.T) {
	path := writeTempConfig(t, `app:
  name: "test-app"
riot:
  api_key: "RGAPI-test"
  region: "europe"
  platform: "euw1"
  quota_profile: "production"
cache:
  max_entries: 500
  sweep_interval: 1m
  ttl:
    live_game: 10s
pipeline:
  match_count: 40
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.App.Name != "test-app" {
		t.Errorf("unexpected name: %s", cfg.App.Name)
	}
	if cfg.Riot.Region != "europe" || cfg.Riot.Platform != "euw1" {
		t.Errorf("unexpected routing: %s/%s", cfg.Riot.Region, cfg.Riot.Platform)
	}
	if cfg.Cache.MaxEntries != 500 {
		t.Errorf("unexpected max entries: %d", cfg.Cache.MaxEntries)
	}
	// Unspecified fields keep their defaults.
	if cfg.Cache.TTL.Static != 24*time.Hour {
		t.Errorf("static TTL default lost: %v", cfg.Cache.TTL.Static)
	}
	if cfg.Cache.TTL.LiveGame != 10*time.Second {
		t.Errorf("live game TTL override lost: %v", cfg.Cache.TTL.LiveGame)
	}
	if cfg.Pipeline.MatchCount != 40 {
		t.Errorf("unexpected match count: %d", cfg.Pipeline.MatchCount)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeTempConfig(t, `riot:
  api_key: "from-file"
`)
	t.Setenv("RIOT_API_KEY", "from-env")
	t.Setenv("RIOT_REGION", "asia")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Riot.APIKey != "from-env" {
		t.Errorf("env must override file, got %s", cfg.Riot.APIKey)
	}
	if cfg.Riot.Region != "asia" {
		t.Errorf("unexpected region: %s", cfg.Riot.Region)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad quota profile", func(c *Config) { c.Riot.QuotaProfile = "ultra" }},
		{"zero max entries", func(c *Config) { c.Cache.MaxEntries = 0 }},
		{"zero sweep interval", func(c *Config) { c.Cache.SweepInterval = 0 }},
		{"zero ttl", func(c *Config) { c.Cache.TTL.MatchDetail = 0 }},
		{"zero match count", func(c *Config) { c.Pipeline.MatchCount = 0 }},
		{"zero workers", func(c *Config) { c.Pipeline.Workers = 0 }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := Default()
			c.mutate(cfg)
			if err := validate(cfg); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	if err := validate(Default()); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}
