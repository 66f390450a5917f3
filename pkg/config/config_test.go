package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 10, cfg.Recommend.DefaultK)
	assert.Equal(t, 50, cfg.Recommend.MaxK)
	assert.InDelta(t, 0.30, cfg.Recommend.FuzzyThreshold, 1e-9)
	assert.Equal(t, 50, cfg.Search.MaxLimit)
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Server.Port, cfg.Server.Port)
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8100
recommend:
  defaultK: 5
  fuzzyThreshold: 0.4
  requestTimeout: 2s
catalog:
  vectorPath: /data/v.mvec
  metadataPath: /data/m.csv
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8100, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Recommend.DefaultK)
	assert.Equal(t, 50, cfg.Recommend.MaxK)
	assert.InDelta(t, 0.4, cfg.Recommend.FuzzyThreshold, 1e-9)
	assert.Equal(t, 2*time.Second, cfg.Recommend.RequestTimeout)
	assert.Equal(t, "/data/v.mvec", cfg.Catalog.VectorPath)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MR_SERVER_PORT", "8200")
	t.Setenv("MR_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("MR_REDIS_ENABLED", "false")
	t.Setenv("MR_RPC_PORT", "9200")
	t.Setenv("MR_LOGGING_LEVEL", "debug")
	t.Setenv("MR_SERVER_RATE_LIMIT", "120")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8200, cfg.Server.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.False(t, cfg.Redis.Enabled)
	assert.True(t, cfg.RPC.Enabled)
	assert.Equal(t, 9200, cfg.RPC.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Server.RateLimit.Enabled)
	assert.Equal(t, 120, cfg.Server.RateLimit.RequestsPerWindow)
	assert.Equal(t, time.Minute, cfg.Server.RateLimit.Window)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "server: [unclosed"))
	assert.Error(t, err)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"defaultK above maxK", func(c *Config) { c.Recommend.DefaultK = 60 }},
		{"zero maxK", func(c *Config) { c.Recommend.MaxK = 0 }},
		{"threshold above one", func(c *Config) { c.Recommend.FuzzyThreshold = 1.5 }},
		{"missing vectors", func(c *Config) { c.Catalog.VectorPath = "" }},
		{"missing metadata", func(c *Config) { c.Catalog.MetadataPath = "" }},
		{"search limit", func(c *Config) { c.Search.DefaultLimit = 0 }},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }},
		{"snapshot interval", func(c *Config) { c.Analytics.SnapshotInterval = 0 }},
		{"rate limit window", func(c *Config) { c.Server.RateLimit.Enabled = true; c.Server.RateLimit.Window = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestPostgresDSN(t *testing.T) {
	dsn := Default().Postgres.DSN()
	assert.Contains(t, dsn, "host=localhost")
	assert.Contains(t, dsn, "dbname=movierec")
	assert.Contains(t, dsn, "sslmode=disable")
}
