package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 2.5, cfg.Analysis.RiskMultiplier)
	assert.Equal(t, 0.65, cfg.Analysis.AIThreshold)
	assert.Equal(t, 100, cfg.Jobs.CacheCapacity)
	assert.Equal(t, 4096, cfg.Jobs.SyncLimit)
	assert.Equal(t, 50, cfg.GitHub.MaxFiles)
	assert.Equal(t, float64(70), cfg.Ledger.HighRiskThreshold)
}

func TestValidateRejectsBrokenConfigs(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero cache capacity", func(c *Config) { c.Jobs.CacheCapacity = 0 }},
		{"zero workers", func(c *Config) { c.Jobs.Workers = 0 }},
		{"negative risk multiplier", func(c *Config) { c.Analysis.RiskMultiplier = -1 }},
		{"threshold at one", func(c *Config) { c.Analysis.AIThreshold = 1 }},
		{"threshold at zero", func(c *Config) { c.Analysis.AIThreshold = 0 }},
		{"zero fetch concurrency", func(c *Config) { c.GitHub.FetchConcurrency = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"jobs:\n"+
			"  sync_limit: 128\n"+
			"  cache_capacity: 10\n"+
			"analysis:\n"+
			"  risk_multiplier: 3.0\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 128, cfg.Jobs.SyncLimit)
	assert.Equal(t, 10, cfg.Jobs.CacheCapacity)
	assert.Equal(t, 3.0, cfg.Analysis.RiskMultiplier)
	// Untouched sections keep their defaults.
	assert.Equal(t, 4, cfg.Jobs.Workers)
	assert.Equal(t, 0.65, cfg.Analysis.AIThreshold)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "ghp_testtoken")
	t.Setenv("OPENAI_API_KEY", "sk-testkey")
	t.Setenv("LEDGER_ENDPOINT", "https://ledger.example")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "ghp_testtoken", cfg.GitHub.Token)
	assert.Equal(t, "sk-testkey", cfg.Predictor.APIKey)
	assert.Equal(t, "https://ledger.example", cfg.Ledger.Endpoint)
	assert.True(t, cfg.Ledger.Enabled)
}
