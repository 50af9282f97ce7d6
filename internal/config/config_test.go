package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalSentinel/internal/strategy"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "yahoo", cfg.DataSource.Provider)
	assert.Equal(t, "SPX500", cfg.DataSource.Symbol)
	assert.Equal(t, 300, cfg.DataSource.Days)
	assert.Equal(t, 6*time.Hour, cfg.Redis.TTL)
	assert.Equal(t, strategy.DefaultParams(), cfg.Strategy)
	require.NoError(t, cfg.Validate())
	assert.False(t, cfg.TelegramEnabled())
}

func TestLoad_YAMLAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
data_source:
  provider: csv
  csv_path: data/{symbol}.csv
  symbol: QQQ
strategy:
  momentum:
    rsi_smoothing: ewm
  mean_reversion:
    window: 30
    band_k: 2
redis:
  ttl: 30m
`)
	t.Setenv("SYMBOL", "SPY")
	t.Setenv("BAND_K", "1.75")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "csv", cfg.DataSource.Provider)
	assert.Equal(t, "SPY", cfg.DataSource.Symbol)
	assert.Equal(t, "ewm", cfg.Strategy.Momentum.RSISmoothing)
	assert.Equal(t, 14, cfg.Strategy.Momentum.RSIPeriod)
	assert.Equal(t, 30, cfg.Strategy.MeanReversion.Window)
	assert.Equal(t, 1.75, cfg.Strategy.MeanReversion.BandK)
	assert.Equal(t, 30*time.Minute, cfg.Redis.TTL)
	require.NoError(t, cfg.Validate())
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "data_source: [unclosed"))
	assert.ErrorContains(t, err, "parse config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown provider", func(c *Config) { c.DataSource.Provider = "bloomberg" }},
		{"rest without url", func(c *Config) { c.DataSource.Provider = "rest" }},
		{"csv without path", func(c *Config) { c.DataSource.Provider = "csv" }},
		{"half telegram", func(c *Config) { c.Telegram.BotToken = "token" }},
		{"bad strategy", func(c *Config) { c.Strategy.MeanReversion.BandK = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
