package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmurley/afl-trade-bot/internal/recommender"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"HTTP_PORT", "CORS_ORIGINS", "LOG_LEVEL", "LOG_PRETTY", "DATA_DIR", "TEAM_STORE",
		"PLAYER_POOL_SOURCE", "CACHE_DURATION_MINUTES", "THRESHOLDS_FILE",
		"DEFAULT_MAX_ROOKIE_PRICE", "ARCHIVE_S3_BUCKET", "ARCHIVE_SCHEDULE",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.LogPretty)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, "json", cfg.TeamStore)
	assert.Equal(t, 5*time.Minute, cfg.CacheDuration)
	assert.Equal(t, "@every 30m", cfg.PoolRefreshSchedule)
	assert.Equal(t, 300000, cfg.DefaultMaxRookiePrice)
	assert.Equal(t, "!", cfg.CommandPrefix)
	assert.Equal(t, recommender.DefaultThresholds(), cfg.Thresholds)
	assert.False(t, cfg.Archive.Enabled())
	assert.Equal(t, "@daily", cfg.Archive.Schedule)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000, https://afl.example.com ,")
	t.Setenv("LOG_PRETTY", "true")
	t.Setenv("TEAM_STORE", "SQLite")
	t.Setenv("CACHE_DURATION_MINUTES", "15")
	t.Setenv("DEFAULT_MAX_ROOKIE_PRICE", "350000")
	t.Setenv("ARCHIVE_S3_BUCKET", "afl-history")
	t.Setenv("THRESHOLDS_FILE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, []string{"http://localhost:3000", "https://afl.example.com"}, cfg.CORSOrigins)
	assert.True(t, cfg.LogPretty)
	assert.Equal(t, "sqlite", cfg.TeamStore)
	assert.Equal(t, 15*time.Minute, cfg.CacheDuration)
	assert.Equal(t, 350000, cfg.DefaultMaxRookiePrice)
	assert.True(t, cfg.Archive.Enabled())
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("THRESHOLDS_FILE", "")

	t.Run("team store", func(t *testing.T) {
		t.Setenv("TEAM_STORE", "postgres")
		_, err := Load()
		assert.ErrorContains(t, err, "TEAM_STORE")
	})

	t.Run("rookie price", func(t *testing.T) {
		t.Setenv("TEAM_STORE", "")
		t.Setenv("DEFAULT_MAX_ROOKIE_PRICE", "cheap")
		_, err := Load()
		assert.ErrorContains(t, err, "DEFAULT_MAX_ROOKIE_PRICE")
	})
}

func TestLoadThresholds(t *testing.T) {
	dir := t.TempDir()

	t.Run("empty path", func(t *testing.T) {
		th, err := LoadThresholds("")
		require.NoError(t, err)
		assert.Equal(t, recommender.DefaultThresholds(), th)
	})

	t.Run("partial override", func(t *testing.T) {
		path := filepath.Join(dir, "thresholds.toml")
		require.NoError(t, os.WriteFile(path, []byte("min_cash_freed = 120000\nmax_results = 5\n"), 0644))

		th, err := LoadThresholds(path)
		require.NoError(t, err)
		assert.Equal(t, 120000, th.MinCashFreed)
		assert.Equal(t, 5, th.MaxResults)
		assert.Equal(t, 800000, th.UpgradeMinPrice)
	})

	t.Run("invalid values", func(t *testing.T) {
		path := filepath.Join(dir, "bad.toml")
		require.NoError(t, os.WriteFile(path, []byte("max_results = 0\n"), 0644))

		_, err := LoadThresholds(path)
		assert.ErrorContains(t, err, "max_results")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadThresholds(filepath.Join(dir, "missing.toml"))
		assert.Error(t, err)
	})
}
