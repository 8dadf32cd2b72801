package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.AppEnv)
	assert.True(t, cfg.IsDev())
	assert.False(t, cfg.IsProd())
	assert.Equal(t, "deepseek", cfg.ExtractorProvider)
	assert.Equal(t, "deepseek", cfg.AnalyzerProvider)
	assert.Equal(t, 30*time.Second, cfg.AICallTimeout)
	assert.Equal(t, 120*time.Second, cfg.AIReasoningTimeout)
	assert.True(t, cfg.ScreeningMode)
	assert.Equal(t, 4, cfg.StageWorkers)
	assert.Equal(t, 10, cfg.ProgressEvery)
	assert.Zero(t, cfg.MinScore)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("ANALYZER_PROVIDER", "claude")
	t.Setenv("SCREENING_MODE", "false")
	t.Setenv("STAGE_WORKERS", "8")
	t.Setenv("MIN_SCORE", "6.5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProd())
	assert.Equal(t, "claude", cfg.AnalyzerProvider)
	assert.False(t, cfg.ScreeningMode)
	assert.Equal(t, 8, cfg.StageWorkers)
	assert.Equal(t, 6.5, cfg.MinScore)
}

func TestLoad_RejectsUnknownProvider(t *testing.T) {
	t.Setenv("EXTRACTOR_PROVIDER", "grok")
	_, err := Load()
	require.Error(t, err)
}

func TestLoad_RejectsOutOfRangeMinScore(t *testing.T) {
	t.Setenv("MIN_SCORE", "11")
	_, err := Load()
	require.Error(t, err)
}

func TestGetAIBackoffConfig_TestShortcut(t *testing.T) {
	cfg := Config{AppEnv: "test"}
	maxElapsed, initial, maxInterval, multiplier := cfg.GetAIBackoffConfig()
	assert.Equal(t, 2*time.Second, maxElapsed)
	assert.Equal(t, 50*time.Millisecond, initial)
	assert.Equal(t, 500*time.Millisecond, maxInterval)
	assert.Equal(t, 2.0, multiplier)

	cfg = Config{
		AppEnv:                   "prod",
		AIBackoffMaxElapsedTime:  time.Minute,
		AIBackoffInitialInterval: 2 * time.Second,
		AIBackoffMaxInterval:     20 * time.Second,
		AIBackoffMultiplier:      1.5,
	}
	maxElapsed, initial, _, _ = cfg.GetAIBackoffConfig()
	assert.Equal(t, time.Minute, maxElapsed)
	assert.Equal(t, 2*time.Second, initial)
}
