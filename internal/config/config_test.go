package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smendez/searchgram/internal/config"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := config.FromEnv()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 3, cfg.MaxN)
	assert.Equal(t, 2, cfg.MinSupport)
	assert.InDelta(t, 1, cfg.MinWasteCost, 1e-9)
	assert.Equal(t, 3, cfg.MinWasteClicks)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "3")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("NGRAM_MAX_N", "2")
	t.Setenv("NGRAM_MIN_SUPPORT", "5")
	t.Setenv("MIN_WASTE_COST", "2.5")
	t.Setenv("ADS_API_URL", "http://ads.local/report")

	cfg := config.FromEnv()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 2, cfg.MaxN)
	assert.Equal(t, 5, cfg.MinSupport)
	assert.InDelta(t, 2.5, cfg.MinWasteCost, 1e-9)
	assert.Equal(t, "http://ads.local/report", cfg.AdsURL)
}

func TestLoadBrands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brands.yaml")
	require.NoError(t, os.WriteFile(path, []byte("brands:\n  - sofacentro\n  - sofa centro\n"), 0o600))

	brands, err := config.LoadBrands(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"sofacentro", "sofa centro"}, brands)
}

func TestLoadBrandsMissingFile(t *testing.T) {
	brands, err := config.LoadBrands(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Nil(t, brands)

	brands, err = config.LoadBrands("")
	require.NoError(t, err)
	assert.Nil(t, brands)
}

func TestLoadBrandsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brands.yaml")
	require.NoError(t, os.WriteFile(path, []byte("brands: {not: a list"), 0o600))

	_, err := config.LoadBrands(path)
	assert.Error(t, err)
}
