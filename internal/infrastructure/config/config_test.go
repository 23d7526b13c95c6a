package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetDefaults_FillsEverySection(t *testing.T) {
	cfg := &Config{}

	SetDefaults(cfg)

	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "https://esi.evetech.net/latest", cfg.ESI.BaseURL)
	assert.Equal(t, 30*time.Minute, cfg.Sync.Interval)
	assert.Equal(t, 4, cfg.Sync.PlanetConcurrency)
	assert.Equal(t, "sell", cfg.Economics.DefaultPriceSource)
	assert.InDelta(t, 0.10, cfg.Economics.ExportTaxRate, 1e-9)
	assert.InDelta(t, 0.05, cfg.Economics.ImportTaxRate, 1e-9)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	require.NoError(t, ValidateConfig(cfg))
}

func TestValidateConfig_RejectsUnknownPriceSource(t *testing.T) {
	cfg := &Config{}
	SetDefaults(cfg)
	cfg.Economics.DefaultPriceSource = "median"

	err := ValidateConfig(cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "price_source")
}

func TestValidateConfig_RejectsExcessiveConcurrency(t *testing.T) {
	cfg := &Config{}
	SetDefaults(cfg)
	cfg.Sync.PlanetConcurrency = 100

	assert.Error(t, ValidateConfig(cfg))
}

func TestLoadConfig_ReadsYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
database:
  type: sqlite
  path: ":memory:"
sync:
  interval: 5m
  planet_concurrency: 8
economics:
  default_price_source: split
`)
	require.NoError(t, os.WriteFile(path, content, 0644))

	cfg, err := LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, 5*time.Minute, cfg.Sync.Interval)
	assert.Equal(t, 8, cfg.Sync.PlanetConcurrency)
	assert.Equal(t, "split", cfg.Economics.DefaultPriceSource)
}

func TestLoadConfig_EnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  type: sqlite\n"), 0644))
	t.Setenv("PI_SYNC_PLANET_CONCURRENCY", "2")

	cfg, err := LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Sync.PlanetConcurrency)
}

func TestUserConfigHandler_RoundTrip(t *testing.T) {
	handler, err := NewUserConfigHandlerAt(t.TempDir())
	require.NoError(t, err)

	empty, err := handler.Load()
	require.NoError(t, err)
	assert.Nil(t, empty.DefaultUserID)

	require.NoError(t, handler.SetDefaultUser(7))
	require.NoError(t, handler.SetDefaultCharacter(90000001))

	loaded, err := handler.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded.DefaultUserID)
	assert.Equal(t, int64(7), *loaded.DefaultUserID)
	require.NotNil(t, loaded.DefaultCharacterID)
	assert.Equal(t, int64(90000001), *loaded.DefaultCharacterID)

	require.NoError(t, handler.Clear())
	cleared, err := handler.Load()
	require.NoError(t, err)
	assert.Nil(t, cleared.DefaultUserID)
}
