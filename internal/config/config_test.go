package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "founderflow.db", cfg.Store.Path)
	assert.Equal(t, "workatastartup.com", cfg.Search.TargetSite)
	assert.Equal(t, 10, cfg.Search.Limit)
	assert.Equal(t, 1.0, cfg.Scrape.RequestsPerSec)
	assert.Equal(t, "Default Template", cfg.Email.Template)
	assert.Equal(t, "America/Los_Angeles", cfg.Email.Timezone)
	assert.Equal(t, 9, cfg.Email.StartHour)
	assert.Equal(t, 13, cfg.Email.EndHour)
	assert.Equal(t, "@every 5m", cfg.Dispatch.Schedule)
	assert.Equal(t, 3, cfg.Dispatch.MaxRetries)
}

func TestLoadOverridesAndFillsGaps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
search:
  limit: 25
email:
  timezone: Europe/Berlin
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Search.Limit)
	assert.Equal(t, "Europe/Berlin", cfg.Email.Timezone)
	// Unstated knobs still get defaults.
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, 9, cfg.Email.StartHour)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestEnsureUserConfigCopiesOnce(t *testing.T) {
	dataDir := t.TempDir()
	defaultPath := filepath.Join(t.TempDir(), "default.yml")
	require.NoError(t, os.WriteFile(defaultPath, []byte("search:\n  limit: 5\n"), 0o644))

	userPath, err := EnsureUserConfig(dataDir, defaultPath)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, "config.yml"), userPath)

	// A user edit survives a second bootstrap.
	require.NoError(t, os.WriteFile(userPath, []byte("search:\n  limit: 99\n"), 0o644))
	again, err := EnsureUserConfig(dataDir, defaultPath)
	require.NoError(t, err)
	assert.Equal(t, userPath, again)

	cfg, err := Load(again)
	require.NoError(t, err)
	assert.Equal(t, 99, cfg.Search.Limit)
}
