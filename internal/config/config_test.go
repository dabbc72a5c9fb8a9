package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/fstate/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultDatabaseFile, cfg.DatabaseFile)
	assert.True(t, cfg.EagerHash)
	assert.Equal(t, 1, cfg.HashWorkers)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"hash_workers": 4, "log_level": "info", "ignore": ["*.tmp"]}`), 0o644))

	t.Setenv("FSTATE_LOG_LEVEL", "debug")
	t.Setenv("FSTATE_GENERATIONS", "/var/backups/gen")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.HashWorkers)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/var/backups/gen", cfg.GenerationsDir)
	assert.Equal(t, []string{"*.tmp"}, cfg.Ignore)
}

func TestLoadRejectsBadInput(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{ nope"), 0o644))
	_, err := config.Load(bad)
	assert.Error(t, err)

	t.Setenv("FSTATE_HASH_WORKERS", "many")
	_, err = config.Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := config.Default()
	cfg.HashWorkers = -1
	assert.Error(t, cfg.Validate())

	cfg = config.Default()
	cfg.LogFormat = "xml"
	assert.Error(t, cfg.Validate())

	cfg = config.Default()
	cfg.DatabaseFile = filepath.Join("sub", "db.json")
	assert.Error(t, cfg.Validate())
}

func TestDatabasePath(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, filepath.Join("/mirror", config.DefaultDatabaseFile), cfg.DatabasePath("/mirror"))

	cfg.DatabaseFile = "/var/lib/fstate/db.json"
	assert.Equal(t, "/var/lib/fstate/db.json", cfg.DatabasePath("/mirror"))
}

func TestResolvePathFromEnv(t *testing.T) {
	t.Setenv(config.ConfigEnv, "/etc/fstate.json")
	assert.Equal(t, "/etc/fstate.json", config.ResolvePath())
}
