package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "./ramadan.db", cfg.Database.Path)
	assert.Equal(t, WriteModeIncrement, cfg.Completion.WriteMode)
	assert.Equal(t, 15*time.Second, cfg.DatastoreTimeout())
	assert.Equal(t, 100, cfg.Leaderboard.Limit)
}

func TestLoadReadsConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	yaml := []byte("database:\n  driver: memory\ncompletion:\n  write_mode: transactional\ndatastore:\n  timeout: 20\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))
	t.Setenv("RAMADAN_SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, WriteModeTransactional, cfg.Completion.WriteMode)
	assert.Equal(t, 20*time.Second, cfg.DatastoreTimeout())
	assert.Equal(t, "9090", cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Database:    DatabaseConfig{Driver: DriverSQLite},
			Datastore:   DatastoreConfig{Timeout: 15},
			Completion:  CompletionConfig{WriteMode: WriteModeIncrement},
			Leaderboard: LeaderboardConfig{Limit: 10},
		}
	}

	cfg := valid()
	assert.NoError(t, cfg.Validate())

	cfg = valid()
	cfg.Database.Driver = "mongo"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Database.Driver = DriverPostgres
	assert.Error(t, cfg.Validate(), "postgres needs a url")
	cfg.Database.URL = "postgres://localhost/ramadan"
	assert.NoError(t, cfg.Validate())

	cfg = valid()
	cfg.Completion.WriteMode = "append"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Datastore.Timeout = 0
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Datastore.Timeout = 301
	assert.Error(t, cfg.Validate())
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
