package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chessmatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 50000, cfg.Matching.CandidateCap)
	assert.Equal(t, 10, cfg.Matching.OverfetchFactor)
	assert.Equal(t, "localhost:8080", cfg.Addr())
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
storage:
  driver: memory
matching:
  candidate_cap: 1000
cache:
  fen_entries: 16
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, 1000, cfg.Matching.CandidateCap)
	assert.Equal(t, 10, cfg.Matching.OverfetchFactor, "unset fields keep defaults")
	assert.Equal(t, 16, cfg.Cache.FENEntries)
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Storage, cfg.Storage)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "server: [not, a, map]"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "storage:\n  driver: mongo\n"))
	assert.ErrorContains(t, err, "unknown storage driver")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CHESSMATCH_STORAGE_DRIVER", "postgres")
	t.Setenv("CHESSMATCH_STORAGE_DSN", "postgres://localhost/chess")
	t.Setenv("CHESSMATCH_SERVER_PORT", "7000")
	t.Setenv("CHESSMATCH_SEARCH_LOG", "false")

	cfg, err := Load(writeConfig(t, "storage:\n  driver: sqlite\n"))
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, "postgres://localhost/chess", cfg.Storage.DSN)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.False(t, cfg.SearchLog.Enabled)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"postgres without dsn", func(c *Config) { c.Storage.Driver = DriverPostgres }, "storage.dsn"},
		{"sqlite without path", func(c *Config) { c.Storage.Path = "" }, "storage.path"},
		{"zero cap", func(c *Config) { c.Matching.CandidateCap = 0 }, "candidate_cap"},
		{"negative overfetch", func(c *Config) { c.Matching.OverfetchFactor = -1 }, "overfetch_factor"},
		{"limit above max", func(c *Config) { c.Matching.DefaultLimit = 500 }, "default_limit"},
		{"inverted elo band", func(c *Config) { c.Matching.DefaultMinElo = 3000 }, "default_min_elo"},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"negative cache", func(c *Config) { c.Cache.FENEntries = -1 }, "fen_entries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.errMsg)
		})
	}
}

func TestMergeKeepsBaseOnZeroOverride(t *testing.T) {
	base := Default()
	base.Storage.WAL = true

	result := merge(base, Config{})
	assert.Equal(t, base, result)
}
