// Package config loads the position server settings from YAML, the
// environment and command-line flags, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Storage drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config captures server, storage, matching and cache settings.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Matching  MatchingConfig  `yaml:"matching"`
	Cache     CacheConfig     `yaml:"cache"`
	SearchLog SearchLogConfig `yaml:"search_log"`
}

// ServerConfig defines the HTTP listener.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	Dev  bool   `yaml:"dev"`
}

// StorageConfig selects the position store backend.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"` // sqlite file
	DSN    string `yaml:"dsn"`  // postgres connection string
	WAL    bool   `yaml:"wal"`
}

// MatchingConfig bounds query cost and sets request defaults.
type MatchingConfig struct {
	CandidateCap    int `yaml:"candidate_cap"`
	OverfetchFactor int `yaml:"overfetch_factor"`
	DefaultLimit    int `yaml:"default_limit"`
	MaxLimit        int `yaml:"max_limit"`
	DefaultMinElo   int `yaml:"default_min_elo"`
	DefaultMaxElo   int `yaml:"default_max_elo"`
}

// CacheConfig sizes the decoded FEN cache, zero disables it.
type CacheConfig struct {
	FENEntries int `yaml:"fen_entries"`
}

type SearchLogConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
		Storage: StorageConfig{
			Driver: DriverSQLite,
			Path:   "positions.db",
		},
		Matching: MatchingConfig{
			CandidateCap:    50000,
			OverfetchFactor: 10,
			DefaultLimit:    20,
			MaxLimit:        100,
			DefaultMinElo:   500,
			DefaultMaxElo:   2500,
		},
		Cache: CacheConfig{
			FENEntries: 1024,
		},
		SearchLog: SearchLogConfig{
			Enabled: true,
		},
	}
}

// Load merges the file at path, if any, over the defaults and applies
// environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		loaded, err := loadFile(path)
		if err != nil {
			return cfg, err
		}
		cfg = merge(cfg, loaded)
	}

	applyEnvOverrides(&cfg)

	return cfg, cfg.Validate()
}

func loadFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %q: %w", path, err)
	}

	return cfg, nil
}

// merge copies every non-zero field of override onto base. Booleans can
// only be switched on from a file.
func merge(base, override Config) Config {
	result := base

	if override.Server.Host != "" {
		result.Server.Host = override.Server.Host
	}
	if override.Server.Port != 0 {
		result.Server.Port = override.Server.Port
	}
	if override.Server.Dev {
		result.Server.Dev = true
	}

	if override.Storage.Driver != "" {
		result.Storage.Driver = override.Storage.Driver
	}
	if override.Storage.Path != "" {
		result.Storage.Path = override.Storage.Path
	}
	if override.Storage.DSN != "" {
		result.Storage.DSN = override.Storage.DSN
	}
	if override.Storage.WAL {
		result.Storage.WAL = true
	}

	m := override.Matching
	if m.CandidateCap != 0 {
		result.Matching.CandidateCap = m.CandidateCap
	}
	if m.OverfetchFactor != 0 {
		result.Matching.OverfetchFactor = m.OverfetchFactor
	}
	if m.DefaultLimit != 0 {
		result.Matching.DefaultLimit = m.DefaultLimit
	}
	if m.MaxLimit != 0 {
		result.Matching.MaxLimit = m.MaxLimit
	}
	if m.DefaultMinElo != 0 {
		result.Matching.DefaultMinElo = m.DefaultMinElo
	}
	if m.DefaultMaxElo != 0 {
		result.Matching.DefaultMaxElo = m.DefaultMaxElo
	}

	if override.Cache.FENEntries != 0 {
		result.Cache.FENEntries = override.Cache.FENEntries
	}

	return result
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("CHESSMATCH_STORAGE_DRIVER")); v != "" {
		cfg.Storage.Driver = v
	}
	if v := strings.TrimSpace(os.Getenv("CHESSMATCH_STORAGE_PATH")); v != "" {
		cfg.Storage.Path = v
	}
	if v := strings.TrimSpace(os.Getenv("CHESSMATCH_STORAGE_DSN")); v != "" {
		cfg.Storage.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv("CHESSMATCH_SERVER_PORT")); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			cfg.Server.Port = port
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESSMATCH_SEARCH_LOG")); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.SearchLog.Enabled = enabled
		}
	}
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for the postgres driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}

	m := c.Matching
	if m.CandidateCap <= 0 {
		return fmt.Errorf("matching.candidate_cap must be positive")
	}
	if m.OverfetchFactor <= 0 {
		return fmt.Errorf("matching.overfetch_factor must be positive")
	}
	if m.DefaultLimit <= 0 || m.MaxLimit < m.DefaultLimit {
		return fmt.Errorf("matching.default_limit must be in [1, max_limit]")
	}
	if m.DefaultMinElo > m.DefaultMaxElo {
		return fmt.Errorf("matching.default_min_elo exceeds default_max_elo")
	}
	if c.Cache.FENEntries < 0 {
		return fmt.Errorf("cache.fen_entries must not be negative")
	}

	return nil
}

// Addr returns the listen address
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
