package service

import (
	"context"
	"fmt"

	"chessmatch/internal/config"
	"chessmatch/internal/storage"
	"chessmatch/internal/storage/memory"
	"chessmatch/internal/storage/postgres"
)

// OpenStore connects the configured backend and brings its schema up to date
func OpenStore(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		store, err := storage.NewStore(cfg.Path, cfg.WAL)
		if err != nil {
			return nil, err
		}
		if err := store.InitDB(); err != nil {
			store.Close()
			return nil, err
		}
		return store, nil

	case config.DriverPostgres:
		store, err := postgres.Open(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		if err := store.InitDB(ctx); err != nil {
			store.Close()
			return nil, err
		}
		return store, nil

	case config.DriverMemory:
		return memory.New(), nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// DescribeStorage renders the backend for startup logs without credentials
func DescribeStorage(cfg config.StorageConfig) string {
	switch cfg.Driver {
	case config.DriverSQLite:
		return fmt.Sprintf("sqlite (%s)", cfg.Path)
	case config.DriverPostgres:
		return "postgres"
	default:
		return cfg.Driver
	}
}
