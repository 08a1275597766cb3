package service

import (
	"context"
	"testing"

	"chessmatch/internal/config"
	"chessmatch/internal/storage"
	"chessmatch/internal/storage/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	store, err := OpenStore(ctx, config.StorageConfig{Driver: config.DriverMemory})
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, store)

	store, err = OpenStore(ctx, config.StorageConfig{Driver: config.DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	assert.IsType(t, &storage.Store{}, store)
	assert.True(t, store.IsHealthy())
	require.NoError(t, store.Close())

	_, err = OpenStore(ctx, config.StorageConfig{Driver: "mongo"})
	assert.Error(t, err)
}

func TestDescribeStorage(t *testing.T) {
	assert.Equal(t, "sqlite (x.db)", DescribeStorage(config.StorageConfig{Driver: config.DriverSQLite, Path: "x.db"}))
	assert.Equal(t, "postgres", DescribeStorage(config.StorageConfig{Driver: config.DriverPostgres, DSN: "postgres://u:secret@h/db"}))
	assert.Equal(t, "memory", DescribeStorage(config.StorageConfig{Driver: config.DriverMemory}))
}
