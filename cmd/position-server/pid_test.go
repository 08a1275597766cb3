package main

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagePIDFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.pid")

	cleanup, err := managePIDFile(path, true)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), strings.TrimSpace(string(data)))

	// Our own live PID blocks a second locked instance
	_, err = managePIDFile(path, true)
	assert.Error(t, err)

	cleanup()
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestManagePIDFileCorrupted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.pid")
	require.NoError(t, os.WriteFile(path, []byte("not-a-pid\n"), 0644))

	_, err := managePIDFile(path, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupted")

	// Without locking the file is simply overwritten
	cleanup, err := managePIDFile(path, false)
	require.NoError(t, err)
	cleanup()
}
