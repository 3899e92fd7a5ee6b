package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDisabledWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "off.log")
	log, closer, err := New(false, path)
	require.NoError(t, err)
	log.Info("hidden")
	require.NoError(t, closer.Close())

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestNewDebugWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "on.log")
	log, closer, err := New(true, path)
	require.NoError(t, err)
	log.Debug("load done", "endpoints", 3)
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "load done")
	assert.Contains(t, string(data), "endpoints=3")
}

func TestNewBadPath(t *testing.T) {
	_, _, err := New(true, filepath.Join(t.TempDir(), "missing", "dir", "x.log"))
	assert.Error(t, err)
}
