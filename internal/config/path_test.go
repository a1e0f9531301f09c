package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "data"), ExpandPath("~/data"))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, "/absolute/path", ExpandPath("/absolute/path"))
	assert.Equal(t, "", ExpandPath(""))

	t.Setenv("PENNYWISE_TEST_DIR", "/tmp/pw")
	assert.Equal(t, "/tmp/pw/models", ExpandPath("$PENNYWISE_TEST_DIR/models"))
}

func TestDerivedPaths(t *testing.T) {
	assert.Equal(t, filepath.Join("/data", "models"), ModelDir("/data"))
	assert.Equal(t, filepath.Join("/data", "training_history.json"), HistoryPath("/data"))
	assert.Equal(t, filepath.Join("/data", "pennywise.db"), DatabasePath("/data"))
}

func TestDefaultDataDir(t *testing.T) {
	dir := DefaultDataDir()
	assert.NotEmpty(t, dir)
	assert.Contains(t, dir, "pennywise")
}
