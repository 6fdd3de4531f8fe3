package core

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	ResetPaths()
	t.Cleanup(ResetPaths)

	assert.Equal(t, filepath.Join(home, ".shcopilot", "shcopilot.log"), LogFile())
	assert.DirExists(t, filepath.Join(home, ".shcopilot"))
	assert.Equal(t, filepath.Join(home, ".shcopilot", "history.db"), HistoryFile())
	assert.Equal(t, filepath.Join(home, ".config", "shcopilot.yaml"), ConfigFile())
	assert.Equal(t, filepath.Join(home, ".config", "shcopilot.env"), EnvFile())
}
