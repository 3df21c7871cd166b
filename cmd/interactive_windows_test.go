//go:build windows

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/windows"
)

func TestAddConsoleModeNotConsole(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out.txt"))
	require.NoError(t, err)
	defer f.Close()

	assert.False(t, addConsoleMode(f, windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING))
	assert.NotPanics(t, enableVT)
}
