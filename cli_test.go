package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintShortcuts(t *testing.T) {
	dir := t.TempDir()
	sc := filepath.Join(dir, "shortcuts")
	require.NoError(t, os.MkdirAll(sc, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sc, "b.desktop"),
		[]byte("[Desktop Entry]\nName=Terminal\nExec=xterm -e htop\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(sc, "a.desktop"),
		[]byte("[Desktop Entry]\nName=Browser\nExec=firefox %u\n"), 0o644))
	t.Setenv("LC_ALL", "C")

	var out bytes.Buffer
	require.Equal(t, 0, printShortcuts(&out, dir))

	text := out.String()
	assert.Regexp(t, `(?m)^0\s+Browser\s+firefox\s+default$`, text)
	assert.Contains(t, text, "xterm -e htop")
	assert.Less(t, bytes.Index(out.Bytes(), []byte("Browser")), bytes.Index(out.Bytes(), []byte("Terminal")))
}

func TestPrintShortcutsMissingDir(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, 1, printShortcuts(&out, t.TempDir()))
	assert.Contains(t, out.String(), "Error:")
}

func TestPrintConfig(t *testing.T) {
	for _, k := range []string{"AEONIUM_TIMEOUT", "AEONIUM_SEAT", "AEONIUM_RENDERER"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	t.Setenv("PATH", t.TempDir())
	dir := t.TempDir()

	var out bytes.Buffer
	require.Equal(t, 0, printConfig(&out, dir))
	assert.Contains(t, out.String(), `"timeout": 1000`)
	assert.Contains(t, out.String(), "# renderer: renderer binary not found")
	assert.FileExists(t, filepath.Join(dir, "config.json"))
}

func TestResolveConfigDir(t *testing.T) {
	t.Cleanup(xdg.Reload)
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	xdg.Reload()
	dir, err := resolveConfigDir("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/xdg/aeonium-menu", dir)

	dir, err = resolveConfigDir("relative")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(dir))
}
