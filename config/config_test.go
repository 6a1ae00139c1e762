package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "cfg"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(tmp, "data"))
	return tmp
}

func TestLoadConfigCreatesDefaultWhenMissing(t *testing.T) {
	tmp := isolate(t)

	cfg := LoadConfig()
	assert.Equal(t, DefaultConfig(), cfg)

	_, err := os.Stat(ConfigPath())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmp, "cfg", "mdviewer", "config.toml"), ConfigPath())
	assert.Equal(t, filepath.Join(tmp, "data", "mdviewer", "library.json"), LibraryPath())
	assert.Equal(t, filepath.Join(tmp, "data", "mdviewer", "storage"), StorageDir())
}

func TestLoadConfigMergesDefaults(t *testing.T) {
	isolate(t)
	require.NoError(t, os.MkdirAll(GetConfigDir(), 0o755))
	require.NoError(t, os.WriteFile(ConfigPath(), []byte("theme = \"light\"\nparser = \"lines\"\n"), 0o644))

	cfg := LoadConfig()
	assert.Equal(t, "light", cfg.Theme)
	assert.Equal(t, "lines", cfg.Parser)
	assert.True(t, cfg.ExtendedImages)
	assert.Equal(t, "zip", cfg.ArchiveFormat)
	assert.Equal(t, 60, cfg.ImageMaxWidth)
}

func TestLoadConfigNormalizesInvalidValues(t *testing.T) {
	isolate(t)
	require.NoError(t, os.MkdirAll(GetConfigDir(), 0o755))
	body := "theme = \"neon\"\nosc8 = \"ON\"\narchive_format = \"rar\"\nimage_max_width = -3\nextended_images = false\n"
	require.NoError(t, os.WriteFile(ConfigPath(), []byte(body), 0o644))

	cfg := LoadConfig()
	assert.Equal(t, "dark", cfg.Theme)
	assert.Equal(t, "on", cfg.OSC8)
	assert.Equal(t, "zip", cfg.ArchiveFormat)
	assert.Equal(t, 60, cfg.ImageMaxWidth)
	assert.False(t, cfg.ExtendedImages)
}

func TestLoadConfigMalformed(t *testing.T) {
	isolate(t)
	require.NoError(t, os.MkdirAll(GetConfigDir(), 0o755))
	require.NoError(t, os.WriteFile(ConfigPath(), []byte("theme = = ="), 0o644))

	assert.Equal(t, DefaultConfig(), LoadConfig())
}

func TestSaveConfigRoundTrip(t *testing.T) {
	isolate(t)
	cfg := DefaultConfig()
	cfg.Theme = "light"
	cfg.ArchiveFormat = "tar.xz"
	require.NoError(t, SaveConfig(cfg))
	assert.Equal(t, cfg, LoadConfig())
}

func TestExpandPath(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	got, err := ExpandPath("~/a/b")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmp, "a", "b"), got)

	got, err = ExpandPath("/abs")
	require.NoError(t, err)
	assert.Equal(t, "/abs", got)
}
