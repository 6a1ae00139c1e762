package keys

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdviewer/config"
)

func TestDefaultKeyNames(t *testing.T) {
	tests := []struct {
		key      string
		expected KeyName
	}{
		{"k", KeyUp},
		{"down", KeyDown},
		{"n", KeyNextLink},
		{"N", KeyPrevLink},
		{"y", KeyCopyLink},
		{"tab", KeyNextTab},
		{"shift+tab", KeyPrevTab},
		{"esc", KeyBack},
		{"?", KeyHelp},
		{"ctrl+c", KeyQuit},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := GetKeyName(tt.key)
			require.True(t, ok)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, ok := GetKeyName("F13")
	assert.False(t, ok)
}

func TestEveryCommandHasHelp(t *testing.T) {
	for command, name := range commandToKeyName {
		assert.NotEmpty(t, helpTexts[name], command)
		assert.NotEmpty(t, Help(name).Keys(), command)
	}
}

func TestInitializeCustomKeyBindings(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Cleanup(func() { apply(config.DefaultKeyBindings()) })

	require.NoError(t, os.MkdirAll(config.GetConfigDir(), 0o755))
	body := `{"bindings": [{"command": "reload", "keys": ["f5"], "help": "f5"}]}`
	require.NoError(t, os.WriteFile(filepath.Join(config.GetConfigDir(), "keybindings.json"), []byte(body), 0o644))

	require.NoError(t, InitializeCustomKeyBindings())

	name, ok := GetKeyName("f5")
	require.True(t, ok)
	assert.Equal(t, KeyReload, name)
	_, ok = GetKeyName("r")
	assert.False(t, ok)
	assert.Equal(t, "f5", Help(KeyReload).Help().Key)
}
