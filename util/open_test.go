package util

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenerCommand(t *testing.T) {
	tests := []struct {
		goos     string
		wantName string
		wantArgs []string
	}{
		{"linux", "xdg-open", []string{"https://example.com"}},
		{"freebsd", "xdg-open", []string{"https://example.com"}},
		{"darwin", "open", []string{"https://example.com"}},
		{"windows", "rundll32", []string{"url.dll,FileProtocolHandler", "https://example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			name, args := openerCommand(tt.goos, "https://example.com")
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestURLOpenerOpen(t *testing.T) {
	var started []*exec.Cmd
	orig := startCommand
	startCommand = func(cmd *exec.Cmd) error {
		started = append(started, cmd)
		return nil
	}
	defer func() { startCommand = orig }()

	require.NoError(t, URLOpener{}.Open("  https://example.com/page  "))
	require.Len(t, started, 1)
	assert.Equal(t, "https://example.com/page", started[0].Args[len(started[0].Args)-1])

	assert.Error(t, URLOpener{}.Open("   "))
	assert.Len(t, started, 1)
}
