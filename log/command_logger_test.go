package log

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogExecCommand(t *testing.T) {
	var got []string
	SetCommandLogger(CommandLoggerFunc(func(cmd *exec.Cmd, source string) {
		got = append(got, source+":"+cmd.Args[len(cmd.Args)-1])
	}))
	defer SetCommandLogger(nil)

	LogExecCommand(exec.Command("xdg-open", "https://example.com"), "test")
	assert.Equal(t, []string{"test:https://example.com"}, got)

	SetCommandLogger(nil)
	LogExecCommand(exec.Command("xdg-open", "https://other"), "test")
	assert.Len(t, got, 1)
}
