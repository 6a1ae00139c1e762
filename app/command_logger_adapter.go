package app

import (
	"os/exec"
	"path/filepath"

	"mdviewer/ui"
)

// CommandLoggerAdapter records launched commands in the command log pane.
type CommandLoggerAdapter struct {
	logPane *ui.LogPane
}

func NewCommandLoggerAdapter(logPane *ui.LogPane) *CommandLoggerAdapter {
	return &CommandLoggerAdapter{logPane: logPane}
}

// LogCommand implements log.CommandLogger.
func (a *CommandLoggerAdapter) LogCommand(cmd *exec.Cmd, source string) {
	if a.logPane == nil || cmd == nil || len(cmd.Args) == 0 {
		return
	}
	a.logPane.AddLog(filepath.Base(cmd.Args[0]), cmd.Args[1:], cmd.Dir, source)
}
