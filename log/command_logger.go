package log

import (
	"os/exec"
	"sync"
)

// CommandLogger is told about every external command the viewer launches,
// such as the system opener for a clicked link.
type CommandLogger interface {
	LogCommand(cmd *exec.Cmd, source string)
}

// CommandLoggerFunc adapts a function to CommandLogger.
type CommandLoggerFunc func(cmd *exec.Cmd, source string)

func (f CommandLoggerFunc) LogCommand(cmd *exec.Cmd, source string) { f(cmd, source) }

var (
	commandLogger CommandLogger
	loggerMu      sync.RWMutex
)

// SetCommandLogger installs the process-wide command logger. nil removes it.
func SetCommandLogger(logger CommandLogger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	commandLogger = logger
}

// LogExecCommand reports cmd to the command logger and the info log.
func LogExecCommand(cmd *exec.Cmd, source string) {
	InfoLog.Printf("%s: exec %v", source, cmd.Args)

	loggerMu.RLock()
	logger := commandLogger
	loggerMu.RUnlock()

	if logger != nil {
		logger.LogCommand(cmd, source)
	}
}
