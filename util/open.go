package util

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// openerCommand returns the program and arguments that hand target to the
// platform's default handler.
func openerCommand(goos, target string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{target}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", target}
	default:
		return "xdg-open", []string{target}
	}
}

// startCommand is swapped out in tests.
var startCommand = func(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	// Reap the child in the background so it does not linger as a zombie.
	go func() { _ = cmd.Wait() }()
	return nil
}

// URLOpener opens URLs and files in the system's default external handler.
type URLOpener struct{}

// Open launches the default handler for target without waiting for it.
func (URLOpener) Open(target string) error {
	target = strings.TrimSpace(target)
	if target == "" {
		return fmt.Errorf("cannot open empty target")
	}
	name, args := openerCommand(runtime.GOOS, target)
	cmd := Command("util.URLOpener", name, args...)
	if err := startCommand(cmd); err != nil {
		return fmt.Errorf("failed to open %s: %w", target, err)
	}
	return nil
}
