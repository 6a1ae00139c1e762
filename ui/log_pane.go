package ui

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
)

// maxCommandLogs bounds the command log.
const maxCommandLogs = 500

// CommandLog is one external command launched by the viewer, typically the
// system opener for a link.
type CommandLog struct {
	Timestamp time.Time
	Command   string
	Args      []string
	Dir       string
	// Source names the component that launched the command.
	Source string
}

func (c CommandLog) key() string {
	return fmt.Sprintf("%s|%s|%s", c.Command, strings.Join(c.Args, " "), c.Dir)
}

var (
	logDimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	logCommandStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	logDirStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	logSourceStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	logCountStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	logModeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
)

// LogPane lists launched commands, newest first. Commands may be added from
// any goroutine.
type LogPane struct {
	mu   sync.Mutex
	logs []CommandLog

	viewport viewport.Model
	// distinct collapses repeated commands into one line with a count.
	distinct bool
	// byCommand sorts by command line instead of time.
	byCommand bool
}

func NewLogPane() *LogPane {
	return &LogPane{viewport: viewport.New(0, 0)}
}

// AddLog records a command.
func (p *LogPane) AddLog(cmd string, args []string, dir string, source string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logs = append(p.logs, CommandLog{
		Timestamp: time.Now(),
		Command:   cmd,
		Args:      args,
		Dir:       dir,
		Source:    source,
	})
	if len(p.logs) > maxCommandLogs {
		p.logs = p.logs[len(p.logs)-maxCommandLogs:]
	}
}

// Len returns the number of recorded commands.
func (p *LogPane) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.logs)
}

func (p *LogPane) SetSize(width, height int) {
	p.viewport.Width = width
	p.viewport.Height = height
}

func (p *LogPane) ScrollUp()   { p.viewport.LineUp(3) }
func (p *LogPane) ScrollDown() { p.viewport.LineDown(3) }
func (p *LogPane) PageUp()     { p.viewport.HalfViewUp() }
func (p *LogPane) PageDown()   { p.viewport.HalfViewDown() }

// ToggleDistinct toggles collapsing repeated commands.
func (p *LogPane) ToggleDistinct() {
	p.distinct = !p.distinct
	p.viewport.GotoTop()
}

// ToggleSort toggles sorting by command.
func (p *LogPane) ToggleSort() {
	p.byCommand = !p.byCommand
	p.viewport.GotoTop()
}

// entries returns the logs to show, with repeat counts.
func (p *LogPane) entries() ([]CommandLog, map[string]int) {
	p.mu.Lock()
	// Appended in order, so reversing gives newest first.
	logs := make([]CommandLog, len(p.logs))
	for i, l := range p.logs {
		logs[len(logs)-1-i] = l
	}
	p.mu.Unlock()

	counts := make(map[string]int)
	for _, l := range logs {
		counts[l.key()]++
	}

	if p.byCommand {
		sort.SliceStable(logs, func(i, j int) bool {
			return logs[i].key() < logs[j].key()
		})
	}
	if p.distinct {
		seen := make(map[string]bool)
		out := logs[:0]
		for _, l := range logs {
			if !seen[l.key()] {
				seen[l.key()] = true
				out = append(out, l)
			}
		}
		logs = out
	}
	return logs, counts
}

func (p *LogPane) renderLogs() string {
	logs, counts := p.entries()
	if len(logs) == 0 {
		return logDimStyle.Render("No commands executed yet")
	}

	var b strings.Builder
	var modes []string
	if p.distinct {
		modes = append(modes, "Distinct")
	}
	if p.byCommand {
		modes = append(modes, "Sorted")
	}
	if len(modes) > 0 {
		b.WriteString(logModeStyle.Render(fmt.Sprintf("[%s Mode - 'u': toggle distinct, 's': toggle sort]", strings.Join(modes, ", "))))
		b.WriteString("\n\n")
	}

	for i, l := range logs {
		cmdLine := logCommandStyle.Render(l.Command)
		if len(l.Args) > 0 {
			cmdLine += " " + strings.Join(l.Args, " ")
		}
		entry := fmt.Sprintf("%s [%s] %s",
			logDimStyle.Render(l.Timestamp.Format("15:04:05")),
			logSourceStyle.Render(l.Source),
			cmdLine,
		)
		if n := counts[l.key()]; p.distinct && n > 1 {
			entry += " " + logCountStyle.Render(fmt.Sprintf("(×%d)", n))
		}
		if l.Dir != "" {
			entry += fmt.Sprintf("\n      %s %s", logDimStyle.Render("in"), logDirStyle.Render(l.Dir))
		}
		b.WriteString(entry)
		if i < len(logs)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (p *LogPane) String() string {
	y := p.viewport.YOffset
	p.viewport.SetContent(p.renderLogs())
	p.viewport.SetYOffset(y)
	return p.viewport.View()
}
