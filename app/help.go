package app

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"mdviewer/keys"
	"mdviewer/log"
	"mdviewer/ui"
	"mdviewer/ui/overlay"
)

type helpSection struct {
	title string
	names []keys.KeyName
}

var helpSections = []helpSection{
	{"Library", []keys.KeyName{keys.KeyUp, keys.KeyDown, keys.KeyEnter, keys.KeyOpenDir, keys.KeyRemove}},
	{"Reading", []keys.KeyName{
		keys.KeyNextTab, keys.KeyPrevTab, keys.KeyPageUp, keys.KeyPageDown,
		keys.KeyHome, keys.KeyEnd, keys.KeyReload, keys.KeyBack,
	}},
	{"Links", []keys.KeyName{keys.KeyNextLink, keys.KeyPrevLink, keys.KeyEnter, keys.KeyCopyLink}},
	{"Folder", []keys.KeyName{keys.KeySaveFile, keys.KeySaveFolder, keys.KeyInitIndex}},
	{"Other", []keys.KeyName{keys.KeyHelp, keys.KeyErrorLog, keys.KeyCommandLog, keys.KeyEditKeys, keys.KeyQuit}},
}

// helpMarkdown describes the current key bindings.
func helpMarkdown() string {
	var b strings.Builder
	b.WriteString("# mdviewer\n\n")
	b.WriteString("Browse folders of Markdown documents, one tab per document.\n\n")
	for _, s := range helpSections {
		fmt.Fprintf(&b, "## %s\n\n| key | action |\n|---|---|\n", s.title)
		for _, name := range s.names {
			h := keys.Help(name).Help()
			fmt.Fprintf(&b, "| `%s` | %s |\n", h.Key, h.Desc)
		}
		b.WriteString("\n")
	}
	b.WriteString("Click a link to open it or a tab to switch to it. The mouse wheel scrolls.\n")
	return b.String()
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("#7D56F4"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

// showHelpScreen displays the help screen overlay.
func (m *home) showHelpScreen() (tea.Model, tea.Cmd) {
	w, h := m.overlaySize()
	content, err := ui.RenderMarkdownWithStyle(helpMarkdown(), w-6, m.theme.Name)
	if err != nil {
		log.WarningLog.Printf("Failed to render help: %v", err)
	}

	m.textOverlay = overlay.NewTextOverlay(content)
	m.textOverlay.SetSize(w, h)
	m.state = stateHelp
	return m, nil
}

// showErrorLog displays the recorded errors, newest first.
func (m *home) showErrorLog() (tea.Model, tea.Cmd) {
	var content string
	if len(m.errorLog) == 0 {
		content = "No errors have been logged."
	} else {
		lines := []string{titleStyle.Render("Error Log"), "", "Recent errors (newest first):", ""}
		for i := len(m.errorLog) - 1; i >= 0; i-- {
			lines = append(lines, m.errorLog[i])
		}
		lines = append(lines, "", dimStyle.Render("Press any key to close"))
		content = lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	m.textOverlay = overlay.NewTextOverlay(content)
	m.textOverlay.SetSize(m.overlaySize())
	m.state = stateErrorLog
	return m, nil
}
