package ui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"mdviewer/keys"
)

// MenuState selects which bindings the menu advertises.
type MenuState int

const (
	StateLauncher MenuState = iota
	StateViewer
	StatePrompt
)

var (
	launcherOptions = []keys.KeyName{keys.KeyEnter, keys.KeyOpenDir, keys.KeyRemove, keys.KeyHelp, keys.KeyQuit}
	viewerOptions   = []keys.KeyName{
		keys.KeyNextTab, keys.KeyNextLink, keys.KeyEnter, keys.KeyCopyLink, keys.KeyReload,
		keys.KeySaveFile, keys.KeySaveFolder, keys.KeyInitIndex, keys.KeyBack, keys.KeyHelp, keys.KeyQuit,
	}
	promptOptions = []keys.KeyName{keys.KeySubmit}

	menuStyle = lipgloss.NewStyle().Padding(0, 1)
	// keydownStyle flashes the binding that was just pressed.
	keydownStyle = lipgloss.NewStyle().Foreground(highlightColor).Bold(true)
)

// Menu is the key help line at the bottom of the screen.
type Menu struct {
	state   MenuState
	keyDown keys.KeyName
	pressed bool
	width   int
	help    help.Model
}

func NewMenu() *Menu {
	return &Menu{help: help.New()}
}

func (m *Menu) SetState(state MenuState) { m.state = state }

func (m *Menu) SetSize(width, _ int) {
	m.width = width
	m.help.Width = width - menuStyle.GetHorizontalFrameSize()
}

// Keydown highlights name until ClearKeydown.
func (m *Menu) Keydown(name keys.KeyName) {
	m.keyDown = name
	m.pressed = true
}

func (m *Menu) ClearKeydown() { m.pressed = false }

func (m *Menu) options() []keys.KeyName {
	switch m.state {
	case StateViewer:
		return viewerOptions
	case StatePrompt:
		return promptOptions
	default:
		return launcherOptions
	}
}

// bindings returns the advertised bindings, with the pressed one restyled.
func (m *Menu) bindings() []key.Binding {
	var out []key.Binding
	for _, name := range m.options() {
		b := keys.Help(name)
		if !b.Enabled() {
			continue
		}
		if m.pressed && name == m.keyDown {
			h := b.Help()
			b.SetHelp(keydownStyle.Render(h.Key), keydownStyle.Render(h.Desc))
		}
		out = append(out, b)
	}
	return out
}

func (m *Menu) String() string {
	return menuStyle.Render(m.help.ShortHelpView(m.bindings()))
}
