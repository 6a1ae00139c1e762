package overlay

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"mdviewer/config"
)

type keybindingEditorMode int

const (
	modeList keybindingEditorMode = iota
	modeEditKeys
	modeConfirmSave
)

var (
	editorTitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	editorItemStyle     = lipgloss.NewStyle().Padding(0, 2)
	editorSelectedStyle = lipgloss.NewStyle().Padding(0, 2).Background(lipgloss.Color("62")).Foreground(lipgloss.Color("230"))
	editorWarnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	editorCaptureStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
)

// editorVisibleRows is how many bindings the list shows at once.
const editorVisibleRows = 20

// KeybindingEditorOverlay edits keybindings.json in place. Its own keys are
// fixed so a broken configuration can still be repaired.
type KeybindingEditorOverlay struct {
	// Dismissed is set once the overlay has been closed.
	Dismissed bool
	// Saved is set when the configuration was written to disk.
	Saved bool
	// Err holds the last save error.
	Err error

	config   *config.KeyBindingsConfig
	selected int
	mode     keybindingEditorMode

	editingKeys    []string
	captureNextKey bool
}

// NewKeybindingEditorOverlay edits cfg, which is modified in place.
func NewKeybindingEditorOverlay(cfg *config.KeyBindingsConfig) *KeybindingEditorOverlay {
	return &KeybindingEditorOverlay{config: cfg}
}

// Config returns the configuration being edited.
func (k *KeybindingEditorOverlay) Config() *config.KeyBindingsConfig { return k.config }

// HandleKeyPress returns true when the overlay should be closed.
func (k *KeybindingEditorOverlay) HandleKeyPress(msg tea.KeyMsg) bool {
	switch k.mode {
	case modeEditKeys:
		k.handleEditMode(msg)
	case modeConfirmSave:
		k.handleConfirmMode(msg)
	default:
		k.handleListMode(msg)
	}
	return k.Dismissed
}

func (k *KeybindingEditorOverlay) handleListMode(msg tea.KeyMsg) {
	switch msg.String() {
	case "up", "k":
		if k.selected > 0 {
			k.selected--
		}
	case "down", "j":
		if k.selected < len(k.config.Bindings)-1 {
			k.selected++
		}
	case "enter", "e":
		if len(k.config.Bindings) == 0 {
			return
		}
		k.editingKeys = nil
		k.mode = modeEditKeys
		k.captureNextKey = true
	case "s":
		k.mode = modeConfirmSave
	case "r":
		k.config.Bindings = config.DefaultKeyBindings().Bindings
		k.selected = 0
	case "q", "esc":
		k.Dismissed = true
	}
}

func (k *KeybindingEditorOverlay) handleEditMode(msg tea.KeyMsg) {
	if k.captureNextKey {
		k.captureNextKey = false
		if msg.String() == "esc" && len(k.editingKeys) == 0 {
			k.mode = modeList
			return
		}
		k.editingKeys = append(k.editingKeys, msg.String())
		return
	}

	switch msg.String() {
	case "enter":
		if len(k.editingKeys) > 0 {
			b := &k.config.Bindings[k.selected]
			b.Keys = k.editingKeys
			b.Help = strings.Join(k.editingKeys, "/")
		}
		k.mode = modeList
	case "a":
		k.captureNextKey = true
	case "d":
		if len(k.editingKeys) > 0 {
			k.editingKeys = k.editingKeys[:len(k.editingKeys)-1]
		}
	case "esc":
		k.mode = modeList
	}
}

func (k *KeybindingEditorOverlay) handleConfirmMode(msg tea.KeyMsg) {
	switch msg.String() {
	case "y":
		if err := k.config.Save(); err != nil {
			k.Err = err
			k.mode = modeList
			return
		}
		k.Saved = true
		k.Dismissed = true
	case "n", "esc":
		k.mode = modeList
	}
}

func (k *KeybindingEditorOverlay) Render() string {
	var content string
	switch k.mode {
	case modeEditKeys:
		content = k.renderEdit()
	case modeConfirmSave:
		content = strings.Join([]string{
			editorTitleStyle.Render("Save Changes?"),
			"",
			"Write " + config.KeyBindingsPath() + "?",
			"",
			hintStyle.Render("y:yes  n:no"),
		}, "\n")
	default:
		content = k.renderList()
	}
	return boxStyle.Render(content)
}

func (k *KeybindingEditorOverlay) renderList() string {
	lines := []string{
		editorTitleStyle.Render("Keyboard Configuration"),
		"",
		lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%-14s %-22s", "Command", "Keys")),
		strings.Repeat("─", 40),
	}

	start := 0
	if k.selected >= editorVisibleRows {
		start = k.selected - editorVisibleRows + 1
	}
	for i := start; i < len(k.config.Bindings) && i < start+editorVisibleRows; i++ {
		b := k.config.Bindings[i]
		line := fmt.Sprintf("%-14s %-22s", b.Command, strings.Join(b.Keys, ", "))
		if i == k.selected {
			lines = append(lines, editorSelectedStyle.Render(line))
		} else {
			lines = append(lines, editorItemStyle.Render(line))
		}
	}

	lines = append(lines, "", hintStyle.Render("↑/k:up  ↓/j:down  enter/e:edit  s:save  r:reset  q:close"))

	if conflicts := k.config.ValidateBindings(); len(conflicts) > 0 {
		keys := make([]string, 0, len(conflicts))
		for key := range conflicts {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		lines = append(lines, "", editorWarnStyle.Render("⚠ Conflicts detected:"))
		for _, key := range keys {
			lines = append(lines, fmt.Sprintf("  %s → %s", key, strings.Join(conflicts[key], ", ")))
		}
	}
	if k.Err != nil {
		lines = append(lines, "", editorWarnStyle.Render(k.Err.Error()))
	}
	return strings.Join(lines, "\n")
}

func (k *KeybindingEditorOverlay) renderEdit() string {
	b := k.config.Bindings[k.selected]
	lines := []string{
		editorTitleStyle.Render("Edit Keybinding"),
		"",
		"Command: " + b.Command,
		"Current keys: " + strings.Join(b.Keys, ", "),
		"New keys: " + strings.Join(k.editingKeys, ", "),
		"",
	}
	if k.captureNextKey {
		lines = append(lines, editorCaptureStyle.Render("Press the key to assign..."))
	} else {
		lines = append(lines, hintStyle.Render("enter:save  a:add key  d:delete last  esc:cancel"))
	}
	return strings.Join(lines, "\n")
}
