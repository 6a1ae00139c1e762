package overlay

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var promptTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))

// TextInputOverlay asks for one line of text, such as a folder path.
type TextInputOverlay struct {
	Title string
	// Submitted and Canceled report how the overlay was closed.
	Submitted bool
	Canceled  bool

	input textinput.Model
	width int
}

func NewTextInputOverlay(title, initial string) *TextInputOverlay {
	ti := textinput.New()
	ti.Placeholder = "/path/to/folder"
	ti.SetValue(initial)
	ti.CursorEnd()
	ti.Focus()
	return &TextInputOverlay{Title: title, input: ti, width: 60}
}

func (t *TextInputOverlay) SetWidth(width int) {
	t.width = width
	t.input.Width = max(width-8, 10)
}

func (t *TextInputOverlay) Value() string { return t.input.Value() }

// HandleKeyPress feeds msg to the input. It returns true when the overlay
// closes, either submitted with enter or canceled with esc or ctrl+c.
func (t *TextInputOverlay) HandleKeyPress(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		t.Submitted = true
		return true, nil
	case tea.KeyEsc, tea.KeyCtrlC:
		t.Canceled = true
		return true, nil
	}
	var cmd tea.Cmd
	t.input, cmd = t.input.Update(msg)
	return false, cmd
}

func (t *TextInputOverlay) Render() string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		promptTitleStyle.Render(t.Title),
		"",
		t.input.View(),
		"",
		hintStyle.Render("enter to confirm • esc to cancel"),
	)
	return boxStyle.Width(t.width).Render(body)
}
