package overlay

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"mdviewer/keys"
)

var (
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)
	hintStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// TextOverlay shows read-only text in a bordered box. Long text scrolls
// with the navigation keys; any other key closes it.
type TextOverlay struct {
	// Dismissed is set once the overlay has been closed.
	Dismissed bool
	// OnDismiss is called when the overlay is closed.
	OnDismiss func()

	content  string
	viewport viewport.Model
	width    int
	height   int
	// needsScrolling is set when the content is taller than the viewport.
	needsScrolling bool
}

func NewTextOverlay(content string) *TextOverlay {
	t := &TextOverlay{
		content:  content,
		viewport: viewport.New(0, 0),
	}
	t.viewport.SetContent(content)
	return t
}

// HandleKeyPress returns true when the overlay should be closed.
func (t *TextOverlay) HandleKeyPress(msg tea.KeyMsg) bool {
	if t.needsScrolling {
		name, ok := keys.GetKeyName(msg.String())
		if ok {
			switch name {
			case keys.KeyUp:
				t.viewport.LineUp(1)
				return false
			case keys.KeyDown:
				t.viewport.LineDown(1)
				return false
			case keys.KeyPageUp:
				t.viewport.HalfViewUp()
				return false
			case keys.KeyPageDown:
				t.viewport.HalfViewDown()
				return false
			case keys.KeyHome:
				t.viewport.GotoTop()
				return false
			case keys.KeyEnd:
				t.viewport.GotoBottom()
				return false
			}
		}
	}

	t.Dismissed = true
	if t.OnDismiss != nil {
		t.OnDismiss()
	}
	return true
}

// ScrollUp and ScrollDown serve the mouse wheel.
func (t *TextOverlay) ScrollUp()   { t.viewport.LineUp(3) }
func (t *TextOverlay) ScrollDown() { t.viewport.LineDown(3) }

func (t *TextOverlay) Render() string {
	style := boxStyle
	content := t.content
	if t.needsScrolling {
		content = lipgloss.JoinVertical(lipgloss.Left,
			t.viewport.View(),
			"",
			hintStyle.Render("↑/↓ to scroll • Press any other key to close"))
	}
	if t.width > 0 {
		style = style.Width(t.width)
	}
	return style.Render(content)
}

func (t *TextOverlay) SetWidth(width int) {
	t.width = width
	t.updateViewport()
}

// SetSize updates the dimensions of the overlay
func (t *TextOverlay) SetSize(width, height int) {
	t.width = width
	t.height = height
	t.updateViewport()
}

func (t *TextOverlay) updateViewport() {
	if t.height == 0 || t.width == 0 {
		return
	}

	// Vertical overhead: 2 (border) + 2 (padding) + 2 (scroll hint).
	t.viewport.Height = max(t.height-6, 1)
	t.viewport.Width = max(t.width-6, 1)
	t.needsScrolling = lipgloss.Height(t.content) > t.viewport.Height
}
