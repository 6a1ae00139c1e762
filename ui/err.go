package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

var errStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#D10000", Dark: "#FF5F5F"})

// ErrBox shows the most recent error on one line.
type ErrBox struct {
	err    error
	width  int
	height int
}

func NewErrBox() *ErrBox {
	return &ErrBox{}
}

func (e *ErrBox) SetError(err error) { e.err = err }

func (e *ErrBox) Clear() { e.err = nil }

func (e *ErrBox) SetSize(width, height int) {
	e.width = width
	e.height = height
}

func (e *ErrBox) String() string {
	var msg string
	if e.err != nil {
		msg = strings.ReplaceAll(e.err.Error(), "\n", " ")
		if e.width > 3 {
			msg = truncate.StringWithTail(msg, uint(e.width-2), "…")
		}
	}
	return lipgloss.Place(e.width, max(e.height, 1), lipgloss.Center, lipgloss.Center, errStyle.Render(msg))
}
