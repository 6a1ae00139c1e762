package ui

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/bubbles/viewport"

	"mdviewer/log"
	"mdviewer/markdown"
)

// LoadInstructions reads a markdown file and renders it against base,
// resetting session. It may run off the UI goroutine as long as nothing else
// uses session until it returns; see DocumentPane.BeginRender.
func LoadInstructions(path, base string, session *markdown.Session, opts ...markdown.RenderOption) ([]markdown.Instruction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	instrs := markdown.Render(string(data), base, session, opts...)
	log.InfoLog.Printf("session %s: rendered %s into %d instructions", session.ID, path, len(instrs))
	return instrs, nil
}

// DocumentPane shows one rendered markdown document in a scrollable viewport.
type DocumentPane struct {
	// Path is the absolute path of the document; Title its tab label.
	Path  string
	Title string
	// Base is the folder image paths resolve against.
	Base string

	Session *markdown.Session
	text    *StyledText

	viewport viewport.Model
	width    int
	height   int
	loaded   bool
}

// NewDocumentPane creates an empty pane for the document at path.
func NewDocumentPane(path, title, base string, opener markdown.Opener, theme Theme, opts ...StyledTextOption) *DocumentPane {
	p := &DocumentPane{
		Path:     path,
		Title:    title,
		Base:     base,
		Session:  markdown.NewSession(opener),
		viewport: viewport.New(0, 0),
	}
	p.text = NewStyledText(theme, append([]StyledTextOption{WithHyperlinks(p.resolve)}, opts...)...)
	return p
}

func (p *DocumentPane) resolve(tag string) (string, bool) {
	l, ok := p.Session.Link(tag)
	return l.URL, ok
}

// Show replaces the pane content with instrs.
func (p *DocumentPane) Show(instrs []markdown.Instruction) {
	markdown.Apply(p.text, instrs, p.Session)
	p.loaded = true
	p.refresh()
}

// BeginRender detaches the pane from its session until the next Show, so a
// render may use the session from another goroutine.
func (p *DocumentPane) BeginRender() {
	p.loaded = false
	p.text.Clear()
}

// Loaded reports whether the pane has shown a render result.
func (p *DocumentPane) Loaded() bool { return p.loaded }

// SetSize updates the dimensions of the pane.
func (p *DocumentPane) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.viewport.Width = width
	p.viewport.Height = height
	p.refresh()
}

// refresh re-lays out the text, keeping the scroll offset.
func (p *DocumentPane) refresh() {
	if p.width <= 0 {
		return
	}
	y := p.viewport.YOffset
	p.viewport.SetContent(p.text.Render(p.width))
	p.viewport.SetYOffset(y)
}

func (p *DocumentPane) ScrollUp()       { p.viewport.LineUp(1) }
func (p *DocumentPane) ScrollDown()     { p.viewport.LineDown(1) }
func (p *DocumentPane) PageUp()         { p.viewport.HalfViewUp() }
func (p *DocumentPane) PageDown()       { p.viewport.HalfViewDown() }
func (p *DocumentPane) ScrollToTop()    { p.viewport.GotoTop() }
func (p *DocumentPane) ScrollToBottom() { p.viewport.GotoBottom() }

// LinkAt returns the hyperlink tag at pane-relative cell (x, y).
func (p *DocumentPane) LinkAt(x, y int) string {
	return p.text.LinkAt(y+p.viewport.YOffset, x)
}

// Click activates the hyperlink at pane-relative cell (x, y), if any.
func (p *DocumentPane) Click(x, y int) (bool, error) {
	if !p.loaded {
		return false, nil
	}
	tag := p.LinkAt(x, y)
	if tag == "" {
		return false, nil
	}
	p.text.SetFocus(tag)
	p.refresh()
	return true, p.text.Activate(tag)
}

// FocusLink moves link focus by delta and scrolls the focused link into view.
func (p *DocumentPane) FocusLink(delta int) string {
	if !p.loaded {
		return ""
	}
	tag := p.text.FocusNext(delta)
	p.refresh()
	if tag == "" {
		return ""
	}
	if row := p.text.RowOf(tag); row >= 0 {
		if row < p.viewport.YOffset || row >= p.viewport.YOffset+p.viewport.Height {
			p.viewport.SetYOffset(max(0, row-p.viewport.Height/2))
		}
	}
	return tag
}

// FocusedLink returns the focused hyperlink, if any.
func (p *DocumentPane) FocusedLink() (markdown.Link, bool) {
	tag := p.text.Focused()
	if tag == "" || !p.loaded {
		return markdown.Link{}, false
	}
	return p.Session.Link(tag)
}

// ActivateFocused opens the focused hyperlink. ok is false when nothing is
// focused.
func (p *DocumentPane) ActivateFocused() (ok bool, err error) {
	tag := p.text.Focused()
	if tag == "" || !p.loaded {
		return false, nil
	}
	return true, p.text.Activate(tag)
}

// Dir returns the folder holding the document.
func (p *DocumentPane) Dir() string { return filepath.Dir(p.Path) }

// ScrollPercent reports how far the viewport is scrolled.
func (p *DocumentPane) ScrollPercent() float64 { return p.viewport.ScrollPercent() }

func (p *DocumentPane) String() string {
	if !p.loaded {
		return "Rendering..."
	}
	return p.viewport.View()
}
