package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

func tabBorderWithBottom(left, middle, right string) lipgloss.Border {
	border := lipgloss.RoundedBorder()
	border.BottomLeft = left
	border.Bottom = middle
	border.BottomRight = right
	return border
}

var (
	inactiveTabBorder = tabBorderWithBottom("┴", "─", "┴")
	activeTabBorder   = tabBorderWithBottom("┘", " ", "└")
	inactiveTabStyle  = lipgloss.NewStyle().
				Border(inactiveTabBorder, true).
				BorderForeground(highlightColor).
				AlignHorizontal(lipgloss.Center)
	activeTabStyle = inactiveTabStyle.
			Border(activeTabBorder, true).
			AlignHorizontal(lipgloss.Center)
	windowStyle = lipgloss.NewStyle().
			BorderForeground(highlightColor).
			Border(lipgloss.NormalBorder(), false, true, true, true)
	statusStyle = lipgloss.NewStyle().Foreground(dimColor)
)

// minTabWidth is the narrowest a tab gets before tabs start scrolling.
const minTabWidth = 14

// TabbedWindow shows one tab per open document above the active document.
type TabbedWindow struct {
	panes []*DocumentPane
	// status is shown right-aligned under the document, e.g. the folder's
	// git revision.
	status string

	activeTab int
	height    int
	width     int
}

func NewTabbedWindow() *TabbedWindow {
	return &TabbedWindow{}
}

// SetDocuments replaces the open documents and selects the first.
func (w *TabbedWindow) SetDocuments(panes []*DocumentPane) {
	w.panes = panes
	w.activeTab = 0
	w.SetSize(w.width, w.height)
}

func (w *TabbedWindow) SetStatus(status string) { w.status = status }

func (w *TabbedWindow) Documents() []*DocumentPane { return w.panes }

// Active returns the active document, or nil when none is open.
func (w *TabbedWindow) Active() *DocumentPane {
	if w.activeTab < 0 || w.activeTab >= len(w.panes) {
		return nil
	}
	return w.panes[w.activeTab]
}

func (w *TabbedWindow) ActiveIndex() int { return w.activeTab }

func (w *TabbedWindow) tabHeight() int {
	return activeTabStyle.GetVerticalFrameSize() + 1 // get padding border margin size + 1 for character height
}

// contentSize is the size available to a document pane.
func (w *TabbedWindow) contentSize() (int, int) {
	// Tab row, the leading blank line, the window frame and the status line.
	contentHeight := w.height - w.tabHeight() - windowStyle.GetVerticalFrameSize() - 2 - 1
	contentWidth := w.width - windowStyle.GetHorizontalFrameSize()
	return max(contentWidth, 1), max(contentHeight, 1)
}

// ContentOrigin is the screen offset of the active pane's top-left cell
// relative to the window's own top-left.
func (w *TabbedWindow) ContentOrigin() (x, y int) {
	return windowStyle.GetBorderLeftSize(), 2 + w.tabHeight()
}

func (w *TabbedWindow) SetSize(width, height int) {
	w.width = width
	w.height = height
	cw, ch := w.contentSize()
	for _, p := range w.panes {
		p.SetSize(cw, ch)
	}
}

func (w *TabbedWindow) Toggle() {
	w.cycleTabs(1)
}

// ToggleReverse cycles through tabs in reverse order
func (w *TabbedWindow) ToggleReverse() {
	w.cycleTabs(-1)
}

// cycleTabs handles cycling through tabs in a given direction.
func (w *TabbedWindow) cycleTabs(direction int) {
	if len(w.panes) == 0 {
		return
	}
	numTabs := len(w.panes)
	w.activeTab = (w.activeTab + direction + numTabs) % numTabs
}

// SetTab sets the active tab directly by index
func (w *TabbedWindow) SetTab(tabIndex int) {
	if tabIndex >= 0 && tabIndex < len(w.panes) {
		w.activeTab = tabIndex
	}
}

// visibleTabs returns the range of tabs that fit, keeping the active one in
// view, and the width of each.
func (w *TabbedWindow) visibleTabs() (first, last, tabWidth int) {
	n := len(w.panes)
	fit := max(1, w.width/minTabWidth)
	if n <= fit {
		return 0, n, w.width / n
	}
	first = max(0, w.activeTab-fit/2)
	if first+fit > n {
		first = n - fit
	}
	return first, first + fit, w.width / fit
}

// OnTabRow reports whether row y of the window is part of the tab row.
func (w *TabbedWindow) OnTabRow(y int) bool {
	return y >= 2 && y < 2+w.tabHeight()
}

// TabAt returns the index of the tab under column x of the tab row.
func (w *TabbedWindow) TabAt(x int) (int, bool) {
	if len(w.panes) == 0 || x < 0 || x >= w.width {
		return 0, false
	}
	first, last, tabWidth := w.visibleTabs()
	i := first + x/max(tabWidth, 1)
	if i >= last {
		i = last - 1
	}
	return i, true
}

func (w *TabbedWindow) String() string {
	if w.width == 0 || w.height == 0 || len(w.panes) == 0 {
		return ""
	}

	first, last, tabWidth := w.visibleTabs()
	lastTabWidth := w.width - tabWidth*(last-first-1)
	tabHeight := w.tabHeight()

	var renderedTabs []string
	for i := first; i < last; i++ {
		width := tabWidth
		if i == last-1 {
			width = lastTabWidth
		}

		var style lipgloss.Style
		isFirst, isLast, isActive := i == first, i == last-1, i == w.activeTab
		if isActive {
			style = activeTabStyle
		} else {
			style = inactiveTabStyle
		}
		border, _, _, _, _ := style.GetBorder()
		if isFirst && isActive {
			border.BottomLeft = "│"
		} else if isFirst {
			border.BottomLeft = "├"
		} else if isLast && isActive {
			border.BottomRight = "│"
		} else if isLast {
			border.BottomRight = "┤"
		}
		style = style.Border(border)
		style = style.Width(width - 1)
		title := truncate.StringWithTail(w.panes[i].Title, uint(max(width-3, 1)), "…")
		renderedTabs = append(renderedTabs, style.Render(title))
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top, renderedTabs...)
	active := w.Active()
	status := fmt.Sprintf("%d/%d  %3.0f%%", w.activeTab+1, len(w.panes), active.ScrollPercent()*100)
	if w.status != "" {
		status = w.status + "  " + status
	}
	cw, ch := w.contentSize()
	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.Place(cw, ch, lipgloss.Left, lipgloss.Top, active.String()),
		lipgloss.PlaceHorizontal(cw, lipgloss.Right, statusStyle.Render(truncate.String(status, uint(cw)))),
	)
	window := windowStyle.Render(
		lipgloss.Place(
			w.width-windowStyle.GetHorizontalFrameSize(), w.height-2-windowStyle.GetVerticalFrameSize()-tabHeight,
			lipgloss.Left, lipgloss.Top, content))

	return lipgloss.JoinVertical(lipgloss.Left, "\n", row, window)
}
