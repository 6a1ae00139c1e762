package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/truncate"

	"mdviewer/library"
)

// ItemKind distinguishes launcher entries.
type ItemKind int

const (
	ItemOpenDir ItemKind = iota
	ItemFolder
	ItemArchive
)

// Item is one launcher entry.
type Item struct {
	Kind ItemKind
	// Path is the folder or archive path; empty for ItemOpenDir.
	Path   string
	Label  string
	Detail string
}

// FolderItem builds a library folder entry, annotated with its git
// revision when the folder is inside a repository.
func FolderItem(folder string, rev library.Revision, inRepo bool) Item {
	it := Item{Kind: ItemFolder, Path: folder, Label: folder}
	if inRepo {
		it.Detail = rev.Short()
	}
	return it
}

// ArchiveItem builds a saved-archive entry.
func ArchiveItem(a library.SavedArchive) Item {
	return Item{
		Kind:   ItemArchive,
		Path:   a.Path,
		Label:  a.Name,
		Detail: humanize.Bytes(uint64(a.Size)),
	}
}

var (
	listTitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(highlightColor).MarginBottom(1)
	sectionStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#007A78", Dark: "#36CFC9"})
	itemStyle         = lipgloss.NewStyle().PaddingLeft(2)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(1).
				Border(lipgloss.ThickBorder(), false, false, false, true).
				BorderForeground(highlightColor).
				Foreground(highlightColor).
				Bold(true)
	detailStyle = lipgloss.NewStyle().Foreground(dimColor)
)

// LibraryList is the launcher: an "open directory" entry, the library
// folders and the saved archives.
type LibraryList struct {
	items    []Item
	selected int
	width    int
	height   int
	offset   int
}

func NewLibraryList() *LibraryList {
	return &LibraryList{items: []Item{openDirItem()}}
}

func openDirItem() Item {
	return Item{Kind: ItemOpenDir, Label: "Open directory..."}
}

// SetItems replaces the folders and archives. The open-directory entry is
// always first. The selection is kept on the same path when possible.
func (l *LibraryList) SetItems(folders, archives []Item) {
	var prev string
	if it, ok := l.Selected(); ok {
		prev = it.Path
	}
	l.items = append([]Item{openDirItem()}, folders...)
	l.items = append(l.items, archives...)
	l.selected = 0
	for i, it := range l.items {
		if prev != "" && it.Path == prev {
			l.selected = i
		}
	}
	l.clampOffset()
}

func (l *LibraryList) Items() []Item { return l.items }

func (l *LibraryList) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.clampOffset()
}

func (l *LibraryList) Up() {
	if l.selected > 0 {
		l.selected--
	}
	l.clampOffset()
}

func (l *LibraryList) Down() {
	if l.selected < len(l.items)-1 {
		l.selected++
	}
	l.clampOffset()
}

func (l *LibraryList) Home() {
	l.selected = 0
	l.clampOffset()
}

func (l *LibraryList) End() {
	l.selected = len(l.items) - 1
	l.clampOffset()
}

// Selected returns the selected entry.
func (l *LibraryList) Selected() (Item, bool) {
	if l.selected < 0 || l.selected >= len(l.items) {
		return Item{}, false
	}
	return l.items[l.selected], true
}

// Select selects the entry at index i.
func (l *LibraryList) Select(i int) bool {
	if i < 0 || i >= len(l.items) {
		return false
	}
	l.selected = i
	l.clampOffset()
	return true
}

// headerRows is the title plus its margin.
const headerRows = 2

// ItemAt maps a row of the rendered list to an entry index.
func (l *LibraryList) ItemAt(y int) (int, bool) {
	r := headerRows
	for i := l.offset; i < len(l.items); i++ {
		if l.startsSection(i) {
			r++
		}
		if y == r {
			return i, true
		}
		r++
	}
	return 0, false
}

func (l *LibraryList) startsSection(i int) bool {
	if i == 0 {
		return false
	}
	return l.items[i].Kind != l.items[i-1].Kind
}

// visibleRows is how many entries fit, allowing for section headings.
func (l *LibraryList) visibleRows() int {
	if l.height <= 0 {
		return len(l.items)
	}
	return max(1, l.height-headerRows-2)
}

func (l *LibraryList) clampOffset() {
	n := l.visibleRows()
	if l.selected < l.offset {
		l.offset = l.selected
	}
	if l.selected >= l.offset+n {
		l.offset = l.selected - n + 1
	}
	if l.offset < 0 {
		l.offset = 0
	}
}

func sectionTitle(k ItemKind) string {
	switch k {
	case ItemFolder:
		return "Library"
	case ItemArchive:
		return "Saved archives"
	default:
		return ""
	}
}

func (l *LibraryList) String() string {
	var b strings.Builder
	b.WriteString(listTitleStyle.Render("mdviewer"))
	b.WriteString("\n")

	width := max(l.width-4, 10)
	end := min(len(l.items), l.offset+l.visibleRows())
	for i := l.offset; i < end; i++ {
		it := l.items[i]
		if l.startsSection(i) {
			b.WriteString(sectionStyle.Render(sectionTitle(it.Kind)))
			b.WriteString("\n")
		}
		line := it.Label
		if it.Detail != "" {
			line = fmt.Sprintf("%s  %s", line, detailStyle.Render(it.Detail))
		}
		line = truncate.StringWithTail(line, uint(width), "…")
		if i == l.selected {
			b.WriteString(selectedItemStyle.Render(line))
		} else {
			b.WriteString(itemStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(strings.TrimRight(b.String(), "\n"))
}
