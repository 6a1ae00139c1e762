package ui

import (
	"fmt"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdviewer/markdown"
)

func testPanes(n int) []*DocumentPane {
	panes := make([]*DocumentPane, n)
	for i := range panes {
		p := NewDocumentPane(fmt.Sprintf("/d/%d.md", i), fmt.Sprintf("doc%d.md", i), "/d", nil, darkTheme(), WithProfile(termenv.Ascii))
		s := markdown.NewSession(nil)
		p.Show(markdown.Render(fmt.Sprintf("body %d", i), "", s))
		panes[i] = p
	}
	return panes
}

func TestTabbedWindowCycles(t *testing.T) {
	w := NewTabbedWindow()
	assert.Nil(t, w.Active())
	w.Toggle()
	assert.Equal(t, "", w.String())

	w.SetDocuments(testPanes(3))
	w.SetSize(90, 20)
	assert.Equal(t, 0, w.ActiveIndex())

	w.Toggle()
	w.Toggle()
	assert.Equal(t, 2, w.ActiveIndex())
	w.Toggle()
	assert.Equal(t, 0, w.ActiveIndex())
	w.ToggleReverse()
	assert.Equal(t, "doc2.md", w.Active().Title)

	w.SetTab(1)
	assert.Equal(t, 1, w.ActiveIndex())
	w.SetTab(7)
	assert.Equal(t, 1, w.ActiveIndex())
}

func TestTabbedWindowString(t *testing.T) {
	w := NewTabbedWindow()
	w.SetDocuments(testPanes(2))
	w.SetSize(60, 15)
	w.SetStatus("main@abc1234")
	w.SetTab(1)

	out := ansi.Strip(w.String())
	assert.Contains(t, out, "doc0.md")
	assert.Contains(t, out, "doc1.md")
	assert.Contains(t, out, "body 1")
	assert.NotContains(t, out, "body 0")
	assert.Contains(t, out, "main@abc1234  2/2")
}

func TestTabbedWindowScrollsTabs(t *testing.T) {
	w := NewTabbedWindow()
	w.SetDocuments(testPanes(10))
	w.SetSize(3*minTabWidth, 15)

	first, last, _ := w.visibleTabs()
	assert.Equal(t, 0, first)
	assert.Equal(t, 3, last)

	w.SetTab(9)
	first, last, _ = w.visibleTabs()
	assert.Equal(t, 7, first)
	assert.Equal(t, 10, last)

	i, ok := w.TabAt(0)
	require.True(t, ok)
	assert.Equal(t, 7, i)
	i, ok = w.TabAt(3*minTabWidth - 1)
	require.True(t, ok)
	assert.Equal(t, 9, i)
	_, ok = w.TabAt(-1)
	assert.False(t, ok)
}

func TestTabbedWindowSizesPanes(t *testing.T) {
	w := NewTabbedWindow()
	panes := testPanes(1)
	w.SetDocuments(panes)
	w.SetSize(50, 20)

	cw, ch := w.contentSize()
	assert.Equal(t, cw, panes[0].width)
	assert.Equal(t, ch, panes[0].height)
	x, y := w.ContentOrigin()
	assert.Equal(t, 1, x)
	assert.Equal(t, 5, y)

	assert.False(t, w.OnTabRow(1))
	assert.True(t, w.OnTabRow(2))
	assert.True(t, w.OnTabRow(4))
	assert.False(t, w.OnTabRow(5))
}
