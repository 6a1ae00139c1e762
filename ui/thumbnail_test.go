package ui

import (
	"errors"
	"image"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"

	"mdviewer/keys"
)

func TestThumbnailSize(t *testing.T) {
	tests := []struct {
		name         string
		w, h, cols   int
		wantW, wantH int
	}{
		{"smaller than cap", 10, 10, 60, 10, 10},
		{"scaled to cap", 200, 100, 50, 50, 26},
		{"odd height rounds up", 3, 3, 60, 3, 4},
		{"very tall is capped", 10, 1000, 60, 1, 80},
		{"empty image", 0, 0, 60, 0, 0},
		{"no room", 10, 10, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := thumbnailSize(image.Rect(0, 0, tt.w, tt.h), tt.cols)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func TestThumbnailRows(t *testing.T) {
	rows := Thumbnail(image.NewRGBA(image.Rect(0, 0, 20, 10)), 10)
	assert.Len(t, rows, 3)
	for _, r := range rows {
		assert.Equal(t, 10, strings.Count(ansi.Strip(r), upperHalf))
	}
}

func TestErrBox(t *testing.T) {
	e := NewErrBox()
	e.SetSize(20, 1)
	assert.Equal(t, "", strings.TrimSpace(ansi.Strip(e.String())))

	e.SetError(errors.New("something went\nvery wrong indeed"))
	out := ansi.Strip(e.String())
	assert.Contains(t, out, "something went")
	assert.NotContains(t, out, "\n")
	assert.Contains(t, out, "…")

	e.Clear()
	assert.Equal(t, "", strings.TrimSpace(ansi.Strip(e.String())))
}

func TestMenuStates(t *testing.T) {
	m := NewMenu()
	m.SetSize(200, 1)

	out := ansi.Strip(m.String())
	assert.Contains(t, out, "open folder")
	assert.NotContains(t, out, "next link")

	m.SetState(StateViewer)
	out = ansi.Strip(m.String())
	assert.Contains(t, out, "next link")
	assert.Contains(t, out, "save to file")

	m.Keydown(keys.KeyNextLink)
	assert.Contains(t, ansi.Strip(m.String()), "next link")
	m.ClearKeydown()

	m.SetState(StatePrompt)
	assert.Contains(t, ansi.Strip(m.String()), "submit")
}
