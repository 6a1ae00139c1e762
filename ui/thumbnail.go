package ui

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/image/draw"
)

// upperHalf shows the top pixel as foreground and the bottom one as
// background, so each cell carries two vertically stacked pixels.
const upperHalf = "▀"

// maxThumbnailRows bounds tall images.
const maxThumbnailRows = 40

// thumbnailSize returns the pixel size of a thumbnail at most cols wide.
// The height is always even.
func thumbnailSize(b image.Rectangle, cols int) (w, h int) {
	if b.Dx() <= 0 || b.Dy() <= 0 || cols <= 0 {
		return 0, 0
	}
	w = min(cols, b.Dx())
	h = (b.Dy()*w + b.Dx() - 1) / b.Dx()
	if h > maxThumbnailRows*2 {
		h = maxThumbnailRows * 2
		w = max(1, b.Dx()*h/b.Dy())
	}
	if h%2 == 1 {
		h++
	}
	return w, h
}

// Thumbnail renders img as rows of half-block cells at most cols wide.
func Thumbnail(img image.Image, cols int) []string {
	w, h := thumbnailSize(img.Bounds(), cols)
	if w == 0 {
		return nil
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)

	rows := make([]string, 0, h/2)
	for y := 0; y < h; y += 2 {
		var b strings.Builder
		for x := 0; x < w; x++ {
			b.WriteString(lipgloss.NewStyle().
				Foreground(hexColor(dst.At(x, y))).
				Background(hexColor(dst.At(x, y+1))).
				Render(upperHalf))
		}
		rows = append(rows, b.String())
	}
	return rows
}

func hexColor(c color.Color) lipgloss.Color {
	r, g, b, _ := c.RGBA()
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8))
}

// imageRows renders an image for a terminal with the given profile.
// Colourless terminals get a one-line description instead of blocks.
func imageRows(path string, img image.Image, cols int, profile termenv.Profile, style lipgloss.Style) []string {
	b := img.Bounds()
	if profile == termenv.Ascii {
		return []string{style.Render(fmt.Sprintf("[image: %s %dx%d]", filepath.Base(path), b.Dx(), b.Dy()))}
	}
	return Thumbnail(img, cols)
}
