package overlay

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

var shadowStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#BBBBBB", Dark: "#444444"})

// PlaceOverlay draws fg on top of bg with its top-left corner at (x, y).
// With center set, x and y are ignored and fg is centred. With shadow set,
// the background is drawn dimmed and unstyled.
func PlaceOverlay(x, y int, fg, bg string, shadow, center bool) string {
	fgLines := strings.Split(fg, "\n")
	bgLines := strings.Split(bg, "\n")
	fgWidth := 0
	for _, l := range fgLines {
		fgWidth = max(fgWidth, ansi.StringWidth(l))
	}
	bgWidth := 0
	for _, l := range bgLines {
		bgWidth = max(bgWidth, ansi.StringWidth(l))
	}

	if fgWidth >= bgWidth && len(fgLines) >= len(bgLines) {
		return fg
	}
	if center {
		x = max(0, (bgWidth-fgWidth)/2)
		y = max(0, (len(bgLines)-len(fgLines))/2)
	}
	x = clamp(x, 0, max(0, bgWidth-fgWidth))
	y = clamp(y, 0, max(0, len(bgLines)-len(fgLines)))

	var b strings.Builder
	for i, bgLine := range bgLines {
		if i > 0 {
			b.WriteByte('\n')
		}
		if shadow {
			bgLine = ansi.Strip(bgLine)
		}
		if i < y || i >= y+len(fgLines) {
			if shadow {
				bgLine = shadowStyle.Render(bgLine)
			}
			b.WriteString(bgLine)
			continue
		}

		fgLine := fgLines[i-y]
		plain := ansi.Strip(bgLine)
		left := ansi.Truncate(bgLine, x, "")
		if pad := x - ansi.StringWidth(left); pad > 0 {
			left += strings.Repeat(" ", pad)
		}
		right := runewidth.TruncateLeft(plain, x+fgWidth, "")
		if shadow {
			left = shadowStyle.Render(left)
			right = shadowStyle.Render(right)
		}
		b.WriteString(left)
		b.WriteString(fgLine)
		if pad := fgWidth - ansi.StringWidth(fgLine); pad > 0 {
			b.WriteString(strings.Repeat(" ", pad))
		}
		b.WriteString(right)
	}
	return b.String()
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
