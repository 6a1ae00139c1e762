package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"mdviewer/markdown"
)

// Theme maps markdown style tags to terminal styles.
type Theme struct {
	Name string
	// Tags holds one style per markdown tag name.
	Tags map[string]lipgloss.Style
	// Focus is layered over the runes of the focused hyperlink.
	Focus lipgloss.Style
	// Placeholder styles image frames and missing-image text.
	Placeholder lipgloss.Style
	// Chroma names the chroma style used for fenced code.
	Chroma string
}

var (
	highlightColor = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	dimColor       = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#666666"}
)

func darkTheme() Theme {
	return Theme{
		Name: "dark",
		Tags: map[string]lipgloss.Style{
			markdown.TagH1:         lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")).Underline(true),
			markdown.TagH2:         lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#36CFC9")),
			markdown.TagH3:         lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFCC00")),
			markdown.TagBold:       lipgloss.NewStyle().Bold(true),
			markdown.TagItalic:     lipgloss.NewStyle().Italic(true),
			markdown.TagInlineCode: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF7AB2")).Background(lipgloss.Color("#2A2A2A")),
			markdown.TagCodeBlock:  lipgloss.NewStyle().Foreground(lipgloss.Color("#D0D0D0")).Background(lipgloss.Color("#1E1E1E")),
			markdown.TagHyperlink:  lipgloss.NewStyle().Foreground(lipgloss.Color("#5FAFFF")).Underline(true),
		},
		Focus:       lipgloss.NewStyle().Reverse(true),
		Placeholder: lipgloss.NewStyle().Foreground(dimColor),
		Chroma:      "monokai",
	}
}

func lightTheme() Theme {
	return Theme{
		Name: "light",
		Tags: map[string]lipgloss.Style{
			markdown.TagH1:         lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5A32D6")).Underline(true),
			markdown.TagH2:         lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#007A78")),
			markdown.TagH3:         lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#9A6700")),
			markdown.TagBold:       lipgloss.NewStyle().Bold(true),
			markdown.TagItalic:     lipgloss.NewStyle().Italic(true),
			markdown.TagInlineCode: lipgloss.NewStyle().Foreground(lipgloss.Color("#B3005A")).Background(lipgloss.Color("#EFEFEF")),
			markdown.TagCodeBlock:  lipgloss.NewStyle().Foreground(lipgloss.Color("#303030")).Background(lipgloss.Color("#F5F5F5")),
			markdown.TagHyperlink:  lipgloss.NewStyle().Foreground(lipgloss.Color("#0057B7")).Underline(true),
		},
		Focus:       lipgloss.NewStyle().Reverse(true),
		Placeholder: lipgloss.NewStyle().Foreground(dimColor),
		Chroma:      "github",
	}
}

// ThemeByName returns the named theme. "auto" asks the terminal for its
// background colour; anything unknown is dark.
func ThemeByName(name string) Theme {
	switch name {
	case "light":
		return lightTheme()
	case "auto":
		if !termenv.HasDarkBackground() {
			return lightTheme()
		}
	}
	return darkTheme()
}

// style composes the styles of tags. Later tags win where two set the same
// property.
func (t Theme) style(tags []string) lipgloss.Style {
	s := lipgloss.NewStyle()
	for i := len(tags) - 1; i >= 0; i-- {
		if ts, ok := t.Tags[tags[i]]; ok {
			s = s.Inherit(ts)
		}
	}
	return s
}
