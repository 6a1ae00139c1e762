package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"

	"mdviewer/log"
	"mdviewer/markdown"
)

// RenderMarkdown renders markdown with glamour for built-in screens such as
// help. Documents go through StyledText instead.
// Returns the rendered string and any error that occurred
func RenderMarkdown(content string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
		glamour.WithEmoji(),
	)
	if err != nil {
		log.ErrorLog.Printf("Failed to create markdown renderer: %v", err)
		return content, err
	}
	return render(r, content)
}

// RenderMarkdownWithStyle renders markdown with the glamour style matching
// a theme name.
func RenderMarkdownWithStyle(content string, width int, theme string) (string, error) {
	styleName := "dark"
	if theme == "light" {
		styleName = "light"
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(styleName),
		glamour.WithWordWrap(width),
		glamour.WithEmoji(),
	)
	if err != nil {
		log.ErrorLog.Printf("Failed to create markdown renderer with style: %v", err)
		return content, err
	}
	return render(r, content)
}

func render(r *glamour.TermRenderer, content string) (string, error) {
	rendered, err := r.Render(content)
	if err != nil {
		log.ErrorLog.Printf("Failed to render markdown: %v", err)
		return content, err
	}
	// Remove trailing newlines that glamour adds
	return strings.TrimRight(rendered, "\n"), nil
}

// StripMarkdown returns the visible text of a document, as the line renderer
// would show it, without styling.
func StripMarkdown(content string) string {
	session := markdown.NewSession(nil)
	out := markdown.PlainText(markdown.Render(content, "", session, markdown.WithParser(markdown.ParserLines)))
	return strings.TrimSuffix(out, "\n")
}
