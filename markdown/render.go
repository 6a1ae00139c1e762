package markdown

import (
	"fmt"
	"strings"

	"mdviewer/log"
)

// Parser selects the block rendering strategy.
type Parser string

const (
	// ParserStructured walks a goldmark tree and falls back to line scanning
	// for the whole document if that fails.
	ParserStructured Parser = "structured"
	// ParserLines always uses the line scanner.
	ParserLines Parser = "lines"
)

// ParseParser maps a configuration value to a Parser. Unknown values select
// the structured parser.
func ParseParser(s string) Parser {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(ParserLines), "line", "raw":
		return ParserLines
	default:
		return ParserStructured
	}
}

// strategy renders a whole document through an emitter.
type strategy interface {
	name() string
	render(doc string, e *emitter) error
}

// lineStrategy is the line-scanning renderer.
type lineStrategy struct{}

func (lineStrategy) name() string { return "lines" }

func (lineStrategy) render(doc string, e *emitter) error {
	for _, ev := range Scan(doc) {
		e.event(ev)
	}
	return nil
}

// RenderOption configures Render.
type RenderOption func(*renderConfig)

type renderConfig struct {
	parser     Parser
	loader     ImageLoader
	structured strategy
}

// WithParser selects the rendering strategy.
func WithParser(p Parser) RenderOption {
	return func(cfg *renderConfig) {
		cfg.parser = p
	}
}

// WithImageLoader overrides the image decoder tiers.
func WithImageLoader(l ImageLoader) RenderOption {
	return func(cfg *renderConfig) {
		cfg.loader = l
	}
}

// withStructured replaces the structured strategy. Used by tests.
func withStructured(s strategy) RenderOption {
	return func(cfg *renderConfig) {
		cfg.structured = s
	}
}

// Render turns a document into render instructions. Relative image paths are
// resolved against baseFolder. The session is reset first, then receives the
// document's hyperlinks and decoded images. Render never fails and never
// panics: a structured-parse failure re-renders the whole document with the
// line scanner.
func Render(doc, baseFolder string, session *Session, opts ...RenderOption) []Instruction {
	cfg := renderConfig{
		parser: ParserStructured,
		loader: DefaultImageLoader,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	session.Reset()
	if cfg.parser != ParserLines {
		s := cfg.structured
		if s == nil {
			s = newTreeStrategy()
		}
		out, err := renderWith(s, doc, newEmitter(session, cfg.loader, baseFolder))
		if err == nil {
			return out
		}
		log.WarningLog.Printf("session %s: falling back to line renderer: %v", session.ID, err)
		session.Reset()
	}

	out, err := renderWith(lineStrategy{}, doc, newEmitter(session, cfg.loader, baseFolder))
	if err != nil {
		log.ErrorLog.Printf("session %s: line renderer failed, showing plain text: %v", session.ID, err)
		session.Reset()
		return plainInstructions(doc)
	}
	return out
}

func renderWith(s strategy, doc string, e *emitter) (out []Instruction, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s renderer panicked: %v", s.name(), r)
		}
	}()
	if err := s.render(doc, e); err != nil {
		return nil, fmt.Errorf("%s renderer: %w", s.name(), err)
	}
	return e.out, nil
}

// plainInstructions shows the document unstyled, one line per source line.
func plainInstructions(doc string) []Instruction {
	lines := strings.Split(doc, "\n")
	out := make([]Instruction, 0, 2*len(lines))
	for _, line := range lines {
		if line != "" {
			out = append(out, Instruction{Op: OpInsertText, Text: line})
		}
		out = append(out, Instruction{Op: OpInsertNewline})
	}
	return out
}
