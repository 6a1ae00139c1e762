package ui

import (
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
)

// Highlighter turns fenced code into per-rune chroma token types and maps
// those to lipgloss styles. It is safe for concurrent use.
type Highlighter struct {
	style *chroma.Style

	mu     sync.RWMutex
	lexers map[string]chroma.Lexer
	cache  map[chroma.TokenType]lipgloss.Style
}

// NewHighlighter uses the named chroma style, falling back to chroma's
// default for unknown names.
func NewHighlighter(styleName string) *Highlighter {
	return &Highlighter{
		style:  styles.Get(styleName),
		lexers: make(map[string]chroma.Lexer),
		cache:  make(map[chroma.TokenType]lipgloss.Style),
	}
}

// lexer finds a lexer by language name, then by file extension.
func (h *Highlighter) lexer(lang string) chroma.Lexer {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		return nil
	}
	if i := strings.IndexAny(lang, " \t{"); i >= 0 {
		lang = lang[:i]
	}

	h.mu.RLock()
	l, ok := h.lexers[lang]
	h.mu.RUnlock()
	if ok {
		return l
	}

	l = lexers.Get(lang)
	if l == nil {
		l = lexers.Match("file." + lang)
	}
	if l != nil {
		l = chroma.Coalesce(l)
	}
	h.mu.Lock()
	h.lexers[lang] = l
	h.mu.Unlock()
	return l
}

// TokenTypes tokenises code and returns the token type of every rune. ok is
// false when no lexer knows lang.
func (h *Highlighter) TokenTypes(code, lang string) (types []chroma.TokenType, ok bool) {
	l := h.lexer(lang)
	if l == nil {
		return nil, false
	}
	it, err := l.Tokenise(nil, code)
	if err != nil {
		return nil, false
	}
	types = make([]chroma.TokenType, 0, len(code))
	for _, tok := range it.Tokens() {
		for range tok.Value {
			types = append(types, tok.Type)
		}
	}
	// Some lexers append a trailing newline to the input.
	if n := len([]rune(code)); len(types) > n {
		types = types[:n]
	}
	return types, true
}

// Style returns the lipgloss style for a token type.
func (h *Highlighter) Style(tt chroma.TokenType) lipgloss.Style {
	h.mu.RLock()
	s, ok := h.cache[tt]
	h.mu.RUnlock()
	if ok {
		return s
	}

	entry := h.style.Get(tt)
	s = lipgloss.NewStyle()
	if entry.Colour.IsSet() {
		s = s.Foreground(lipgloss.Color(entry.Colour.String()))
	}
	if entry.Bold == chroma.Yes {
		s = s.Bold(true)
	}
	if entry.Italic == chroma.Yes {
		s = s.Italic(true)
	}
	if entry.Underline == chroma.Yes {
		s = s.Underline(true)
	}

	h.mu.Lock()
	h.cache[tt] = s
	h.mu.Unlock()
	return s
}
