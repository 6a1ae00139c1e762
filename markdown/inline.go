package markdown

import (
	"strings"
	"unicode/utf8"
)

// TokenKind is the style of an inline token.
type TokenKind uint8

const (
	Normal TokenKind = iota
	Italic
	Bold
	BoldItalic
	InlineCode
)

func (k TokenKind) String() string {
	switch k {
	case Italic:
		return "italic"
	case Bold:
		return "bold"
	case BoldItalic:
		return "bold_italic"
	case InlineCode:
		return "inlinecode"
	default:
		return "normal"
	}
}

// InlineToken is a run of text with one inline style.
type InlineToken struct {
	Kind TokenKind
	Text string
}

// delimiter pairs an opening/closing marker with the token kind it produces.
type delimiter struct {
	marker string
	kind   TokenKind
}

// delimiters are tried in this order at every position. Longer asterisk runs
// come before shorter ones so "***x***" is bold-italic.
var delimiters = [...]delimiter{
	{"`", InlineCode},
	{"***", BoldItalic},
	{"**", Bold},
	{"*", Italic},
}

// Tokenize splits one line into inline tokens in a single left-to-right scan.
// Delimited text is taken verbatim and never re-scanned; a delimiter without a
// closing partner is emitted as literal text. Tokenize never fails.
func Tokenize(line string) []InlineToken {
	if line == "" {
		return nil
	}
	tokens := make([]InlineToken, 0, 8)
	i := 0
	for i < len(line) {
		if tok, next, ok := matchDelimited(line, i); ok {
			tokens = append(tokens, tok)
			i = next
			continue
		}
		_, size := utf8.DecodeRuneInString(line[i:])
		tokens = append(tokens, InlineToken{Kind: Normal, Text: line[i : i+size]})
		i += size
	}
	return tokens
}

// matchDelimited tries every delimiter at position i and returns the token and
// the position after its closing marker.
func matchDelimited(line string, i int) (InlineToken, int, bool) {
	for _, d := range delimiters {
		if !strings.HasPrefix(line[i:], d.marker) {
			continue
		}
		start := i + len(d.marker)
		end := strings.Index(line[start:], d.marker)
		if end < 0 {
			continue
		}
		end += start
		return InlineToken{Kind: d.kind, Text: line[start:end]}, end + len(d.marker), true
	}
	return InlineToken{}, i, false
}

// Coalesce merges adjacent Normal tokens. Text and order are preserved.
func Coalesce(tokens []InlineToken) []InlineToken {
	if len(tokens) < 2 {
		return tokens
	}
	out := make([]InlineToken, 0, len(tokens))
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			out = append(out, InlineToken{Kind: Normal, Text: b.String()})
			b.Reset()
		}
	}
	for _, tok := range tokens {
		if tok.Kind == Normal {
			b.WriteString(tok.Text)
			continue
		}
		flush()
		out = append(out, tok)
	}
	flush()
	return out
}

// markerFor returns the delimiter that wraps tokens of kind k.
func markerFor(k TokenKind) string {
	for _, d := range delimiters {
		if d.kind == k {
			return d.marker
		}
	}
	return ""
}

// Reconstruct re-inserts the delimiters around styled tokens, producing the
// source text for lines whose delimiters were balanced.
func Reconstruct(tokens []InlineToken) string {
	var b strings.Builder
	for _, tok := range tokens {
		m := markerFor(tok.Kind)
		b.WriteString(m)
		b.WriteString(tok.Text)
		b.WriteString(m)
	}
	return b.String()
}
