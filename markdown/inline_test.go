package markdown

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []InlineToken
	}{
		{
			name:     "empty line",
			input:    "",
			expected: nil,
		},
		{
			name:     "bold italic wins over bold",
			input:    "***x***",
			expected: []InlineToken{{BoldItalic, "x"}},
		},
		{
			name:  "bold then normal then italic",
			input: "**a**b*c*",
			expected: []InlineToken{
				{Bold, "a"},
				{Normal, "b"},
				{Italic, "c"},
			},
		},
		{
			name:     "code span is opaque",
			input:    "`**x**`",
			expected: []InlineToken{{InlineCode, "**x**"}},
		},
		{
			name:  "delimiters only match at the scan position",
			input: "*`a*`",
			expected: []InlineToken{
				{Italic, "`a"},
				{Normal, "`"},
			},
		},
		{
			name:  "double asterisk without close falls back to empty italic",
			input: "**open",
			expected: []InlineToken{
				{Italic, ""},
				{Normal, "o"},
				{Normal, "p"},
				{Normal, "e"},
				{Normal, "n"},
			},
		},
		{
			name:  "unterminated backtick is literal",
			input: "`x",
			expected: []InlineToken{
				{Normal, "`"},
				{Normal, "x"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Tokenize(tt.input))
		})
	}
}

func TestTokenizeUnterminated(t *testing.T) {
	for _, input := range []string{"*unterminated", "end*", "a * b", "`tick"} {
		t.Run(input, func(t *testing.T) {
			tokens := Tokenize(input)
			var b strings.Builder
			for _, tok := range tokens {
				assert.Equal(t, Normal, tok.Kind)
				assert.Equal(t, 1, utf8.RuneCountInString(tok.Text))
				b.WriteString(tok.Text)
			}
			assert.Equal(t, input, b.String())
		})
	}
}

func TestTokenizeRunes(t *testing.T) {
	tokens := Tokenize("héllo ✓ *wörld*")
	for _, tok := range tokens {
		assert.True(t, utf8.ValidString(tok.Text), "token %q is not valid UTF-8", tok.Text)
	}
	last := tokens[len(tokens)-1]
	assert.Equal(t, InlineToken{Italic, "wörld"}, last)
}

func TestReconstruct(t *testing.T) {
	lines := []string{
		"plain **bold** and *it* `code` ***bi***",
		"no markup at all",
		"`a` `b`",
		"**x***y*",
	}
	for _, line := range lines {
		t.Run(line, func(t *testing.T) {
			assert.Equal(t, line, Reconstruct(Tokenize(line)))
		})
	}
}

func TestCoalesce(t *testing.T) {
	got := Coalesce(Tokenize("ab **c** de"))
	assert.Equal(t, []InlineToken{
		{Normal, "ab "},
		{Bold, "c"},
		{Normal, " de"},
	}, got)
	assert.Nil(t, Coalesce(nil))
}
