package ui

import (
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdviewer/markdown"
)

func newTestText(opts ...StyledTextOption) *StyledText {
	return NewStyledText(darkTheme(), append([]StyledTextOption{WithProfile(termenv.Ascii)}, opts...)...)
}

func plainRows(s *StyledText, width int) []string {
	rows := s.layout(width)
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.plain
	}
	return out
}

func TestStyledTextHostContract(t *testing.T) {
	s := newTestText()
	s.Insert("ab", markdown.TagBold)
	assert.Equal(t, 2, s.Cursor())
	s.Insert("cd")
	s.AddTag(markdown.TagItalic, 1, 3)

	assert.Equal(t, "abcd", s.Text())
	assert.Equal(t, []tagSpan{
		{markdown.TagBold, 0, 2},
		{markdown.TagItalic, 1, 3},
	}, s.spans)

	s.Clear()
	assert.Equal(t, 0, s.Cursor())
	assert.Empty(t, s.spans)
}

func TestStyledTextMergesContiguousTags(t *testing.T) {
	s := newTestText()
	s.Insert("a", markdown.TagCodeBlock)
	s.Insert("\n", markdown.TagCodeBlock)
	s.Insert("b", markdown.TagCodeBlock)
	assert.Equal(t, []tagSpan{{markdown.TagCodeBlock, 0, 3}}, s.spans)
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{"fits", "hello world", 20, []string{"hello world"}},
		{"word boundary", "hello world again", 11, []string{"hello ", "world again"}},
		{"long word is cut", "abcdefgh", 3, []string{"abc", "def", "gh"}},
		{"wide runes", "日本語です", 4, []string{"日本", "語で", "す"}},
		{"wide rune wider than width", "日本", 1, []string{"日", "本"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := []rune(tt.text)
			var got []string
			for _, seg := range wrap(rs, 0, len(rs), tt.width) {
				got = append(got, string(rs[seg[0]:seg[1]]))
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStyledTextLayoutLines(t *testing.T) {
	s := newTestText()
	s.Insert("one\n\ntwo three\n")

	assert.Equal(t, []string{"one", "", "two ", "three"}, plainRows(s, 5))
	assert.Equal(t, 4, s.Rows(5))
	assert.Equal(t, []string{"one", "", "two three"}, plainRows(s, 40))
}

func TestStyledTextRenderIsPlainWithoutColour(t *testing.T) {
	s := newTestText()
	s.Insert("Title", markdown.TagH1)
	s.Insert("\n")
	s.Insert("body", markdown.TagItalic)

	assert.Equal(t, "Title\nbody", ansi.Strip(s.Render(80)))
}

func applyDoc(t *testing.T, s *StyledText, doc string) *markdown.Session {
	t.Helper()
	session := markdown.NewSession(markdown.OpenerFunc(func(string) error { return nil }))
	markdown.Apply(s, markdown.Render(doc, t.TempDir(), session), session)
	return session
}

func TestStyledTextLinkRegions(t *testing.T) {
	s := newTestText()
	applyDoc(t, s, "go [here](https://a) or [there](https://b)")
	s.layout(80)

	assert.Equal(t, []string{"hyperlink_0", "hyperlink_1"}, s.Links())
	assert.Equal(t, "", s.LinkAt(0, 0))
	assert.Equal(t, "hyperlink_0", s.LinkAt(0, 3))
	assert.Equal(t, "hyperlink_0", s.LinkAt(0, 6))
	assert.Equal(t, "", s.LinkAt(0, 7))
	assert.Equal(t, "hyperlink_1", s.LinkAt(0, 11))
	assert.Equal(t, "", s.LinkAt(3, 0))
}

func TestStyledTextLinkRegionsAfterWrap(t *testing.T) {
	s := newTestText()
	applyDoc(t, s, "aaaa [bb](https://x)")
	s.layout(5)

	assert.Equal(t, []string{"aaaa ", "bb"}, plainRows(s, 5))
	assert.Equal(t, "hyperlink_0", s.LinkAt(1, 0))
	assert.Equal(t, 1, s.RowOf("hyperlink_0"))
	assert.Equal(t, -1, s.RowOf("hyperlink_9"))
}

func TestStyledTextFocus(t *testing.T) {
	s := newTestText()
	applyDoc(t, s, "[a](1) [b](2) [c](3)")

	assert.Equal(t, "", s.Focused())
	assert.Equal(t, "hyperlink_0", s.FocusNext(1))
	assert.Equal(t, "hyperlink_1", s.FocusNext(1))
	assert.Equal(t, "hyperlink_2", s.FocusNext(1))
	assert.Equal(t, "hyperlink_0", s.FocusNext(1))
	assert.Equal(t, "hyperlink_2", s.FocusNext(-1))

	s.SetFocus("")
	assert.Equal(t, "hyperlink_2", s.FocusNext(-1))
}

func TestStyledTextFocusWithoutLinks(t *testing.T) {
	s := newTestText()
	applyDoc(t, s, "no links")
	assert.Equal(t, "", s.FocusNext(1))
}

func TestStyledTextActivate(t *testing.T) {
	s := newTestText()
	var got []string
	s.Insert("x")
	s.AddTag("hyperlink_0", 0, 1)
	s.Bind("hyperlink_0", func() error {
		got = append(got, "hyperlink_0")
		return nil
	})
	boom := errors.New("boom")
	s.Bind("hyperlink_1", func() error { return boom })

	require.NoError(t, s.Activate("hyperlink_0"))
	assert.Equal(t, []string{"hyperlink_0"}, got)
	assert.ErrorIs(t, s.Activate("hyperlink_1"), boom)
	assert.Error(t, s.Activate("missing"))
}

func TestStyledTextHyperlinkEscapes(t *testing.T) {
	urls := map[string]string{"hyperlink_0": "https://example.com"}
	s := newTestText(WithHyperlinks(func(tag string) (string, bool) {
		u, ok := urls[tag]
		return u, ok
	}))
	applyDoc(t, s, "[site](https://example.com)")

	out := s.Render(80)
	assert.Contains(t, out, "\x1b]8;;https://example.com")
	assert.Equal(t, "site", ansi.Strip(out))
}

func TestStyledTextImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for x := 0; x < 8; x++ {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	mi := &markdown.Image{Path: "/tmp/pic.png", Format: "png", Data: img}

	t.Run("ascii profile describes the image", func(t *testing.T) {
		s := newTestText()
		s.Insert("before\n")
		s.InsertImage(mi)
		s.Insert("\nafter\n")
		assert.Equal(t, []string{"before", "[image: pic.png 8x4]", "after"}, plainRows(s, 40))
	})

	t.Run("colour profile draws half blocks", func(t *testing.T) {
		s := NewStyledText(darkTheme(), WithProfile(termenv.TrueColor), WithImageWidth(4))
		s.InsertImage(mi)
		rows := plainRows(s, 40)
		require.Len(t, rows, 1)
		assert.Equal(t, 4, strings.Count(ansi.Strip(rows[0]), upperHalf))
	})

	t.Run("nil image is ignored", func(t *testing.T) {
		s := newTestText()
		s.InsertImage(nil)
		assert.Equal(t, 0, s.Cursor())
	})
}

func TestStyledTextCodeGroups(t *testing.T) {
	s := newTestText()
	s.InsertCode("a := 1", "go", markdown.TagCodeBlock)
	s.Insert("\n\n", markdown.TagCodeBlock)
	s.InsertCode("b := 2", "go", markdown.TagCodeBlock)
	s.Insert("\n", markdown.TagCodeBlock)
	s.InsertCode("x = 1", "python", markdown.TagCodeBlock)

	groups := s.codeGroups()
	require.Len(t, groups, 2)
	assert.Equal(t, "a := 1\n\nb := 2", string(s.runes[groups[0].start:groups[0].end]))
	assert.Equal(t, "python", groups[1].lang)
}

func TestStyledTextHighlightsFencedCode(t *testing.T) {
	s := newTestText()
	applyDoc(t, s, "```go\nfunc f() {}\n```")

	keys, table := s.cells()
	idx := strings.Index(s.Text(), "func")
	require.GreaterOrEqual(t, idx, 0)
	c := table[keys[idx]]
	assert.True(t, c.code)
	assert.Contains(t, c.tags, markdown.TagCodeBlock)
	assert.Equal(t, "func f() {}", strings.TrimSpace(strings.Join(plainRows(s, 80), "\n")))
}
