package markdown

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark/ast"
)

var bothParsers = []Parser{ParserLines, ParserStructured}

// normalize merges adjacent text instructions with identical tags, since the
// two strategies may split plain runs differently.
func normalize(instrs []Instruction) []Instruction {
	var out []Instruction
	for _, in := range instrs {
		if n := len(out); n > 0 && mergeable(out[n-1], in) {
			out[n-1].Text += in.Text
			continue
		}
		out = append(out, in)
	}
	return out
}

func mergeable(a, b Instruction) bool {
	textOp := func(op Op) bool { return op == OpInsertText || op == OpInsertStyledText }
	return textOp(a.Op) && a.Op == b.Op && slices.Equal(a.Tags, b.Tags) && a.Lang == b.Lang
}

func hasTag(in Instruction, tag string) bool {
	return slices.Contains(in.Tags, tag)
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestRenderFencedCodeIsLiteral(t *testing.T) {
	for _, p := range bothParsers {
		t.Run(string(p), func(t *testing.T) {
			instrs := Render("```\n**not bold**\n```", t.TempDir(), NewSession(nil), WithParser(p))

			var found bool
			for _, in := range instrs {
				assert.False(t, hasTag(in, TagBold), "unexpected bold span %s", in)
				if in.Text == "**not bold**" {
					found = true
					assert.Equal(t, []string{TagCodeBlock}, in.Tags)
				}
			}
			assert.True(t, found)
		})
	}
}

func TestRenderHeadingPrecedence(t *testing.T) {
	for _, p := range bothParsers {
		t.Run(string(p), func(t *testing.T) {
			instrs := Render("### h", "", NewSession(nil), WithParser(p))
			require.Len(t, instrs, 2)
			assert.Equal(t, Instruction{Op: OpInsertStyledText, Text: "h", Tags: []string{TagH3}}, instrs[0])
			assert.Equal(t, OpInsertNewline, instrs[1].Op)
		})
	}
}

func TestRenderMissingImage(t *testing.T) {
	dir := t.TempDir()
	want := "[Image not found: " + filepath.Join(dir, "img", "missing.png") + "]"
	for _, p := range bothParsers {
		t.Run(string(p), func(t *testing.T) {
			s := NewSession(nil)
			instrs := Render("![x](img/missing.png)", dir, s, WithParser(p))
			require.NotEmpty(t, instrs)
			assert.Equal(t, Instruction{Op: OpInsertText, Text: want}, instrs[0])
			assert.Equal(t, OpInsertNewline, instrs[len(instrs)-1].Op)
			assert.Empty(t, s.Images())
		})
	}
}

func TestRenderUnsupportedImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fake.png")
	require.NoError(t, os.WriteFile(path, []byte("definitely not an image"), 0o644))

	for _, p := range bothParsers {
		t.Run(string(p), func(t *testing.T) {
			instrs := Render("![x](fake.png)", dir, NewSession(nil), WithParser(p))
			assert.Equal(t, "[Unsupported image format: "+path+"]", instrs[0].Text)
		})
	}
}

func TestRenderImageIsCached(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "dot.png"), 4, 2)

	for _, p := range bothParsers {
		t.Run(string(p), func(t *testing.T) {
			s := NewSession(nil)
			instrs := Render("![dot](dot.png)", dir, s, WithParser(p))
			require.Len(t, instrs, 2)
			assert.Equal(t, OpInsertImage, instrs[0].Op)
			assert.Equal(t, OpInsertNewline, instrs[1].Op)
			require.Len(t, s.Images(), 1)
			assert.Same(t, instrs[0].Image, s.Images()[0])
			assert.Equal(t, "png", s.Images()[0].Format)
			assert.Equal(t, image.Rect(0, 0, 4, 2), s.Images()[0].Bounds())
		})
	}
}

func TestRenderTwoLinks(t *testing.T) {
	for _, p := range bothParsers {
		t.Run(string(p), func(t *testing.T) {
			s := NewSession(nil)
			instrs := normalize(Render("[a](u1) mid [b](u2)", "", s, WithParser(p)))
			require.Len(t, instrs, 4)

			assert.Equal(t, OpInsertHyperlink, instrs[0].Op)
			assert.Equal(t, "a", instrs[0].Text)
			assert.Equal(t, "u1", instrs[0].URL)
			assert.Equal(t, Instruction{Op: OpInsertText, Text: " mid "}, instrs[1])
			assert.Equal(t, OpInsertHyperlink, instrs[2].Op)
			assert.Equal(t, "b", instrs[2].Text)
			assert.Equal(t, "u2", instrs[2].URL)
			assert.NotEqual(t, instrs[0].LinkTag, instrs[2].LinkTag)

			assert.Equal(t, []Link{{"hyperlink_0", "u1"}, {"hyperlink_1", "u2"}}, s.Links())
		})
	}
}

func TestRenderIdempotent(t *testing.T) {
	doc := "# T\n\n**b** [l](u) `c`\n- x\n```sh\nls\n```\n![m](missing.png)\n"
	for _, p := range bothParsers {
		t.Run(string(p), func(t *testing.T) {
			first := Render(doc, "/base", NewSession(nil), WithParser(p))
			second := Render(doc, "/base", NewSession(nil), WithParser(p))
			assert.Equal(t, first, second)
		})
	}
}

func TestRenderResetsSession(t *testing.T) {
	s := NewSession(nil)
	Render("[a](u)", "", s)
	Render("[b](v)", "", s)
	assert.Equal(t, []Link{{"hyperlink_0", "v"}}, s.Links())
}

func TestRenderStrategiesAgree(t *testing.T) {
	docs := map[string]string{
		"emphasis":       "# Title\n\nSome **bold** and *italic* text.\n",
		"fenced code":    "```go\nfmt.Println(1)\n\nreturn\n```",
		"bullet list":    "- one\n- two",
		"ordered list":   "1. a\n2. b",
		"heading link":   "## See [docs](http://x)",
		"blank lines":    "a\n\n\nb",
		"inline code":    "use `x` here",
		"soft break":     "a\nb",
		"missing image":  "intro\n\n![m](nope.png)\n\noutro",
		"paragraph link": "go to [home](https://example.com) now",
		"bare hash":      "#",
		"hash tag":       "#tag",
		"deep heading":   "#### deep",
		"hash then text": "intro\n\n#\n\noutro",
		"html block":     "<div>\nhello\n</div>",
		"inline html":    "a <b>x</b> c",
		"thematic break": "a\n\n---\n\nb",
		"empty fence":    "```\n```",
		"setext heading": "Title\n===\n\nbody",
		"bold italic":    "***x*** and **y**",
	}
	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			lines := Render(doc, "/base", NewSession(nil), WithParser(ParserLines))
			tree := Render(doc, "/base", NewSession(nil), WithParser(ParserStructured))
			assert.Equal(t, normalize(lines), normalize(tree))
		})
	}
}

func TestRenderDefaultParserKeepsLiteralText(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"bare hash", "#", "#\n"},
		{"deep heading", "#### deep", "#### deep\n"},
		{"html block", "<div>\nhello\n</div>", "<div>\nhello\n</div>\n"},
		{"thematic break", "---", "---\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			instrs := Render(tt.doc, "", NewSession(nil))
			assert.Equal(t, tt.want, PlainText(instrs))
		})
	}
}

func TestRenderHeadingsNeedSpaceAfterHashes(t *testing.T) {
	instrs := Render("#### deep\n### ok", "", NewSession(nil), WithParser(ParserStructured))
	for _, in := range instrs {
		if in.Text == "deep" || in.Text == "#### deep" {
			assert.False(t, hasTag(in, HeadingTag(3)), "level four is plain text")
		}
		if in.Text == "ok" {
			assert.True(t, hasTag(in, HeadingTag(3)))
		}
	}
}

func TestRenderEmptyFenceIsTagged(t *testing.T) {
	instrs := Render("```\n```", "", NewSession(nil), WithParser(ParserStructured))
	require.Len(t, instrs, 2)
	for _, in := range instrs {
		assert.Equal(t, OpInsertNewline, in.Op)
		assert.True(t, hasTag(in, TagCodeBlock))
	}
}

func TestRenderUnknownNodesRecurse(t *testing.T) {
	instrs := Render("> quoted *text*", "", NewSession(nil), WithParser(ParserStructured))
	assert.Equal(t, "quoted text\n", PlainText(instrs))
}

type failingStrategy struct {
	panics bool
}

func (failingStrategy) name() string { return "failing" }

func (f failingStrategy) render(doc string, e *emitter) error {
	// Leave partial side effects behind.
	e.link("stale", "http://stale")
	e.text("partial")
	if f.panics {
		panic("boom")
	}
	return errors.New("cannot parse")
}

func TestRenderFallsBackToLines(t *testing.T) {
	doc := "# h\n[a](u) **b**"
	want := Render(doc, "", NewSession(nil), WithParser(ParserLines))

	cases := map[string]strategy{
		"error":       failingStrategy{},
		"panic":       failingStrategy{panics: true},
		"nil tree":    treeStrategy{parse: func([]byte) ast.Node { return nil }},
		"parse panic": treeStrategy{parse: func([]byte) ast.Node { panic("bad tree") }},
	}
	for name, st := range cases {
		t.Run(name, func(t *testing.T) {
			s := NewSession(nil)
			got := Render(doc, "", s, withStructured(st))
			assert.Equal(t, want, got)
			assert.Equal(t, []Link{{"hyperlink_0", "u"}}, s.Links())
		})
	}
}

func TestRenderEmptyDocument(t *testing.T) {
	for _, p := range bothParsers {
		instrs := Render("", "", NewSession(nil), WithParser(p))
		assert.Equal(t, []Instruction{{Op: OpInsertNewline}}, instrs, string(p))
	}
}

func TestParseParser(t *testing.T) {
	assert.Equal(t, ParserLines, ParseParser("lines"))
	assert.Equal(t, ParserLines, ParseParser(" Raw "))
	assert.Equal(t, ParserStructured, ParseParser("structured"))
	assert.Equal(t, ParserStructured, ParseParser("auto"))
	assert.Equal(t, ParserStructured, ParseParser(""))
}

func TestPlainInstructions(t *testing.T) {
	got := plainInstructions("a\n\nb")
	assert.Equal(t, "a\n\nb\n", PlainText(got))
}
