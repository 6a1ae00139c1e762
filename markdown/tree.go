package markdown

import (
	"bytes"
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// treeStrategy walks a goldmark AST and applies the same per-construct rules
// as the line scanner.
type treeStrategy struct {
	parse func(src []byte) ast.Node
}

func newTreeStrategy() treeStrategy {
	md := goldmark.New()
	return treeStrategy{parse: func(src []byte) ast.Node {
		return md.Parser().Parse(text.NewReader(src))
	}}
}

func (treeStrategy) name() string { return "structured" }

func (t treeStrategy) render(doc string, e *emitter) error {
	src := []byte(doc)
	root := t.parse(src)
	if root == nil {
		return errors.New("parser returned no document")
	}
	w := &treeWalker{src: src, e: e, lines: newLineIndex(src)}
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		w.block(n)
	}
	w.trailingBlankLines()
	return nil
}

// lineIndex holds the byte offset at which each source line starts.
type lineIndex []int

func newLineIndex(src []byte) lineIndex {
	li := lineIndex{0}
	for i, b := range src {
		if b == '\n' {
			li = append(li, i+1)
		}
	}
	return li
}

// lineOf returns the zero-based line containing offset.
func (li lineIndex) lineOf(offset int) int {
	return sort.Search(len(li), func(i int) bool { return li[i] > offset }) - 1
}

type treeWalker struct {
	src   []byte
	e     *emitter
	lines lineIndex
	// nextLine is the first source line not yet accounted for.
	nextLine int
	tags     []string
}

func (w *treeWalker) line(i int) string {
	if i < 0 || i >= len(w.lines) {
		return ""
	}
	end := len(w.src)
	if i+1 < len(w.lines) {
		end = w.lines[i+1] - 1
	}
	return string(w.src[w.lines[i]:end])
}

// span returns the first and last source line a block occupies.
func (w *treeWalker) span(n ast.Node) (int, int, bool) {
	switch n := n.(type) {
	case *ast.FencedCodeBlock:
		lines := n.Lines()
		var first, last int
		switch {
		case lines.Len() > 0:
			first = w.lines.lineOf(lines.At(0).Start) - 1
			last = w.lines.lineOf(lines.At(lines.Len() - 1).Start)
		case n.Info != nil:
			first = w.lines.lineOf(n.Info.Segment.Start)
			last = first
		default:
			first = w.nextContentLine()
			last = first
		}
		if strings.HasPrefix(strings.TrimSpace(w.line(last+1)), fence) {
			last++
		}
		return first, last, true
	case *ast.ListItem:
		if c := n.FirstChild(); c != nil {
			return w.span(c)
		}
		return 0, 0, false
	case *ast.Heading:
		lines := n.Lines()
		if lines.Len() == 0 {
			first := w.nextContentLine()
			return first, first, true
		}
		first := w.lines.lineOf(lines.At(0).Start)
		last := w.lines.lineOf(lines.At(lines.Len() - 1).Start)
		setext := !strings.Contains(w.lineBefore(lines.At(0).Start), "#")
		if setext && isSetextUnderline(w.line(last+1)) {
			last++
		}
		return first, last, true
	case *ast.HTMLBlock:
		lines := n.Lines()
		first, last := -1, -1
		if lines.Len() > 0 {
			first = w.lines.lineOf(lines.At(0).Start)
			last = w.lines.lineOf(lines.At(lines.Len() - 1).Start)
		}
		if n.HasClosure() {
			closure := w.lines.lineOf(n.ClosureLine.Start)
			if first < 0 {
				first = closure
			}
			last = max(last, closure)
		}
		return first, last, first >= 0
	case *ast.ThematicBreak:
		first := w.nextContentLine()
		return first, first, true
	}
	if n.Type() == ast.TypeBlock {
		if lines := n.Lines(); lines != nil && lines.Len() > 0 {
			return w.lines.lineOf(lines.At(0).Start), w.lines.lineOf(lines.At(lines.Len() - 1).Start), true
		}
	}
	first, ok := -1, false
	last := -1
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		f, l, cok := w.span(c)
		if !cok {
			continue
		}
		if !ok {
			first, ok = f, true
		}
		if l > last {
			last = l
		}
	}
	return first, last, ok
}

// nextContentLine is the first non-blank line not yet accounted for. Blocks
// that carry no source segments (empty headings, thematic breaks, empty
// fences) sit there.
func (w *treeWalker) nextContentLine() int {
	i := w.nextLine
	for i < len(w.lines)-1 && strings.TrimSpace(w.line(i)) == "" {
		i++
	}
	return i
}

// lineBefore returns the text between the start of offset's line and offset.
func (w *treeWalker) lineBefore(offset int) string {
	return string(w.src[w.lines[w.lines.lineOf(offset)]:offset])
}

// isSetextUnderline reports whether line is a run of '=' or '-'.
func isSetextUnderline(line string) bool {
	t := strings.TrimSpace(line)
	return t != "" && (strings.Trim(t, "=") == "" || strings.Trim(t, "-") == "")
}

// gap emits one newline for every source line between the previous block and
// n, so blank lines survive as vertical space. It returns n's span.
func (w *treeWalker) gap(n ast.Node) (int, int, bool) {
	first, last, ok := w.span(n)
	if !ok {
		return 0, 0, false
	}
	for i := w.nextLine; i < first; i++ {
		w.e.newline()
	}
	if last+1 > w.nextLine {
		w.nextLine = last + 1
	}
	return first, last, true
}

// literal renders source lines first..last with the line rules, for
// constructs the dialect does not recognise.
func (w *treeWalker) literal(first, last int) {
	var st scanState
	for i := first; i <= last; i++ {
		for _, ev := range classify(&st, strings.TrimSuffix(w.line(i), "\r")) {
			w.e.event(ev)
		}
	}
}

// atxHeading reports whether h was written as "# ", "## " or "### " followed
// by content. Setext headings, empty headings and deeper levels are not
// headings in this dialect.
func (w *treeWalker) atxHeading(h *ast.Heading) bool {
	lines := h.Lines()
	if lines.Len() != 1 || h.Level > 3 {
		return false
	}
	before := w.lineBefore(lines.At(0).Start)
	marker := strings.TrimLeft(strings.TrimSpace(before), "> \t")
	return marker == strings.Repeat("#", h.Level) &&
		strings.Contains(before, headingPrefixes[3-h.Level].prefix)
}

func (w *treeWalker) trailingBlankLines() {
	for i := w.nextLine; i < len(w.lines); i++ {
		w.e.newline()
	}
}

func (w *treeWalker) push(tag string) { w.tags = append(w.tags, tag) }
func (w *treeWalker) pop()            { w.tags = w.tags[:len(w.tags)-1] }

func (w *treeWalker) block(n ast.Node) {
	var first, last int
	var spanned bool
	if _, ok := n.(*ast.List); !ok {
		first, last, spanned = w.gap(n)
	}
	switch n := n.(type) {
	case *ast.Heading:
		if !w.atxHeading(n) {
			if spanned {
				w.literal(first, last)
			}
			return
		}
		w.push(HeadingTag(n.Level))
		w.inlines(n)
		w.pop()
		w.e.newline()
	case *ast.Paragraph:
		if img, ok := soleImage(n); ok {
			w.e.image(string(img.Destination))
			return
		}
		w.inlines(n)
		w.e.newline()
	case *ast.TextBlock:
		w.inlines(n)
		w.e.newline()
	case *ast.FencedCodeBlock:
		if !spanned {
			return
		}
		lang := string(n.Language(w.src))
		w.e.newline(TagCodeBlock)
		w.codeLines(n, lang)
		if last > first && strings.HasPrefix(strings.TrimSpace(w.line(last)), fence) {
			w.e.newline(TagCodeBlock)
		}
	case *ast.CodeBlock:
		w.codeLines(n, "")
	case *ast.List:
		w.list(n)
	case *ast.HTMLBlock, *ast.ThematicBreak:
		if spanned {
			w.literal(first, last)
		}
	default:
		// Unknown block: render children without markup.
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if c.Type() == ast.TypeInline {
				w.inline(c)
				continue
			}
			w.block(c)
		}
	}
}

func (w *treeWalker) codeLines(n ast.Node, lang string) {
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		v := strings.TrimRight(string(seg.Value(w.src)), "\r\n")
		w.e.code(v, lang)
		w.e.newline(TagCodeBlock)
	}
}

func (w *treeWalker) list(l *ast.List) {
	num := l.Start
	for item := l.FirstChild(); item != nil; item = item.NextSibling() {
		w.gap(item)
		marker := "- "
		if l.IsOrdered() {
			marker = strconv.Itoa(num) + ". "
			num++
		}
		w.e.text(marker)
		// open is true while the item's current output line lacks its newline.
		open, wrote := true, false
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			switch c := c.(type) {
			case *ast.TextBlock, *ast.Paragraph:
				if open && wrote {
					w.e.newline()
				}
				w.inlines(c)
				open, wrote = true, true
			case *ast.List:
				if open {
					w.e.newline()
					open = false
				}
				w.list(c)
			default:
				if open {
					w.e.newline()
					open = false
				}
				w.block(c)
			}
		}
		if open {
			w.e.newline()
		}
	}
}

func (w *treeWalker) inlines(n ast.Node) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		w.inline(c)
	}
}

func (w *treeWalker) inline(n ast.Node) {
	switch n := n.(type) {
	case *ast.Text:
		w.e.text(string(n.Segment.Value(w.src)), w.tags...)
		if n.SoftLineBreak() || n.HardLineBreak() {
			w.e.newline()
		}
	case *ast.String:
		w.e.text(string(n.Value), w.tags...)
	case *ast.CodeSpan:
		w.e.text(w.plain(n), withTag(w.tags, TagInlineCode)...)
	case *ast.Emphasis:
		if inner, ok := strongEmphasis(n); ok {
			w.push(TagBold)
			w.push(TagItalic)
			w.inlines(inner)
			w.pop()
			w.pop()
			return
		}
		tag := TagItalic
		if n.Level >= 2 {
			tag = TagBold
		}
		w.push(tag)
		w.inlines(n)
		w.pop()
	case *ast.RawHTML:
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			w.e.text(string(seg.Value(w.src)), w.tags...)
		}
	case *ast.Link:
		w.e.link(w.plain(n), string(n.Destination), w.tags...)
	case *ast.AutoLink:
		url := string(n.URL(w.src))
		w.e.link(string(n.Label(w.src)), url, w.tags...)
	case *ast.Image:
		w.e.image(string(n.Destination))
	default:
		// Unknown inline: recurse into children without markup.
		w.inlines(n)
	}
}

// plain concatenates the text of all descendants of n.
func (w *treeWalker) plain(n ast.Node) string {
	var b bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch c := c.(type) {
		case *ast.Text:
			b.Write(c.Segment.Value(w.src))
			if c.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(c.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// strongEmphasis reports whether n is "***x***": an emphasis whose only child
// is an emphasis of the other kind. It returns the inner node.
func strongEmphasis(n *ast.Emphasis) (*ast.Emphasis, bool) {
	c, ok := n.FirstChild().(*ast.Emphasis)
	if !ok || c.NextSibling() != nil || (c.Level >= 2) == (n.Level >= 2) {
		return nil, false
	}
	return c, true
}

// soleImage reports whether p holds nothing but one image.
func soleImage(p *ast.Paragraph) (*ast.Image, bool) {
	c := p.FirstChild()
	if c == nil || c.NextSibling() != nil {
		return nil, false
	}
	img, ok := c.(*ast.Image)
	return img, ok
}
