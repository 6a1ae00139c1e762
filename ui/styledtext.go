package ui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"

	"mdviewer/markdown"
)

// objectReplacement stands in for an embedded image in the rune buffer.
const objectReplacement = '￼'

type tagSpan struct {
	tag        string
	start, end int
}

type codeRun struct {
	start, end int
	lang       string
}

// region is a clickable hyperlink range on one row, in cell columns.
type region struct {
	tag        string
	start, end int
}

type row struct {
	text  string
	plain string
	links []region
}

// cell is the interned attribute set of a rune.
type cell struct {
	tags  string
	link  string
	token chroma.TokenType
	code  bool
}

// LinkResolver returns the URL registered for a hyperlink tag.
type LinkResolver func(tag string) (string, bool)

// StyledTextOption configures a StyledText.
type StyledTextOption func(*StyledText)

// WithHyperlinks emits OSC 8 hyperlinks for link runs, resolved by resolve.
func WithHyperlinks(resolve LinkResolver) StyledTextOption {
	return func(s *StyledText) { s.resolve = resolve }
}

// WithImageWidth caps image thumbnails at cols cells.
func WithImageWidth(cols int) StyledTextOption {
	return func(s *StyledText) { s.imageMax = cols }
}

// WithProfile overrides the detected terminal colour profile.
func WithProfile(p termenv.Profile) StyledTextOption {
	return func(s *StyledText) { s.profile = p }
}

// StyledText is a terminal markdown.Host. It keeps the inserted runes with
// their tag ranges, lays them out to a width on demand and remembers where
// every hyperlink landed so mouse clicks and keyboard focus can find them.
type StyledText struct {
	theme    Theme
	hl       *Highlighter
	resolve  LinkResolver
	imageMax int
	profile  termenv.Profile

	runes    []rune
	spans    []tagSpan
	code     []codeRun
	images   map[int]*markdown.Image
	bindings map[string]func() error

	focus string

	width  int
	rows   []row
	thumbs map[*markdown.Image][]string
	dirty  bool
}

var _ markdown.Host = (*StyledText)(nil)
var _ markdown.CodeHost = (*StyledText)(nil)

func NewStyledText(theme Theme, opts ...StyledTextOption) *StyledText {
	s := &StyledText{
		theme:    theme,
		hl:       NewHighlighter(theme.Chroma),
		imageMax: 60,
		profile:  lipgloss.ColorProfile(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Clear()
	return s
}

func (s *StyledText) Clear() {
	s.runes = s.runes[:0]
	s.spans = nil
	s.code = nil
	s.images = make(map[int]*markdown.Image)
	s.bindings = make(map[string]func() error)
	s.thumbs = make(map[*markdown.Image][]string)
	s.focus = ""
	s.dirty = true
}

func (s *StyledText) Insert(text string, tags ...string) {
	start := len(s.runes)
	s.runes = append(s.runes, []rune(text)...)
	for _, tag := range tags {
		s.AddTag(tag, start, len(s.runes))
	}
	s.dirty = true
}

// InsertCode inserts fenced code that is highlighted as lang at layout time.
func (s *StyledText) InsertCode(text, lang string, tags ...string) {
	start := len(s.runes)
	s.Insert(text, tags...)
	s.code = append(s.code, codeRun{start: start, end: len(s.runes), lang: lang})
}

func (s *StyledText) Cursor() int { return len(s.runes) }

func (s *StyledText) AddTag(tag string, start, end int) {
	if start >= end {
		return
	}
	// Extend the previous range of the same tag when contiguous.
	if n := len(s.spans); n > 0 && s.spans[n-1].tag == tag && s.spans[n-1].end == start {
		s.spans[n-1].end = end
	} else {
		s.spans = append(s.spans, tagSpan{tag: tag, start: start, end: end})
	}
	s.dirty = true
}

func (s *StyledText) InsertImage(img *markdown.Image) {
	if img == nil {
		return
	}
	s.images[len(s.runes)] = img
	s.runes = append(s.runes, objectReplacement)
	s.dirty = true
}

func (s *StyledText) Bind(tag string, action func() error) {
	s.bindings[tag] = action
	s.dirty = true
}

// Text returns the inserted text. Images appear as U+FFFC.
func (s *StyledText) Text() string { return string(s.runes) }

// Activate runs the action bound to tag.
func (s *StyledText) Activate(tag string) error {
	action, ok := s.bindings[tag]
	if !ok {
		return fmt.Errorf("no action bound to %q", tag)
	}
	return action()
}

// cells interns the attributes of every rune and returns the per-rune index
// into the returned attribute table.
func (s *StyledText) cells() ([]int, []cell) {
	tags := make([][]string, len(s.runes))
	links := make([]string, len(s.runes))
	for _, sp := range s.spans {
		_, isLink := s.bindings[sp.tag]
		for i := sp.start; i < sp.end && i < len(s.runes); i++ {
			if isLink {
				links[i] = sp.tag
				continue
			}
			if !slices.Contains(tags[i], sp.tag) {
				tags[i] = append(tags[i], sp.tag)
			}
		}
	}

	tokens := make([]chroma.TokenType, len(s.runes))
	highlighted := make([]bool, len(s.runes))
	for _, g := range s.codeGroups() {
		types, ok := s.hl.TokenTypes(string(s.runes[g.start:g.end]), g.lang)
		if !ok {
			continue
		}
		for i, tt := range types {
			tokens[g.start+i] = tt
			highlighted[g.start+i] = true
		}
	}

	index := make(map[cell]int)
	var table []cell
	keys := make([]int, len(s.runes))
	for i := range s.runes {
		c := cell{tags: strings.Join(tags[i], "\x00"), link: links[i], code: highlighted[i]}
		if c.code {
			c.token = tokens[i]
		}
		k, ok := index[c]
		if !ok {
			k = len(table)
			index[c] = k
			table = append(table, c)
		}
		keys[i] = k
	}
	return keys, table
}

// codeGroups joins consecutive code runs of one language that are separated
// only by newlines, so a fenced block is tokenised as a whole.
func (s *StyledText) codeGroups() []codeRun {
	var groups []codeRun
	for _, r := range s.code {
		if n := len(groups); n > 0 && groups[n-1].lang == r.lang && onlyNewlines(s.runes[groups[n-1].end:r.start]) {
			groups[n-1].end = r.end
			continue
		}
		groups = append(groups, r)
	}
	return groups
}

func onlyNewlines(rs []rune) bool {
	for _, r := range rs {
		if r != '\n' {
			return false
		}
	}
	return true
}

func (s *StyledText) cellStyle(c cell) lipgloss.Style {
	var tags []string
	if c.tags != "" {
		tags = strings.Split(c.tags, "\x00")
	}
	if c.link != "" {
		tags = append(tags, markdown.TagHyperlink)
	}
	st := s.theme.style(tags)
	if c.code {
		st = s.hl.Style(c.token).Inherit(st)
	}
	if c.link != "" && c.link == s.focus {
		st = s.theme.Focus.Inherit(st)
	}
	return st
}

// layout wraps the buffer to width and renders every row.
func (s *StyledText) layout(width int) []row {
	if width < 1 {
		width = 1
	}
	if !s.dirty && width == s.width {
		return s.rows
	}

	keys, table := s.cells()
	styles := make([]lipgloss.Style, len(table))
	for i, c := range table {
		styles[i] = s.cellStyle(c)
	}

	s.rows = s.rows[:0]
	start := 0
	for i := 0; i <= len(s.runes); i++ {
		if i < len(s.runes) && s.runes[i] != '\n' {
			continue
		}
		s.layoutLine(start, i, width, keys, table, styles)
		start = i + 1
	}
	// A trailing newline ends the last line rather than starting a new one.
	if len(s.runes) > 0 && s.runes[len(s.runes)-1] == '\n' && len(s.rows) > 0 {
		s.rows = s.rows[:len(s.rows)-1]
	}

	s.width = width
	s.dirty = false
	return s.rows
}

// layoutLine appends the rows of the logical line runes[a:b].
func (s *StyledText) layoutLine(a, b, width int, keys []int, table []cell, styles []lipgloss.Style) {
	if a == b {
		s.rows = append(s.rows, row{})
		return
	}
	segStart := a
	for i := a; i < b; i++ {
		img, ok := s.images[i]
		if !ok || s.runes[i] != objectReplacement {
			continue
		}
		if i > segStart {
			for _, seg := range wrap(s.runes, segStart, i, width) {
				s.rows = append(s.rows, s.renderRow(seg[0], seg[1], keys, table, styles))
			}
		}
		for _, r := range s.thumbnail(img, width) {
			s.rows = append(s.rows, row{text: r, plain: r})
		}
		segStart = i + 1
	}
	if segStart < b {
		for _, seg := range wrap(s.runes, segStart, b, width) {
			s.rows = append(s.rows, s.renderRow(seg[0], seg[1], keys, table, styles))
		}
	}
}

func (s *StyledText) thumbnail(img *markdown.Image, width int) []string {
	if rows, ok := s.thumbs[img]; ok {
		return rows
	}
	cols := min(width, s.imageMax)
	rows := imageRows(img.Path, img.Data, cols, s.profile, s.theme.Placeholder)
	s.thumbs[img] = rows
	return rows
}

// wrap splits runes[a:b] into row ranges no wider than width cells,
// breaking after the last space where possible.
func wrap(rs []rune, a, b, width int) [][2]int {
	var segs [][2]int
	start, col, lastSpace := a, 0, -1
	for i := a; i < b; i++ {
		w := runewidth.RuneWidth(rs[i])
		for col+w > width && i > start {
			brk := i
			if lastSpace >= start {
				brk = lastSpace + 1
			}
			segs = append(segs, [2]int{start, brk})
			start = brk
			col = runewidth.StringWidth(string(rs[start:i]))
			lastSpace = -1
		}
		if rs[i] == ' ' {
			lastSpace = i
		}
		col += w
	}
	return append(segs, [2]int{start, b})
}

// renderRow styles runes[a:b], grouping runs of identical attributes.
func (s *StyledText) renderRow(a, b int, keys []int, table []cell, styles []lipgloss.Style) row {
	var text, plain strings.Builder
	var links []region
	col := 0
	for i := a; i < b; {
		j := i + 1
		for j < b && keys[j] == keys[i] {
			j++
		}
		chunk := string(s.runes[i:j])
		w := runewidth.StringWidth(chunk)
		styled := styles[keys[i]].Render(chunk)
		if tag := table[keys[i]].link; tag != "" {
			links = append(links, region{tag: tag, start: col, end: col + w})
			if s.resolve != nil {
				if url, ok := s.resolve(tag); ok {
					styled = termenv.Hyperlink(url, styled)
				}
			}
		}
		text.WriteString(styled)
		plain.WriteString(chunk)
		col += w
		i = j
	}
	return row{text: text.String(), plain: plain.String(), links: links}
}

// Render lays the content out to width and returns it as one string.
func (s *StyledText) Render(width int) string {
	rows := s.layout(width)
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = r.text
	}
	return strings.Join(lines, "\n")
}

// Rows returns the number of rows at width.
func (s *StyledText) Rows(width int) int {
	return len(s.layout(width))
}

// LinkAt returns the hyperlink tag under the cell (row, col) of the last
// layout, or "".
func (s *StyledText) LinkAt(rowIdx, col int) string {
	if rowIdx < 0 || rowIdx >= len(s.rows) {
		return ""
	}
	for _, r := range s.rows[rowIdx].links {
		if col >= r.start && col < r.end {
			return r.tag
		}
	}
	return ""
}

// Links returns the hyperlink tags in display order.
func (s *StyledText) Links() []string {
	var out []string
	seen := make(map[string]bool)
	for _, sp := range s.spans {
		if _, ok := s.bindings[sp.tag]; ok && !seen[sp.tag] {
			seen[sp.tag] = true
			out = append(out, sp.tag)
		}
	}
	return out
}

// Focused returns the focused hyperlink tag, or "".
func (s *StyledText) Focused() string { return s.focus }

// FocusNext moves link focus by delta, wrapping around, and returns the new
// focus.
func (s *StyledText) FocusNext(delta int) string {
	links := s.Links()
	if len(links) == 0 {
		return ""
	}
	i := slices.Index(links, s.focus)
	switch {
	case i < 0 && delta < 0:
		i = len(links) - 1
	case i < 0:
		i = 0
	default:
		i = ((i+delta)%len(links) + len(links)) % len(links)
	}
	s.SetFocus(links[i])
	return s.focus
}

// SetFocus focuses tag; "" clears the focus.
func (s *StyledText) SetFocus(tag string) {
	if tag != s.focus {
		s.focus = tag
		s.dirty = true
	}
}

// RowOf returns the first row of tag in the last layout, or -1.
func (s *StyledText) RowOf(tag string) int {
	for i, r := range s.rows {
		for _, reg := range r.links {
			if reg.tag == tag {
				return i
			}
		}
	}
	return -1
}
