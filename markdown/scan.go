package markdown

import (
	"regexp"
	"strings"
)

var (
	imagePattern = regexp.MustCompile(`^!\[(.*?)\]\((.*?)\)`)
	linkPattern  = regexp.MustCompile(`\[(.*?)\]\((.*?)\)`)
	listPattern  = regexp.MustCompile(`^(?:([-*+])|(\d{1,9})[.)])[ \t]+(.*)$`)
)

const fence = "```"

// headingPrefixes are checked longest first.
var headingPrefixes = [...]struct {
	prefix string
	level  int
}{
	{"### ", 3},
	{"## ", 2},
	{"# ", 1},
}

// scanState is the line classifier's only state.
type scanState struct {
	inCodeBlock bool
	lang        string
}

// lineRule classifies one line. line has its trailing "\r" removed; trimmed
// has surrounding whitespace removed.
type lineRule struct {
	name  string
	match func(st *scanState, line, trimmed string) ([]BlockEvent, bool)
}

// lineRules is evaluated top to bottom; the first match wins.
var lineRules = []lineRule{
	{"fence", matchFence},
	{"code", matchCodeLine},
	{"blank", matchBlank},
	{"image", matchImage},
	{"heading", matchHeading},
	{"list", matchListItem},
	{"paragraph", matchParagraph},
}

// Scan splits a document into lines and classifies each one.
func Scan(doc string) []BlockEvent {
	var st scanState
	lines := strings.Split(doc, "\n")
	events := make([]BlockEvent, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		events = append(events, classify(&st, line)...)
	}
	return events
}

func classify(st *scanState, line string) []BlockEvent {
	trimmed := strings.TrimSpace(line)
	for _, r := range lineRules {
		if evs, ok := r.match(st, line, trimmed); ok {
			return evs
		}
	}
	// matchParagraph accepts everything.
	return nil
}

func matchFence(st *scanState, _, trimmed string) ([]BlockEvent, bool) {
	if !strings.HasPrefix(trimmed, fence) {
		return nil, false
	}
	st.inCodeBlock = !st.inCodeBlock
	if st.inCodeBlock {
		st.lang = strings.TrimSpace(strings.TrimLeft(trimmed, "`"))
	}
	ev := BlockEvent{Kind: EventCodeBlockToggle, Lang: st.lang}
	if !st.inCodeBlock {
		st.lang = ""
	}
	return []BlockEvent{ev}, true
}

func matchCodeLine(st *scanState, line, _ string) ([]BlockEvent, bool) {
	if !st.inCodeBlock {
		return nil, false
	}
	return []BlockEvent{{Kind: EventCodeBlockLine, Text: line, Lang: st.lang}}, true
}

func matchBlank(_ *scanState, _, trimmed string) ([]BlockEvent, bool) {
	if trimmed != "" {
		return nil, false
	}
	return []BlockEvent{{Kind: EventBlankLine}}, true
}

func matchImage(_ *scanState, _, trimmed string) ([]BlockEvent, bool) {
	m := imagePattern.FindStringSubmatchIndex(trimmed)
	if m == nil {
		return nil, false
	}
	evs := []BlockEvent{{
		Kind: EventImage,
		Text: trimmed[m[2]:m[3]],
		Path: strings.TrimSpace(trimmed[m[4]:m[5]]),
	}}
	if rest := strings.TrimSpace(trimmed[m[1]:]); rest != "" {
		evs = append(evs, BlockEvent{Kind: EventParagraph, Runs: ExtractRuns(rest)})
	}
	return evs, true
}

func matchHeading(_ *scanState, _, trimmed string) ([]BlockEvent, bool) {
	for _, h := range headingPrefixes {
		if strings.HasPrefix(trimmed, h.prefix) {
			return []BlockEvent{{
				Kind:  EventHeading,
				Level: h.level,
				Runs:  ExtractRuns(trimmed[len(h.prefix):]),
			}}, true
		}
	}
	return nil, false
}

func matchListItem(_ *scanState, _, trimmed string) ([]BlockEvent, bool) {
	m := listPattern.FindStringSubmatch(trimmed)
	if m == nil {
		return nil, false
	}
	marker := "- "
	if m[2] != "" {
		marker = m[2] + ". "
	}
	return []BlockEvent{{Kind: EventListItem, Marker: marker, Runs: ExtractRuns(m[3])}}, true
}

func matchParagraph(_ *scanState, line, _ string) ([]BlockEvent, bool) {
	return []BlockEvent{{Kind: EventParagraph, Runs: ExtractRuns(line)}}, true
}

// ExtractRuns pulls [text](url) links out of a line left to right. Text
// before, between and after links is tokenized independently.
func ExtractRuns(line string) []Run {
	var runs []Run
	pos := 0
	for _, m := range linkPattern.FindAllStringSubmatchIndex(line, -1) {
		if before := line[pos:m[0]]; before != "" {
			runs = append(runs, Run{Tokens: Tokenize(before)})
		}
		runs = append(runs, Run{Link: &LinkRef{Text: line[m[2]:m[3]], URL: line[m[4]:m[5]]}})
		pos = m[1]
	}
	if rest := line[pos:]; rest != "" {
		runs = append(runs, Run{Tokens: Tokenize(rest)})
	}
	return runs
}
