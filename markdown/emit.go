package markdown

import (
	"errors"
	"fmt"

	"mdviewer/log"
)

// emitter accumulates instructions for one render pass and performs the
// Session side effects (link registration, image caching).
type emitter struct {
	session *Session
	loader  ImageLoader
	base    string
	out     []Instruction
}

func newEmitter(session *Session, loader ImageLoader, base string) *emitter {
	return &emitter{session: session, loader: loader, base: base}
}

func withTag(tags []string, tag string) []string {
	out := make([]string, 0, len(tags)+1)
	out = append(out, tags...)
	return append(out, tag)
}

// text appends text with the given tags. Empty text is dropped.
func (e *emitter) text(text string, tags ...string) {
	if text == "" {
		return
	}
	if len(tags) == 0 {
		e.out = append(e.out, Instruction{Op: OpInsertText, Text: text})
		return
	}
	e.out = append(e.out, Instruction{Op: OpInsertStyledText, Text: text, Tags: append([]string(nil), tags...)})
}

func (e *emitter) code(text, lang string) {
	if text == "" {
		return
	}
	e.out = append(e.out, Instruction{Op: OpInsertStyledText, Text: text, Tags: []string{TagCodeBlock}, Lang: lang})
}

func (e *emitter) newline(tags ...string) {
	in := Instruction{Op: OpInsertNewline}
	if len(tags) > 0 {
		in.Tags = append([]string(nil), tags...)
	}
	e.out = append(e.out, in)
}

// tokens emits inline tokens, each styled per its kind on top of tags.
func (e *emitter) tokens(toks []InlineToken, tags ...string) {
	for _, tok := range Coalesce(toks) {
		all := append(append([]string(nil), tags...), tokenTags(tok.Kind)...)
		e.text(tok.Text, all...)
	}
}

// link registers url with the session and emits a hyperlink span.
func (e *emitter) link(text, url string, tags ...string) {
	tag := e.session.RegisterLink(url)
	e.out = append(e.out, Instruction{
		Op:      OpInsertHyperlink,
		Text:    text,
		Tags:    withTag(tags, TagHyperlink),
		LinkTag: tag,
		URL:     url,
	})
}

func (e *emitter) runs(runs []Run, tags ...string) {
	for _, r := range runs {
		if r.Link != nil {
			e.link(r.Link.Text, r.Link.URL, tags...)
			continue
		}
		e.tokens(r.Tokens, tags...)
	}
}

// image resolves and decodes src. Failures become a placeholder line. A
// newline always follows.
func (e *emitter) image(src string) {
	path := ResolvePath(e.base, src)
	img, err := e.loader.Load(path)
	switch {
	case err == nil:
		e.session.CacheImage(img)
		e.out = append(e.out, Instruction{Op: OpInsertImage, Image: img})
	case errors.Is(err, ErrImageNotFound):
		log.WarningLog.Printf("session %s: %v", e.session.ID, err)
		e.text(fmt.Sprintf("[Image not found: %s]", path))
		e.newline()
	default:
		log.WarningLog.Printf("session %s: %v", e.session.ID, err)
		e.text(fmt.Sprintf("[Unsupported image format: %s]", path))
		e.newline()
	}
	e.newline()
}

// event emits the instructions for one classified line.
func (e *emitter) event(ev BlockEvent) {
	switch ev.Kind {
	case EventBlankLine:
		e.newline()
	case EventCodeBlockToggle:
		e.newline(TagCodeBlock)
	case EventCodeBlockLine:
		e.code(ev.Text, ev.Lang)
		e.newline(TagCodeBlock)
	case EventImage:
		e.image(ev.Path)
	case EventHeading:
		e.runs(ev.Runs, HeadingTag(ev.Level))
		e.newline()
	case EventListItem:
		e.text(ev.Marker)
		e.runs(ev.Runs)
		e.newline()
	default:
		e.runs(ev.Runs)
		e.newline()
	}
}
