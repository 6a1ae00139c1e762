package markdown

// Host is a styled-text display surface.
type Host interface {
	// Clear removes all content, tags and bindings.
	Clear()
	// Insert appends text at the cursor with the given style tags.
	Insert(text string, tags ...string)
	// Cursor returns the current insertion offset in runes.
	Cursor() int
	// AddTag applies a style tag to the rune range [start, end).
	AddTag(tag string, start, end int)
	// InsertImage embeds a decoded image at the cursor.
	InsertImage(img *Image)
	// Bind associates an activation handler with a tag.
	Bind(tag string, action func() error)
}

// CodeHost is implemented by hosts that highlight fenced code. Apply routes
// codeblock text carrying a language through InsertCode instead of Insert.
type CodeHost interface {
	InsertCode(text, lang string, tags ...string)
}

// Apply clears host and replays instrs in order. Hyperlinks are tagged with
// their synthetic tag and bound to the session's open action.
func Apply(host Host, instrs []Instruction, session *Session) {
	host.Clear()
	code, _ := host.(CodeHost)
	for _, in := range instrs {
		switch in.Op {
		case OpInsertText:
			host.Insert(in.Text)
		case OpInsertStyledText:
			if code != nil && in.Lang != "" {
				code.InsertCode(in.Text, in.Lang, in.Tags...)
				continue
			}
			host.Insert(in.Text, in.Tags...)
		case OpInsertNewline:
			host.Insert("\n", in.Tags...)
		case OpInsertImage:
			host.InsertImage(in.Image)
		case OpInsertHyperlink:
			start := host.Cursor()
			host.Insert(in.Text, in.Tags...)
			end := host.Cursor()
			host.AddTag(in.LinkTag, start, end)
			host.Bind(in.LinkTag, session.Action(in.LinkTag))
		}
	}
}
