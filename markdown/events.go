package markdown

// EventKind tags a BlockEvent.
type EventKind uint8

const (
	EventBlankLine EventKind = iota
	EventHeading
	EventCodeBlockToggle
	EventCodeBlockLine
	EventImage
	EventListItem
	EventParagraph
)

func (k EventKind) String() string {
	switch k {
	case EventHeading:
		return "Heading"
	case EventCodeBlockToggle:
		return "CodeBlockToggle"
	case EventCodeBlockLine:
		return "CodeBlockLine"
	case EventImage:
		return "Image"
	case EventListItem:
		return "ListItem"
	case EventParagraph:
		return "Paragraph"
	default:
		return "BlankLine"
	}
}

// LinkRef is an inline [text](url) reference.
type LinkRef struct {
	Text string
	URL  string
}

// Run is a piece of paragraph-like content: either inline tokens or a link.
type Run struct {
	Tokens []InlineToken
	Link   *LinkRef
}

// BlockEvent is the classification of one source line.
type BlockEvent struct {
	Kind EventKind
	// Level is the heading level (1..3).
	Level int
	// Marker is the literal list prefix, "- " or "N. ".
	Marker string
	// Runs hold the inline content of headings, list items and paragraphs.
	Runs []Run
	// Text is the raw code line or the image alt text.
	Text string
	// Path is the unresolved image path.
	Path string
	// Lang is the info string of the enclosing fenced block.
	Lang string
}
