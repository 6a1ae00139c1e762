package markdown

import "fmt"

// Op is the kind of a render instruction.
type Op uint8

const (
	OpInsertText Op = iota
	OpInsertStyledText
	OpInsertImage
	OpInsertHyperlink
	OpInsertNewline
)

func (o Op) String() string {
	switch o {
	case OpInsertText:
		return "INSERT_TEXT"
	case OpInsertStyledText:
		return "INSERT_STYLED_TEXT"
	case OpInsertImage:
		return "INSERT_IMAGE"
	case OpInsertHyperlink:
		return "INSERT_HYPERLINK"
	case OpInsertNewline:
		return "INSERT_NEWLINE"
	default:
		return fmt.Sprintf("Op(%d)", uint8(o))
	}
}

// Style tag names understood by hosts.
const (
	TagH1         = "h1"
	TagH2         = "h2"
	TagH3         = "h3"
	TagBold       = "bold"
	TagItalic     = "italic"
	TagInlineCode = "inlinecode"
	TagCodeBlock  = "codeblock"
	TagHyperlink  = "hyperlink"
)

// headingTags is indexed by heading level.
var headingTags = [...]string{"", TagH1, TagH2, TagH3}

// HeadingTag returns the tag for a heading level, clamping to 1..3.
func HeadingTag(level int) string {
	if level < 1 {
		level = 1
	}
	if level > 3 {
		level = 3
	}
	return headingTags[level]
}

// tokenTags maps an inline token kind to the tags it is inserted with.
func tokenTags(k TokenKind) []string {
	switch k {
	case Italic:
		return []string{TagItalic}
	case Bold:
		return []string{TagBold}
	case BoldItalic:
		return []string{TagBold, TagItalic}
	case InlineCode:
		return []string{TagInlineCode}
	default:
		return nil
	}
}

// Instruction is one step for a rendering host. Instructions are applied
// strictly in order; each one appends at the current cursor.
type Instruction struct {
	Op   Op
	Text string
	// Tags are style tag names applied to Text.
	Tags []string
	// Lang is the fence info string for codeblock text, if any.
	Lang string
	// Image is set for OpInsertImage.
	Image *Image
	// LinkTag and URL are set for OpInsertHyperlink.
	LinkTag string
	URL     string
}

func (in Instruction) String() string {
	switch in.Op {
	case OpInsertImage:
		path := ""
		if in.Image != nil {
			path = in.Image.Path
		}
		return fmt.Sprintf("%s(%s)", in.Op, path)
	case OpInsertHyperlink:
		return fmt.Sprintf("%s(%q %s -> %s)", in.Op, in.Text, in.LinkTag, in.URL)
	case OpInsertNewline:
		if len(in.Tags) > 0 {
			return fmt.Sprintf("%s%v", in.Op, in.Tags)
		}
		return in.Op.String()
	default:
		return fmt.Sprintf("%s(%q %v)", in.Op, in.Text, in.Tags)
	}
}

// PlainText concatenates the visible text of instructions. Images count as
// nothing; newlines as "\n".
func PlainText(instrs []Instruction) string {
	n := 0
	for _, in := range instrs {
		n += len(in.Text) + 1
	}
	b := make([]byte, 0, n)
	for _, in := range instrs {
		switch in.Op {
		case OpInsertNewline:
			b = append(b, '\n')
		case OpInsertImage:
		default:
			b = append(b, in.Text...)
		}
	}
	return string(b)
}
