package markdown

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"mdviewer/log"
)

// Opener hands a URL to the system's default external handler.
type Opener interface {
	Open(url string) error
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(url string) error

func (f OpenerFunc) Open(url string) error { return f(url) }

// Link is a registered hyperlink region.
type Link struct {
	Tag string
	URL string
}

// Session holds the per-document state produced by a render pass: decoded
// images that must stay alive while displayed and the hyperlink table. A
// Session belongs to exactly one open document and is not safe for
// concurrent use.
type Session struct {
	ID uuid.UUID

	opener Opener
	images []*Image
	links  map[string]Link
}

// NewSession returns an empty session. opener may be nil, in which case
// activating a link is an error.
func NewSession(opener Opener) *Session {
	return &Session{
		ID:     uuid.New(),
		opener: opener,
		links:  make(map[string]Link),
	}
}

// Reset drops the image cache and the hyperlink table. Call before
// re-rendering a document.
func (s *Session) Reset() {
	for i := range s.images {
		s.images[i] = nil
	}
	s.images = s.images[:0]
	s.links = make(map[string]Link)
}

// RegisterLink allocates the next synthetic tag name for url.
func (s *Session) RegisterLink(url string) string {
	tag := "hyperlink_" + strconv.Itoa(len(s.links))
	s.links[tag] = Link{Tag: tag, URL: url}
	return tag
}

// Link looks up a registered hyperlink by tag.
func (s *Session) Link(tag string) (Link, bool) {
	l, ok := s.links[tag]
	return l, ok
}

// Links returns the registered hyperlinks in registration order.
func (s *Session) Links() []Link {
	out := make([]Link, 0, len(s.links))
	for _, l := range s.links {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		return linkIndex(out[i].Tag) < linkIndex(out[j].Tag)
	})
	return out
}

func linkIndex(tag string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(tag, "hyperlink_"))
	if err != nil {
		return -1
	}
	return n
}

// Action returns the open action bound to tag.
func (s *Session) Action(tag string) func() error {
	return func() error { return s.Activate(tag) }
}

// Activate opens the URL registered under tag.
func (s *Session) Activate(tag string) error {
	l, ok := s.links[tag]
	if !ok {
		return fmt.Errorf("unknown hyperlink tag %q", tag)
	}
	if s.opener == nil {
		return fmt.Errorf("no opener configured for %s", l.URL)
	}
	log.InfoLog.Printf("session %s: opening %s", s.ID, l.URL)
	return s.opener.Open(l.URL)
}

// CacheImage keeps img alive for the lifetime of the rendered view.
func (s *Session) CacheImage(img *Image) {
	s.images = append(s.images, img)
}

// Images returns the cached images in insertion order.
func (s *Session) Images() []*Image {
	return s.images
}
