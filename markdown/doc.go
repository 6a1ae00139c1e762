// Package markdown turns a constrained Markdown dialect into an ordered list
// of render instructions for a styled-text host.
//
// The pipeline is split in two layers. Tokenize converts a single line into
// styled inline tokens and knows nothing about blocks. The block renderer
// classifies lines (or walks a goldmark tree when the structured strategy is
// selected), delegates paragraph-like content to the tokenizer and emits
// Instructions. Apply replays instructions against any Host.
//
// Rendering never fails: unmatched delimiters, missing images and malformed
// links degrade to literal text or a bracketed placeholder.
//
// Example:
//
//	session := markdown.NewSession(util.URLOpener{})
//	instrs := markdown.Render(text, "/path/to/folder", session)
//	markdown.Apply(host, instrs, session)
package markdown
