package rst

import (
	"fmt"
	"strings"

	"github.com/dgallion1/md2rst/internal/doctree"
)

// FootnoteRegistry records footnote keys in the order they are first
// referenced and collects the rendered definitions for them.
type FootnoteRegistry struct {
	keys    []string
	seen    map[string]bool
	defs    map[string]string
	flushed bool
}

func NewFootnoteRegistry() *FootnoteRegistry {
	return &FootnoteRegistry{
		seen: map[string]bool{},
		defs: map[string]string{},
	}
}

// Reference records a reference to key. Later references to the same key do
// not change its position.
func (f *FootnoteRegistry) Reference(key string) {
	if f.seen[key] {
		return
	}
	f.seen[key] = true
	f.keys = append(f.keys, key)
}

// Keys returns the referenced keys in first-reference order.
func (f *FootnoteRegistry) Keys() []string {
	return f.keys
}

// Define stores the rendered text of the definition for key.
func (f *FootnoteRegistry) Define(key, text string) {
	f.defs[key] = text
}

// Flush renders the footnote section. It returns "" when nothing was
// referenced and on every call after the first.
func (f *FootnoteRegistry) Flush() string {
	if f.flushed || len(f.keys) == 0 {
		return ""
	}
	f.flushed = true
	var buf strings.Builder
	buf.WriteString("\n\n")
	for _, key := range f.keys {
		lines := splitLines(strings.Trim(f.defs[key], "\n"))
		if len(lines) == 0 {
			lines = []string{""}
		}
		buf.WriteString(firstLine(".. [#fn-"+key+"]", lines[0]) + "\n")
		for _, l := range lines[1:] {
			if l != "" {
				buf.WriteString(indent + l)
			}
			buf.WriteString("\n")
		}
	}
	return buf.String()
}

// firstLine joins a markup prefix and the first line of its content. An
// empty content line leaves no trailing space; otherwise the content is kept
// intact, including a closing "\ " escape.
func firstLine(prefix, content string) string {
	if content == "" {
		return prefix
	}
	return prefix + " " + content
}

// footnotes renders the definition of every referenced footnote. A definition
// may itself reference further footnotes, which are appended to the registry
// while this loop runs.
func (r *Renderer) footnotes(doc *doctree.Document, st *state) (string, error) {
	reg := st.footnotes
	for i := 0; i < len(reg.Keys()); i++ {
		key := reg.Keys()[i]
		blocks, ok := doc.Footnotes[key]
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrUndefinedFootnote, key)
		}
		text, err := r.blocks(blocks, st)
		if err != nil {
			return "", fmt.Errorf("footnote %q: %w", key, err)
		}
		reg.Define(key, text)
	}
	return reg.Flush(), nil
}
