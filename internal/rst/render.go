// Package rst renders a doctree.Document as reStructuredText.
//
// Rendering is bottom-up: every composite node receives the already rendered
// text of its children. Inline markup that could fuse with neighbouring word
// characters is wrapped in "\ " escapes, which PostProcess strips again
// wherever they turn out to be unnecessary.
package rst

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dgallion1/md2rst/internal/doctree"
	"github.com/mattn/go-runewidth"
)

var (
	// ErrUnsupportedNode is returned for a node the renderer has no rule for.
	ErrUnsupportedNode = errors.New("unsupported node")
	// ErrHeadingLevel is returned for a heading outside levels 1 to 6.
	ErrHeadingLevel = errors.New("unsupported heading level")
	// ErrUndefinedFootnote is returned for a reference without a definition.
	ErrUndefinedFootnote = errors.New("undefined footnote")
)

// headingMarks maps a heading level to its underline character.
var headingMarks = map[int]string{
	1: "=",
	2: "-",
	3: "^",
	4: "~",
	5: `"`,
	6: "#",
}

const indent = "   "

// Options control how links and code blocks are written.
type Options struct {
	ParseRelativeLinks  bool // relative links become :doc: or :ref: roles
	AnonymousReferences bool // external links end in "__"
	UseMermaid          bool // ```mermaid fences become mermaid directives
	GuessLanguage       bool // unlabeled fences get a guessed language
}

// Result is the rendered document before post-processing.
type Result struct {
	Body        string
	RawHTMLUsed bool // the raw-html role must be declared
}

// Renderer turns documents into reStructuredText. It holds only immutable
// options; all per-document state lives in the state passed down the tree.
type Renderer struct {
	opts Options
}

func NewRenderer(opts Options) *Renderer {
	return &Renderer{opts: opts}
}

// state accumulates what one traversal learns about the document.
type state struct {
	rawHTMLUsed bool
	footnotes   *FootnoteRegistry
}

func newState() *state {
	return &state{footnotes: NewFootnoteRegistry()}
}

// rawHTML wraps html in the raw-html role and records that the role is used.
func (s *state) rawHTML(html string) string {
	s.rawHTMLUsed = true
	return `\ :` + RawHTMLRole + ":`" + html + "`" + `\ `
}

// Render renders doc. Nothing is returned on error.
func (r *Renderer) Render(doc *doctree.Document) (Result, error) {
	st := newState()
	body, err := r.blocks(doc.Blocks, st)
	if err != nil {
		return Result{}, err
	}
	notes, err := r.footnotes(doc, st)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Body:        fieldList(doc.Fields) + body + notes,
		RawHTMLUsed: st.rawHTMLUsed,
	}, nil
}

func (r *Renderer) blocks(blocks []doctree.Block, st *state) (string, error) {
	var buf strings.Builder
	for _, b := range blocks {
		s, err := r.block(b, st)
		if err != nil {
			return "", err
		}
		buf.WriteString(s)
	}
	return buf.String(), nil
}

func (r *Renderer) block(b doctree.Block, st *state) (string, error) {
	switch n := b.(type) {
	case *doctree.Heading:
		text, err := r.inlines(n.Inlines, st)
		if err != nil {
			return "", err
		}
		return heading(strings.ReplaceAll(text, "\n", " "), n.Level)

	case *doctree.Paragraph:
		text, err := r.inlines(n.Inlines, st)
		if err != nil {
			return "", err
		}
		if n.Tight {
			return text, nil
		}
		return "\n" + text + "\n", nil

	case *doctree.BlockQuote:
		text, err := r.blocks(n.Blocks, st)
		if err != nil {
			return "", err
		}
		// The empty comment keeps the quote from being read as the body of
		// whatever precedes it.
		return "\n..\n\n" + indentBlock(strings.Trim(text, "\n")) + "\n\n", nil

	case *doctree.List:
		return r.list(n, st)

	case *doctree.ListItem:
		return r.listItem(n, st)

	case *doctree.CodeBlock:
		return r.codeBlock(n), nil

	case *doctree.Table:
		return r.table(n, st)

	case *doctree.ThematicBreak:
		return "\n----\n", nil

	case *doctree.RawHTMLBlock:
		return "\n\n.. raw:: html\n\n" + indentBlock(n.HTML) + "\n\n", nil

	case *doctree.Directive:
		if n.Terminated {
			return "\n" + n.Text, nil
		}
		return "\n" + n.Text + "\n", nil

	case *doctree.LiteralBlockMarker:
		return "\n\n", nil
	}
	return "", fmt.Errorf("%w: block %T", ErrUnsupportedNode, b)
}

func heading(text string, level int) (string, error) {
	mark, ok := headingMarks[level]
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrHeadingLevel, level)
	}
	// The underline must cover the title's display columns, so wide
	// characters count twice.
	return "\n" + text + "\n" + strings.Repeat(mark, runewidth.StringWidth(text)) + "\n", nil
}

func (r *Renderer) codeBlock(n *doctree.CodeBlock) string {
	var first string
	switch lang := n.Language; {
	case lang == "math":
		first = "\n.. math::\n\n"
	case lang == "mermaid" && r.opts.UseMermaid:
		first = "\n.. mermaid::\n\n"
	case lang != "":
		first = "\n.. code-block:: " + lang + "\n\n"
	default:
		first = "\n.. code-block::\n\n"
		if r.opts.GuessLanguage {
			if guess := guessLanguage(n.Content); guess != "" {
				first = "\n.. code-block:: " + guess + "\n\n"
			}
		}
	}
	return first + indentBlock(n.Content) + "\n"
}

// table renders a pipe table as a list-table: one bullet per row, one dash per
// cell.
func (r *Renderer) table(n *doctree.Table, st *state) (string, error) {
	var header string
	if n.Header != nil {
		cells, err := r.cells(n.Header, st)
		if err != nil {
			return "", err
		}
		if !allBlank(cells) {
			header = tableRow(cells)
		}
	}
	var body strings.Builder
	for _, row := range n.Rows {
		cells, err := r.cells(row, st)
		if err != nil {
			return "", err
		}
		body.WriteString(tableRow(cells))
	}

	var buf strings.Builder
	buf.WriteString("\n.. list-table::\n")
	if header != "" {
		buf.WriteString(indent + ":header-rows: 1\n\n")
		buf.WriteString(indentBlock(header) + "\n")
	} else {
		buf.WriteString("\n")
	}
	buf.WriteString(indentBlock(body.String()) + "\n\n")
	return buf.String(), nil
}

func (r *Renderer) cells(row [][]doctree.Inline, st *state) ([]string, error) {
	out := make([]string, 0, len(row))
	for _, cell := range row {
		text, err := r.inlines(cell, st)
		if err != nil {
			return nil, err
		}
		out = append(out, text)
	}
	return out, nil
}

func tableRow(cells []string) string {
	var content strings.Builder
	for _, c := range cells {
		content.WriteString("- " + c + "\n")
	}
	lines := splitLines(content.String())
	if len(lines) == 0 {
		return ""
	}
	out := []string{"* " + lines[0]}
	for _, l := range lines[1:] {
		out = append(out, "  "+l)
	}
	return strings.Join(out, "\n") + "\n"
}

func allBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func (r *Renderer) inlines(inlines []doctree.Inline, st *state) (string, error) {
	var buf strings.Builder
	for _, in := range inlines {
		s, err := r.inline(in, st)
		if err != nil {
			return "", err
		}
		buf.WriteString(s)
	}
	return buf.String(), nil
}

func (r *Renderer) inline(in doctree.Inline, st *state) (string, error) {
	switch n := in.(type) {
	case *doctree.Text:
		return n.Value, nil

	case *doctree.SoftBreak:
		return "\n", nil

	case *doctree.LineBreak:
		return st.rawHTML("<br>") + "\n", nil

	case *doctree.Strong:
		text, err := r.inlines(n.Children, st)
		if err != nil {
			return "", err
		}
		return `\ **` + text + `**\ `, nil

	case *doctree.Emphasis:
		text, err := r.inlines(n.Children, st)
		if err != nil {
			return "", err
		}
		return `\ *` + text + `*\ `, nil

	case *doctree.Strikethrough:
		text, err := r.inlines(n.Children, st)
		if err != nil {
			return "", err
		}
		return st.rawHTML("<del>" + text + "</del>"), nil

	case *doctree.CodeSpan:
		return codeSpan(n.Content, st), nil

	case *doctree.Link:
		text, err := r.inlines(n.Children, st)
		if err != nil {
			return "", err
		}
		return r.link(n.URL, n.Title, text, st), nil

	case *doctree.AutoLink:
		return n.URL, nil

	case *doctree.Image:
		return image(n.Src, n.Src, n.Alt), nil

	case *doctree.ImageLink:
		return image(n.Src, n.Target, n.Alt), nil

	case *doctree.InlineHTML:
		return st.rawHTML(n.HTML), nil

	case *doctree.FootnoteRef:
		st.footnotes.Reference(n.Key)
		return `\ [#fn-` + n.Key + `]_\ `, nil

	case *doctree.RestRole:
		return n.Text, nil

	case *doctree.RestLink:
		return n.Text, nil

	case *doctree.InlineMath:
		return ":math:`" + n.Math + "`", nil

	case *doctree.EOLLiteralMarker:
		return n.Marker, nil
	}
	return "", fmt.Errorf("%w: inline %T", ErrUnsupportedNode, in)
}

// image renders an image directive. A plain image links to itself.
func image(src, target, alt string) string {
	return strings.Join([]string{
		"",
		".. image:: " + src,
		indent + ":target: " + target,
		indent + ":alt: " + alt,
		"",
	}, "\n")
}

// fieldList renders front matter as a field list.
func fieldList(fields []doctree.Field) string {
	var buf strings.Builder
	for _, f := range fields {
		lines := splitLines(f.Value)
		if len(lines) == 0 {
			lines = []string{""}
		}
		buf.WriteString(firstLine(":"+f.Name+":", lines[0]) + "\n")
		for _, l := range lines[1:] {
			if l != "" {
				buf.WriteString(indent + l)
			}
			buf.WriteString("\n")
		}
	}
	return buf.String()
}

func indentBlock(block string) string {
	lines := splitLines(block)
	for i, l := range lines {
		if l != "" {
			lines[i] = indent + l
		}
	}
	return strings.Join(lines, "\n")
}

// splitLines splits s into lines, ignoring one trailing newline.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}
