// Package doctree holds the closed set of block and inline nodes a Markdown
// document is lowered into before it is rendered as reStructuredText.
package doctree

// Document is the root of a parsed document.
type Document struct {
	Blocks    []Block            // Top-level blocks in source order
	Footnotes map[string][]Block // Footnote definitions keyed by label
	Fields    []Field            // Front matter fields, sorted by name
}

// Field is one front matter entry.
type Field struct {
	Name  string
	Value string
}

// Block is a block-level node. The set of implementations is closed.
type Block interface {
	block()
}

// Inline is an inline node. The set of implementations is closed.
type Inline interface {
	inline()
}

type (
	// Heading is an ATX or setext heading.
	Heading struct {
		Level   int
		Inlines []Inline
	}

	// Paragraph is a run of inline content. Tight paragraphs come from tight
	// list items and render without surrounding blank lines.
	Paragraph struct {
		Inlines []Inline
		Tight   bool
	}

	// BlockQuote holds nested blocks.
	BlockQuote struct {
		Blocks []Block
	}

	// List is an ordered or bulleted list. Level is 1 for a top-level list.
	List struct {
		Items   []*ListItem
		Ordered bool
		Level   int
	}

	// ListItem holds the blocks of one list entry.
	ListItem struct {
		Blocks []Block
		Level  int
	}

	// CodeBlock is a fenced or indented code block. Language is empty for
	// indented blocks and unlabeled fences.
	CodeBlock struct {
		Content  string
		Language string
	}

	// Table is a pipe table. Header is nil when the table has no header row.
	Table struct {
		Header [][]Inline
		Rows   [][][]Inline
	}

	// ThematicBreak is a horizontal rule.
	ThematicBreak struct{}

	// RawHTMLBlock is an HTML block passed through untouched.
	RawHTMLBlock struct {
		HTML string
	}

	// Directive is an explicit markup block (".. name:: args" and its
	// indented body) copied verbatim from the source.
	Directive struct {
		Text       string
		Terminated bool // followed by more content in the same container
	}

	// LiteralBlockMarker is a line holding only "::".
	LiteralBlockMarker struct{}
)

type (
	// Text is literal prose.
	Text struct {
		Value string
	}

	// SoftBreak is a line ending inside a paragraph.
	SoftBreak struct{}

	// LineBreak is a hard line break.
	LineBreak struct{}

	Strong struct {
		Children []Inline
	}

	Emphasis struct {
		Children []Inline
	}

	Strikethrough struct {
		Children []Inline
	}

	// CodeSpan is inline code with its content already normalized.
	CodeSpan struct {
		Content string
	}

	Link struct {
		URL      string
		Title    string
		Children []Inline
	}

	// AutoLink is a bare or angle-bracketed URL.
	AutoLink struct {
		URL string
	}

	Image struct {
		Src   string
		Alt   string
		Title string
	}

	// ImageLink is an image wrapped in a link: [![alt](src)](target).
	ImageLink struct {
		Src    string
		Target string
		Alt    string
	}

	InlineHTML struct {
		HTML string
	}

	// FootnoteRef points at a footnote definition by label.
	FootnoteRef struct {
		Key   string
		Index int
	}

	// RestRole is an interpreted text role such as :ref:`target`.
	RestRole struct {
		Text string
	}

	// RestLink is a reStructuredText hyperlink reference such as `label`_.
	RestLink struct {
		Text string
	}

	// InlineMath is the body of a `$...$` span.
	InlineMath struct {
		Math string
	}

	// EOLLiteralMarker is a trailing "::". Marker is "::" when the source
	// had whitespace before it and ":" when it was attached to a word.
	EOLLiteralMarker struct {
		Marker string
	}
)

func (*Heading) block() {}
func (*Paragraph) block() {}
func (*BlockQuote) block() {}
func (*List) block() {}
func (*ListItem) block() {}
func (*CodeBlock) block() {}
func (*Table) block() {}
func (*ThematicBreak) block() {}
func (*RawHTMLBlock) block() {}
func (*Directive) block() {}
func (*LiteralBlockMarker) block() {}

func (*Text) inline() {}
func (*SoftBreak) inline() {}
func (*LineBreak) inline() {}
func (*Strong) inline() {}
func (*Emphasis) inline() {}
func (*Strikethrough) inline() {}
func (*CodeSpan) inline() {}
func (*Link) inline() {}
func (*AutoLink) inline() {}
func (*Image) inline() {}
func (*ImageLink) inline() {}
func (*InlineHTML) inline() {}
func (*FootnoteRef) inline() {}
func (*RestRole) inline() {}
func (*RestLink) inline() {}
func (*InlineMath) inline() {}
func (*EOLLiteralMarker) inline() {}
