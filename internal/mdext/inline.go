package mdext

import (
	"bytes"
	"regexp"
	"unicode"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

var (
	// [![alt](src "title")](target "title"), anything but ']' may follow the image.
	imageLinkPattern = regexp.MustCompile(`^\[!\[([^\]]*)\]\(([^)\s]*)(?:\s+"[^"]*")?\)[^\]]*\]\(([^)\s]*)(?:\s+"[^"]*")?\)`)

	// :role:`text`, :domain:role:`text` or `text`:role:
	restRolePattern = regexp.MustCompile("^(?::[A-Za-z0-9_.+-]+)+:`[^`]+`|^`[^`]+`(?::[A-Za-z0-9_.+-]+)+:")

	// `label`_, `label <url>`__
	restLinkPattern = regexp.MustCompile("^`[^`]+`__?")

	inlineMathPattern = regexp.MustCompile("^`\\$([^`]*?)\\$`")

	eolLiteralMarkerPattern = regexp.MustCompile(`^::[ \t]*\r?\n?$`)
)

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}

type imageLinkParser struct{}

var defaultImageLinkParser = &imageLinkParser{}

// NewImageLinkParser returns an inline parser turning [![alt](src)](target)
// into a single ImageLink node.
func NewImageLinkParser() parser.InlineParser {
	return defaultImageLinkParser
}

func (s *imageLinkParser) Trigger() []byte {
	return []byte{'['}
}

func (s *imageLinkParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	m := imageLinkPattern.FindSubmatch(line)
	if m == nil {
		return nil
	}
	block.Advance(len(m[0]))
	return NewImageLink(clone(m[2]), clone(m[3]), clone(m[1]))
}

type restRoleParser struct{}

var defaultRestRoleParser = &restRoleParser{}

// NewRestRoleParser returns an inline parser passing interpreted text roles
// through untouched.
func NewRestRoleParser() parser.InlineParser {
	return defaultRestRoleParser
}

func (s *restRoleParser) Trigger() []byte {
	return []byte{':', '`'}
}

func (s *restRoleParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	m := restRolePattern.Find(line)
	if m == nil {
		return nil
	}
	block.Advance(len(m))
	return NewRestRole(clone(m))
}

type restLinkParser struct{}

var defaultRestLinkParser = &restLinkParser{}

// NewRestLinkParser returns an inline parser passing `label`_ references
// through untouched.
func NewRestLinkParser() parser.InlineParser {
	return defaultRestLinkParser
}

func (s *restLinkParser) Trigger() []byte {
	return []byte{'`'}
}

func (s *restLinkParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	m := restLinkPattern.Find(line)
	if m == nil {
		return nil
	}
	block.Advance(len(m))
	return NewRestLink(clone(m))
}

type inlineMathParser struct{}

var defaultInlineMathParser = &inlineMathParser{}

func NewInlineMathParser() parser.InlineParser {
	return defaultInlineMathParser
}

func (s *inlineMathParser) Trigger() []byte {
	return []byte{'`'}
}

func (s *inlineMathParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	m := inlineMathPattern.FindSubmatch(line)
	if m == nil {
		return nil
	}
	block.Advance(len(m[0]))
	return NewInlineMath(clone(m[1]))
}

type eolLiteralMarkerParser struct{}

var defaultEOLLiteralMarkerParser = &eolLiteralMarkerParser{}

// NewEOLLiteralMarkerParser returns an inline parser for a "::" ending a
// line. After whitespace the marker stays whole; a marker glued to a word
// keeps only one colon.
func NewEOLLiteralMarkerParser() parser.InlineParser {
	return defaultEOLLiteralMarkerParser
}

func (s *eolLiteralMarkerParser) Trigger() []byte {
	return []byte{':'}
}

func (s *eolLiteralMarkerParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	if !eolLiteralMarkerPattern.Match(line) {
		return nil
	}
	marker := ":"
	if unicode.IsSpace(block.PrecendingCharacter()) {
		marker = "::"
	}
	// The line ending stays in the reader so the soft break survives.
	block.Advance(len(bytes.TrimRight(line, "\r\n")))
	return NewEOLLiteralMarker(marker)
}

type asteriskDelimiterProcessor struct{}

func (p *asteriskDelimiterProcessor) IsDelimiter(b byte) bool {
	return b == '*'
}

func (p *asteriskDelimiterProcessor) CanOpenCloser(opener, closer *parser.Delimiter) bool {
	return opener.Char == closer.Char
}

func (p *asteriskDelimiterProcessor) OnMatch(consumes int) ast.Node {
	return ast.NewEmphasis(consumes)
}

var defaultAsteriskDelimiterProcessor = &asteriskDelimiterProcessor{}

type asteriskEmphasisParser struct{}

var defaultAsteriskEmphasisParser = &asteriskEmphasisParser{}

// NewAsteriskEmphasisParser returns an emphasis parser that only honours '*'
// delimiters, leaving underscores in prose as literal text.
func NewAsteriskEmphasisParser() parser.InlineParser {
	return defaultAsteriskEmphasisParser
}

func (s *asteriskEmphasisParser) Trigger() []byte {
	return []byte{'*'}
}

func (s *asteriskEmphasisParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	before := block.PrecendingCharacter()
	line, segment := block.PeekLine()
	node := parser.ScanDelimiter(line, before, 1, defaultAsteriskDelimiterProcessor)
	if node == nil {
		return nil
	}
	node.Segment = segment.WithStop(segment.Start + node.OriginalLength)
	block.Advance(node.OriginalLength)
	pc.PushDelimiter(node)
	return node
}
