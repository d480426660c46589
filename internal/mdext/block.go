package mdext

import (
	"regexp"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// literalMarkerLine matches a line holding nothing but "::".
var literalMarkerLine = regexp.MustCompile(`^[ \t]*::[ \t]*\r?\n?$`)

type directiveParser struct{}

var defaultDirectiveParser = &directiveParser{}

// NewDirectiveParser returns a block parser for explicit markup: a line
// starting with ".." followed by whitespace or the end of the line, plus every
// following blank or indented line. The first unindented line ends it, so a
// one-line directive is simply a block with no body.
func NewDirectiveParser() parser.BlockParser {
	return defaultDirectiveParser
}

func (b *directiveParser) Trigger() []byte {
	return []byte{'.'}
}

func (b *directiveParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, segment := reader.PeekLine()
	pos := pc.BlockOffset()
	if pos < 0 || !isExplicitMarkupStart(line[pos:]) {
		return nil, parser.NoChildren
	}
	node := NewDirective()
	node.Lines().Append(segment)
	reader.Advance(segment.Len() - 1)
	return node, parser.NoChildren
}

func (b *directiveParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	line, segment := reader.PeekLine()
	if line == nil {
		return parser.Close
	}
	if !util.IsBlank(line) && !util.IsSpace(line[0]) {
		return parser.Close
	}
	node.Lines().Append(segment)
	reader.Advance(segment.Len() - 1)
	return parser.Continue | parser.NoChildren
}

func (b *directiveParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {}

func (b *directiveParser) CanInterruptParagraph() bool {
	return false
}

func (b *directiveParser) CanAcceptIndentedLine() bool {
	return false
}

func isExplicitMarkupStart(line []byte) bool {
	if len(line) < 2 || line[0] != '.' || line[1] != '.' {
		return false
	}
	return len(line) == 2 || util.IsSpace(line[2])
}

type literalBlockMarkerParser struct{}

var defaultLiteralBlockMarkerParser = &literalBlockMarkerParser{}

// NewLiteralBlockMarkerParser returns a block parser that swallows a line
// consisting only of "::". The line produces no text of its own.
func NewLiteralBlockMarkerParser() parser.BlockParser {
	return defaultLiteralBlockMarkerParser
}

func (b *literalBlockMarkerParser) Trigger() []byte {
	return []byte{':'}
}

func (b *literalBlockMarkerParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, segment := reader.PeekLine()
	if !literalMarkerLine.Match(line) {
		return nil, parser.NoChildren
	}
	reader.Advance(segment.Len() - 1)
	return NewLiteralBlockMarker(), parser.NoChildren
}

func (b *literalBlockMarkerParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	return parser.Close
}

func (b *literalBlockMarkerParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {}

func (b *literalBlockMarkerParser) CanInterruptParagraph() bool {
	return false
}

func (b *literalBlockMarkerParser) CanAcceptIndentedLine() bool {
	return false
}
