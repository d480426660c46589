// Package mdext extends goldmark with the reStructuredText constructs that
// may appear inside Markdown: directives, literal block markers, interpreted
// text roles, hyperlink references, inline math and linked images.
package mdext

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/util"
)

// Priorities relative to goldmark's defaults (setext heading 100, code span
// 100, link 200). Every rule here must run before the generic one it shadows.
const (
	PriorityDirective          = 50
	PriorityLiteralBlockMarker = 60
	PriorityRestRole           = 80
	PriorityInlineMath         = 85
	PriorityRestLink           = 90
	PriorityEOLLiteralMarker   = 95
	PriorityImageLink          = 199
	PriorityEmphasis           = 500
)

// Rest is a goldmark.Extender registering the block and inline rules.
type Rest struct {
	// DisableInlineMath leaves `$...$` to the code span parser.
	DisableInlineMath bool
}

// Extend implements goldmark.Extender.
func (e *Rest) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithBlockParsers(BlockParsers()...),
		parser.WithInlineParsers(e.InlineParsers()...),
	)
}

// BlockParsers returns the block rules with their priorities.
func BlockParsers() []util.PrioritizedValue {
	return []util.PrioritizedValue{
		util.Prioritized(NewDirectiveParser(), PriorityDirective),
		util.Prioritized(NewLiteralBlockMarkerParser(), PriorityLiteralBlockMarker),
	}
}

// InlineParsers returns the inline rules with their priorities. The inline
// math rule is left out entirely when DisableInlineMath is set.
func (e *Rest) InlineParsers() []util.PrioritizedValue {
	ps := []util.PrioritizedValue{
		util.Prioritized(NewRestRoleParser(), PriorityRestRole),
		util.Prioritized(NewRestLinkParser(), PriorityRestLink),
		util.Prioritized(NewEOLLiteralMarkerParser(), PriorityEOLLiteralMarker),
		util.Prioritized(NewImageLinkParser(), PriorityImageLink),
	}
	if !e.DisableInlineMath {
		ps = append(ps, util.Prioritized(NewInlineMathParser(), PriorityInlineMath))
	}
	return ps
}
