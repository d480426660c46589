// Package convert turns Markdown into reStructuredText in a single call.
package convert

import (
	"fmt"
	"strings"

	"github.com/dgallion1/md2rst/internal/parser"
	"github.com/dgallion1/md2rst/internal/rst"
)

// Options selects grammar and rendering behaviour. The zero value is the
// default conversion.
type Options struct {
	NoUnderscoreEmphasis bool
	ParseRelativeLinks   bool
	AnonymousReferences  bool
	DisableInlineMath    bool
	UseMermaid           bool
	FrontMatter          bool
	GuessLanguage        bool
}

func (o Options) parserOptions() parser.Options {
	return parser.Options{
		NoUnderscoreEmphasis: o.NoUnderscoreEmphasis,
		DisableInlineMath:    o.DisableInlineMath,
		FrontMatter:          o.FrontMatter,
	}
}

func (o Options) renderOptions() rst.Options {
	return rst.Options{
		ParseRelativeLinks:  o.ParseRelativeLinks,
		AnonymousReferences: o.AnonymousReferences,
		UseMermaid:          o.UseMermaid,
		GuessLanguage:       o.GuessLanguage,
	}
}

// Convert converts markdown to reStructuredText. Every call builds its own
// parser and renderer, so concurrent calls share nothing. On error the
// returned text is empty.
func Convert(markdown string, opts Options) (string, error) {
	p := &parser.MarkdownParser{Options: opts.parserOptions()}
	doc, err := p.Parse(strings.NewReader(markdown))
	if err != nil {
		return "", fmt.Errorf("parse markdown: %w", err)
	}

	res, err := rst.NewRenderer(opts.renderOptions()).Render(doc)
	if err != nil {
		return "", fmt.Errorf("render rst: %w", err)
	}

	out := rst.PostProcess(res.Body)
	if res.RawHTMLUsed {
		out = rst.Prolog + out
	}
	return out, nil
}
