package parser

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/dgallion1/md2rst/internal/mdext"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/extension"
	gparser "github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/util"
)

// ErrUnsupportedNode is returned when goldmark produces a node kind the
// builder has no mapping for.
var ErrUnsupportedNode = errors.New("unsupported markdown node")

// Options selects the grammar used to read Markdown.
type Options struct {
	NoUnderscoreEmphasis bool // only '*' delimits emphasis
	DisableInlineMath    bool // `$...$` is an ordinary code span
	FrontMatter          bool // leading YAML block becomes document fields
}

// SupportedExtensions lists file extensions treated as Markdown.
var SupportedExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".mkd":      true,
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// New builds a goldmark instance whose rule tables carry the reStructuredText
// extensions selected by opts. The emphasis rule is chosen here rather than in
// an extension because goldmark cannot unregister a default inline parser.
func New(opts Options) goldmark.Markdown {
	emphasis := gparser.NewEmphasisParser()
	if opts.NoUnderscoreEmphasis {
		emphasis = mdext.NewAsteriskEmphasisParser()
	}
	p := gparser.NewParser(
		gparser.WithBlockParsers(gparser.DefaultBlockParsers()...),
		gparser.WithInlineParsers(
			util.Prioritized(gparser.NewCodeSpanParser(), 100),
			util.Prioritized(gparser.NewLinkParser(), 200),
			util.Prioritized(gparser.NewAutoLinkParser(), 300),
			util.Prioritized(gparser.NewRawHTMLParser(), 400),
			util.Prioritized(emphasis, mdext.PriorityEmphasis),
		),
		gparser.WithParagraphTransformers(gparser.DefaultParagraphTransformers()...),
	)

	exts := []goldmark.Extender{
		extension.Table,
		extension.Strikethrough,
		extension.Footnote,
		&mdext.Rest{DisableInlineMath: opts.DisableInlineMath},
	}
	if opts.FrontMatter {
		exts = append(exts, meta.Meta)
	}
	return goldmark.New(
		goldmark.WithParser(p),
		goldmark.WithExtensions(exts...),
	)
}
