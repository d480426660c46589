package parser

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dgallion1/md2rst/internal/doctree"
	"github.com/dgallion1/md2rst/internal/mdext"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	gparser "github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
)

// MarkdownParser reads Markdown with goldmark and lowers the result into a
// doctree.Document.
type MarkdownParser struct {
	Options Options
}

func (p *MarkdownParser) Parse(r io.Reader) (*doctree.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := New(p.Options)
	ctx := gparser.NewContext()
	root := md.Parser().Parse(text.NewReader(src), gparser.WithContext(ctx))

	b := &builder{src: src, labels: map[int]string{}}
	doc := &doctree.Document{Footnotes: map[string][]doctree.Block{}}

	// Footnote definitions are gathered first so references can resolve
	// their labels while the body is walked.
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		list, ok := n.(*east.FootnoteList)
		if !ok {
			continue
		}
		for c := list.FirstChild(); c != nil; c = c.NextSibling() {
			fn, ok := c.(*east.Footnote)
			if !ok {
				return nil, fmt.Errorf("%w: %s in footnote list", ErrUnsupportedNode, c.Kind())
			}
			b.labels[fn.Index] = string(fn.Ref)
		}
		for c := list.FirstChild(); c != nil; c = c.NextSibling() {
			fn := c.(*east.Footnote)
			blocks, err := b.blocks(fn, 0)
			if err != nil {
				return nil, err
			}
			doc.Footnotes[string(fn.Ref)] = blocks
		}
	}

	doc.Blocks, err = b.blocks(root, 0)
	if err != nil {
		return nil, err
	}
	if p.Options.FrontMatter {
		doc.Fields = frontMatter(ctx)
	}
	return doc, nil
}

type builder struct {
	src    []byte
	labels map[int]string // footnote index -> label
}

// blocks lowers the block children of parent. depth counts enclosing lists.
func (b *builder) blocks(parent ast.Node, depth int) ([]doctree.Block, error) {
	var out []doctree.Block
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		if _, ok := n.(*east.FootnoteList); ok {
			continue
		}
		blk, err := b.block(n, depth)
		if err != nil {
			return nil, err
		}
		out = append(out, blk)
	}
	return out, nil
}

func (b *builder) block(n ast.Node, depth int) (doctree.Block, error) {
	switch node := n.(type) {
	case *ast.Heading:
		inlines, err := b.inlines(node)
		if err != nil {
			return nil, err
		}
		return &doctree.Heading{Level: node.Level, Inlines: inlines}, nil

	case *ast.Paragraph:
		inlines, err := b.inlines(node)
		if err != nil {
			return nil, err
		}
		return &doctree.Paragraph{Inlines: inlines}, nil

	case *ast.TextBlock:
		inlines, err := b.inlines(node)
		if err != nil {
			return nil, err
		}
		return &doctree.Paragraph{Inlines: inlines, Tight: true}, nil

	case *ast.Blockquote:
		blocks, err := b.blocks(node, depth)
		if err != nil {
			return nil, err
		}
		return &doctree.BlockQuote{Blocks: blocks}, nil

	case *ast.List:
		list := &doctree.List{Ordered: node.IsOrdered(), Level: depth + 1}
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			blocks, err := b.blocks(c, depth+1)
			if err != nil {
				return nil, err
			}
			list.Items = append(list.Items, &doctree.ListItem{Blocks: blocks, Level: depth + 1})
		}
		return list, nil

	case *ast.FencedCodeBlock:
		return &doctree.CodeBlock{
			Content:  b.lines(node),
			Language: string(node.Language(b.src)),
		}, nil

	case *ast.CodeBlock:
		return &doctree.CodeBlock{Content: b.lines(node)}, nil

	case *ast.ThematicBreak:
		return &doctree.ThematicBreak{}, nil

	case *ast.HTMLBlock:
		var buf bytes.Buffer
		buf.WriteString(b.lines(node))
		if node.HasClosure() {
			buf.Write(node.ClosureLine.Value(b.src))
		}
		return &doctree.RawHTMLBlock{HTML: buf.String()}, nil

	case *east.Table:
		return b.table(node)

	case *mdext.Directive:
		d := &doctree.Directive{Terminated: node.NextSibling() != nil}
		if d.Terminated {
			d.Text = strings.TrimSuffix(b.lines(node), "\n")
		} else {
			d.Text = strings.TrimRight(b.lines(node), "\n")
		}
		return d, nil

	case *mdext.LiteralBlockMarker:
		return &doctree.LiteralBlockMarker{}, nil
	}
	return nil, fmt.Errorf("%w: block %s", ErrUnsupportedNode, n.Kind())
}

func (b *builder) table(node *east.Table) (doctree.Block, error) {
	t := &doctree.Table{}
	for r := node.FirstChild(); r != nil; r = r.NextSibling() {
		var cells [][]doctree.Inline
		for c := r.FirstChild(); c != nil; c = c.NextSibling() {
			inlines, err := b.inlines(c)
			if err != nil {
				return nil, err
			}
			cells = append(cells, inlines)
		}
		switch r.(type) {
		case *east.TableHeader:
			t.Header = cells
		case *east.TableRow:
			t.Rows = append(t.Rows, cells)
		default:
			return nil, fmt.Errorf("%w: table child %s", ErrUnsupportedNode, r.Kind())
		}
	}
	return t, nil
}

func (b *builder) lines(n ast.Node) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(b.src))
	}
	return buf.String()
}

func (b *builder) inlines(parent ast.Node) ([]doctree.Inline, error) {
	var out []doctree.Inline
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		if _, ok := n.(*east.FootnoteBacklink); ok {
			continue
		}
		in, err := b.inline(n)
		if err != nil {
			return nil, err
		}
		out = append(out, in...)
	}
	return out, nil
}

// inline lowers one goldmark inline. A text node can expand to the text
// itself followed by the line break that ends it.
func (b *builder) inline(n ast.Node) ([]doctree.Inline, error) {
	switch node := n.(type) {
	case *ast.Text:
		out := []doctree.Inline{&doctree.Text{Value: html.UnescapeString(string(node.Segment.Value(b.src)))}}
		if node.HardLineBreak() {
			out = append(out, &doctree.LineBreak{})
		} else if node.SoftLineBreak() {
			out = append(out, &doctree.SoftBreak{})
		}
		return out, nil

	case *ast.String:
		return []doctree.Inline{&doctree.Text{Value: string(node.Value)}}, nil

	case *ast.CodeSpan:
		var buf bytes.Buffer
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			t, ok := c.(*ast.Text)
			if !ok {
				return nil, fmt.Errorf("%w: code span child %s", ErrUnsupportedNode, c.Kind())
			}
			value := t.Segment.Value(b.src)
			if bytes.HasSuffix(value, []byte("\n")) {
				buf.Write(value[:len(value)-1])
				buf.WriteByte(' ')
			} else {
				buf.Write(value)
			}
		}
		return one(&doctree.CodeSpan{Content: buf.String()})

	case *ast.Emphasis:
		children, err := b.inlines(node)
		if err != nil {
			return nil, err
		}
		if node.Level >= 2 {
			return one(&doctree.Strong{Children: children})
		}
		return one(&doctree.Emphasis{Children: children})

	case *ast.Link:
		children, err := b.inlines(node)
		if err != nil {
			return nil, err
		}
		return one(&doctree.Link{
			URL:      string(node.Destination),
			Title:    string(node.Title),
			Children: children,
		})

	case *ast.Image:
		return one(&doctree.Image{
			Src:   string(node.Destination),
			Alt:   b.plainText(node),
			Title: string(node.Title),
		})

	case *ast.AutoLink:
		return one(&doctree.AutoLink{URL: string(node.Label(b.src))})

	case *ast.RawHTML:
		var buf bytes.Buffer
		for i := 0; i < node.Segments.Len(); i++ {
			seg := node.Segments.At(i)
			buf.Write(seg.Value(b.src))
		}
		return one(&doctree.InlineHTML{HTML: buf.String()})

	case *east.Strikethrough:
		children, err := b.inlines(node)
		if err != nil {
			return nil, err
		}
		return one(&doctree.Strikethrough{Children: children})

	case *east.FootnoteLink:
		key, ok := b.labels[node.Index]
		if !ok {
			return nil, fmt.Errorf("%w: footnote reference %d has no definition", ErrUnsupportedNode, node.Index)
		}
		return one(&doctree.FootnoteRef{Key: key, Index: node.Index})

	case *mdext.ImageLink:
		return one(&doctree.ImageLink{
			Src:    string(node.Src),
			Target: string(node.Target),
			Alt:    string(node.Alt),
		})

	case *mdext.RestRole:
		return one(&doctree.RestRole{Text: string(node.Value)})

	case *mdext.RestLink:
		return one(&doctree.RestLink{Text: string(node.Value)})

	case *mdext.InlineMath:
		return one(&doctree.InlineMath{Math: string(node.Math)})

	case *mdext.EOLLiteralMarker:
		return one(&doctree.EOLLiteralMarker{Marker: node.Marker})
	}
	return nil, fmt.Errorf("%w: inline %s", ErrUnsupportedNode, n.Kind())
}

func one(in doctree.Inline) ([]doctree.Inline, error) {
	return []doctree.Inline{in}, nil
}

// plainText flattens the text of n's descendants, as used for image alt text.
func (b *builder) plainText(n ast.Node) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(b.src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		default:
			buf.WriteString(b.plainText(c))
		}
	}
	return buf.String()
}

// frontMatter returns the YAML front matter as fields sorted by name.
func frontMatter(ctx gparser.Context) []doctree.Field {
	m := meta.Get(ctx)
	if len(m) == 0 {
		return nil
	}
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	fields := make([]doctree.Field, 0, len(names))
	for _, k := range names {
		fields = append(fields, doctree.Field{Name: k, Value: fmt.Sprint(m[k])})
	}
	return fields
}
