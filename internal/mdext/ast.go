package mdext

import (
	"github.com/yuin/goldmark/ast"
)

var (
	KindDirective          = ast.NewNodeKind("Directive")
	KindLiteralBlockMarker = ast.NewNodeKind("LiteralBlockMarker")
	KindImageLink          = ast.NewNodeKind("ImageLink")
	KindRestRole           = ast.NewNodeKind("RestRole")
	KindRestLink           = ast.NewNodeKind("RestLink")
	KindInlineMath         = ast.NewNodeKind("InlineMath")
	KindEOLLiteralMarker   = ast.NewNodeKind("EOLLiteralMarker")
)

// Directive is an explicit markup block. Its lines are kept raw so the body
// is never parsed as Markdown.
type Directive struct {
	ast.BaseBlock
}

func NewDirective() *Directive {
	return &Directive{}
}

func (n *Directive) Kind() ast.NodeKind { return KindDirective }
func (n *Directive) IsRaw() bool { return true }

func (n *Directive) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// LiteralBlockMarker is a line consisting only of "::".
type LiteralBlockMarker struct {
	ast.BaseBlock
}

func NewLiteralBlockMarker() *LiteralBlockMarker {
	return &LiteralBlockMarker{}
}

func (n *LiteralBlockMarker) Kind() ast.NodeKind { return KindLiteralBlockMarker }
func (n *LiteralBlockMarker) IsRaw() bool { return true }

func (n *LiteralBlockMarker) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// ImageLink is a link whose only label content is an image.
type ImageLink struct {
	ast.BaseInline
	Src    []byte
	Target []byte
	Alt    []byte
}

func NewImageLink(src, target, alt []byte) *ImageLink {
	return &ImageLink{Src: src, Target: target, Alt: alt}
}

func (n *ImageLink) Kind() ast.NodeKind { return KindImageLink }

func (n *ImageLink) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Src":    string(n.Src),
		"Target": string(n.Target),
		"Alt":    string(n.Alt),
	}, nil)
}

// RestRole is an interpreted text role copied from the source.
type RestRole struct {
	ast.BaseInline
	Value []byte
}

func NewRestRole(value []byte) *RestRole {
	return &RestRole{Value: value}
}

func (n *RestRole) Kind() ast.NodeKind { return KindRestRole }

func (n *RestRole) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Value": string(n.Value)}, nil)
}

// RestLink is a hyperlink reference copied from the source.
type RestLink struct {
	ast.BaseInline
	Value []byte
}

func NewRestLink(value []byte) *RestLink {
	return &RestLink{Value: value}
}

func (n *RestLink) Kind() ast.NodeKind { return KindRestLink }

func (n *RestLink) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Value": string(n.Value)}, nil)
}

// InlineMath holds the text between `$ and $`.
type InlineMath struct {
	ast.BaseInline
	Math []byte
}

func NewInlineMath(math []byte) *InlineMath {
	return &InlineMath{Math: math}
}

func (n *InlineMath) Kind() ast.NodeKind { return KindInlineMath }

func (n *InlineMath) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Math": string(n.Math)}, nil)
}

// EOLLiteralMarker is a "::" ending a line.
type EOLLiteralMarker struct {
	ast.BaseInline
	Marker string
}

func NewEOLLiteralMarker(marker string) *EOLLiteralMarker {
	return &EOLLiteralMarker{Marker: marker}
}

func (n *EOLLiteralMarker) Kind() ast.NodeKind { return KindEOLLiteralMarker }

func (n *EOLLiteralMarker) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Marker": n.Marker}, nil)
}
