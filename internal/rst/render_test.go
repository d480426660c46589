package rst

import (
	"errors"
	"strings"
	"testing"

	"github.com/dgallion1/md2rst/internal/doctree"
)

func text(s string) *doctree.Text {
	return &doctree.Text{Value: s}
}

func para(inlines ...doctree.Inline) *doctree.Paragraph {
	return &doctree.Paragraph{Inlines: inlines}
}

func tight(inlines ...doctree.Inline) *doctree.Paragraph {
	return &doctree.Paragraph{Inlines: inlines, Tight: true}
}

func render(t *testing.T, opts Options, blocks ...doctree.Block) Result {
	t.Helper()
	res, err := NewRenderer(opts).Render(&doctree.Document{Blocks: blocks})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return res
}

func TestRender_HeadingUnderlineMatchesDisplayWidth(t *testing.T) {
	tests := []struct {
		level int
		title string
		mark  string
		width int
	}{
		{1, "head 1", "=", 6},
		{2, "Section", "-", 7},
		{3, "日本語", "^", 6},
		{4, "naïve", "~", 5},
		{5, "x", `"`, 1},
		{6, "全角 title", "#", 10},
	}
	for _, tt := range tests {
		res := render(t, Options{}, &doctree.Heading{Level: tt.level, Inlines: []doctree.Inline{text(tt.title)}})
		lines := strings.Split(strings.Trim(res.Body, "\n"), "\n")
		if len(lines) != 2 {
			t.Fatalf("level %d: expected 2 lines, got %q", tt.level, res.Body)
		}
		if lines[0] != tt.title {
			t.Errorf("level %d: expected title %q, got %q", tt.level, tt.title, lines[0])
		}
		if want := strings.Repeat(tt.mark, tt.width); lines[1] != want {
			t.Errorf("level %d: expected underline %q, got %q", tt.level, want, lines[1])
		}
	}
}

func TestRender_HeadingLevelOutOfRange(t *testing.T) {
	for _, level := range []int{0, 7, -1} {
		res, err := NewRenderer(Options{}).Render(&doctree.Document{Blocks: []doctree.Block{
			para(text("before")),
			&doctree.Heading{Level: level, Inlines: []doctree.Inline{text("x")}},
		}})
		if !errors.Is(err, ErrHeadingLevel) {
			t.Errorf("level %d: expected ErrHeadingLevel, got %v", level, err)
		}
		if res.Body != "" {
			t.Errorf("level %d: expected no partial output, got %q", level, res.Body)
		}
	}
}

func TestRender_UnsupportedNodes(t *testing.T) {
	docs := map[string]*doctree.Document{
		"nil block":  {Blocks: []doctree.Block{nil}},
		"nil inline": {Blocks: []doctree.Block{para(text("a"), nil)}},
		"nested nil": {Blocks: []doctree.Block{&doctree.BlockQuote{Blocks: []doctree.Block{nil}}}},
	}
	for name, doc := range docs {
		_, err := NewRenderer(Options{}).Render(doc)
		if !errors.Is(err, ErrUnsupportedNode) {
			t.Errorf("%s: expected ErrUnsupportedNode, got %v", name, err)
		}
	}
}

func TestRender_Paragraph(t *testing.T) {
	res := render(t, Options{}, para(text("first"), &doctree.SoftBreak{}, text("second")))
	if res.Body != "\nfirst\nsecond\n" {
		t.Errorf("expected %q, got %q", "\nfirst\nsecond\n", res.Body)
	}
	if res.RawHTMLUsed {
		t.Error("expected raw HTML not to be used")
	}
}

func TestRender_InlineMarkup(t *testing.T) {
	tests := []struct {
		name string
		in   doctree.Inline
		want string
	}{
		{"strong", &doctree.Strong{Children: []doctree.Inline{text("a")}}, `\ **a**\ `},
		{"emphasis", &doctree.Emphasis{Children: []doctree.Inline{text("a")}}, `\ *a*\ `},
		{"code", &doctree.CodeSpan{Content: "x = 1"}, "\\ ``x = 1``\\ "},
		{"autolink", &doctree.AutoLink{URL: "http://example.com/"}, "http://example.com/"},
		{"role", &doctree.RestRole{Text: ":ref:`target`"}, ":ref:`target`"},
		{"rest link", &doctree.RestLink{Text: "`label`_"}, "`label`_"},
		{"math", &doctree.InlineMath{Math: "a^2"}, ":math:`a^2`"},
		{"eol marker", &doctree.EOLLiteralMarker{Marker: ":"}, ":"},
		{"footnote", &doctree.FootnoteRef{Key: "1", Index: 1}, `\ [#fn-1]_\ `},
	}
	for _, tt := range tests {
		st := newState()
		got, err := NewRenderer(Options{}).inline(tt.in, st)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.name, tt.want, got)
		}
		if st.rawHTMLUsed {
			t.Errorf("%s: expected raw HTML not to be used", tt.name)
		}
	}
}

func TestRender_RawHTMLInlines(t *testing.T) {
	tests := []struct {
		name string
		in   doctree.Inline
		want string
	}{
		{"inline html", &doctree.InlineHTML{HTML: "<kbd>"}, "\\ :raw-html-m2r:`<kbd>`\\ "},
		{"strikethrough", &doctree.Strikethrough{Children: []doctree.Inline{text("gone")}}, "\\ :raw-html-m2r:`<del>gone</del>`\\ "},
		{"line break", &doctree.LineBreak{}, "\\ :raw-html-m2r:`<br>`\\ \n"},
		{
			"code with double backticks",
			&doctree.CodeSpan{Content: "a `` <b>"},
			"\\ :raw-html-m2r:`<code class=\"docutils literal\"><span class=\"pre\">a &#96;&#96; &lt;b&gt;</span></code>`\\ ",
		},
	}
	for _, tt := range tests {
		st := newState()
		got, err := NewRenderer(Options{}).inline(tt.in, st)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.name, tt.want, got)
		}
		if !st.rawHTMLUsed {
			t.Errorf("%s: expected raw HTML to be used", tt.name)
		}
	}
}

func TestRender_Links(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		url  string
		want string
	}{
		{"external", Options{}, "http://example.com", "\\ `text <http://example.com>`_\\ "},
		{"anonymous", Options{AnonymousReferences: true}, "http://example.com", "\\ `text <http://example.com>`__\\ "},
		{"relative unparsed", Options{}, "sub/page.md", "\\ `text <sub/page.md>`_\\ "},
		{"relative doc", Options{ParseRelativeLinks: true}, "sub/page.md", "\\ :doc:`text <sub/page>`\\ "},
		{"path and fragment", Options{ParseRelativeLinks: true}, "sub/page.md#anchor", "\\ :doc:`text <sub/page>`\\ "},
		{"bare fragment", Options{ParseRelativeLinks: true}, "#anchor", "\\ :ref:`text <anchor>`\\ "},
		{"hidden file", Options{ParseRelativeLinks: true}, "docs/.hidden", "\\ :doc:`text <docs/.hidden>`\\ "},
		{"absolute with parsing", Options{ParseRelativeLinks: true}, "https://example.com/a.md", "\\ `text <https://example.com/a.md>`_\\ "},
		{"mailto", Options{ParseRelativeLinks: true}, "mailto:me@example.com", "\\ `text <mailto:me@example.com>`_\\ "},
		{"space in path", Options{ParseRelativeLinks: true}, "my doc.md", "\\ :doc:`text <my doc>`\\ "},
		{"non-ascii path", Options{ParseRelativeLinks: true}, "文档.md", "\\ :doc:`text <文档>`\\ "},
		{"non-ascii fragment", Options{ParseRelativeLinks: true}, "#Überblick", "\\ :ref:`text <Überblick>`\\ "},
		{"escapes kept as written", Options{ParseRelativeLinks: true}, "a%20b.md?x=1", "\\ :doc:`text <a%20b>`\\ "},
	}
	for _, tt := range tests {
		st := newState()
		got := NewRenderer(tt.opts).link(tt.url, "", "text", st)
		if got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.name, tt.want, got)
		}
	}
}

func TestRender_TitledLinkUsesRawHTML(t *testing.T) {
	st := newState()
	got := NewRenderer(Options{ParseRelativeLinks: true}).link("page.md", `say "hi"`, "text", st)
	want := "\\ :raw-html-m2r:`<a href=\"page.md\" title=\"say &#34;hi&#34;\">text</a>`\\ "
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if !st.rawHTMLUsed {
		t.Error("expected raw HTML to be used")
	}
}

func TestRender_Images(t *testing.T) {
	res := render(t, Options{}, para(&doctree.Image{Src: "a.png", Alt: "alt text"}))
	want := "\n\n.. image:: a.png\n   :target: a.png\n   :alt: alt text\n\n"
	if res.Body != want {
		t.Errorf("expected %q, got %q", want, res.Body)
	}

	res = render(t, Options{}, para(&doctree.ImageLink{Src: "badge.svg", Target: "https://ci.example.com", Alt: "ci"}))
	want = "\n\n.. image:: badge.svg\n   :target: https://ci.example.com\n   :alt: ci\n\n"
	if res.Body != want {
		t.Errorf("expected %q, got %q", want, res.Body)
	}
}

func TestRender_CodeBlocks(t *testing.T) {
	tests := []struct {
		name  string
		opts  Options
		block *doctree.CodeBlock
		want  string
	}{
		{"plain", Options{}, &doctree.CodeBlock{Content: "pip install sphinx\n"}, "\n.. code-block::\n\n   pip install sphinx\n"},
		{"python", Options{}, &doctree.CodeBlock{Content: "def a(i):\n    print(i)\n", Language: "python"}, "\n.. code-block:: python\n\n   def a(i):\n       print(i)\n"},
		{"blank line", Options{}, &doctree.CodeBlock{Content: "a\n\nb\n", Language: "text"}, "\n.. code-block:: text\n\n   a\n\n   b\n"},
		{"math", Options{}, &doctree.CodeBlock{Content: "E = mc^2\n", Language: "math"}, "\n.. math::\n\n   E = mc^2\n"},
		{"mermaid off", Options{}, &doctree.CodeBlock{Content: "graph TD\n", Language: "mermaid"}, "\n.. code-block:: mermaid\n\n   graph TD\n"},
		{"mermaid on", Options{UseMermaid: true}, &doctree.CodeBlock{Content: "graph TD\n", Language: "mermaid"}, "\n.. mermaid::\n\n   graph TD\n"},
	}
	for _, tt := range tests {
		res := render(t, tt.opts, tt.block)
		if res.Body != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.name, tt.want, res.Body)
		}
	}
}

func TestRender_GuessLanguage(t *testing.T) {
	block := &doctree.CodeBlock{Content: "#!/usr/bin/env python\nprint(1)\n"}
	res := render(t, Options{GuessLanguage: true}, block)
	if !strings.HasPrefix(res.Body, "\n.. code-block:: python") {
		t.Errorf("expected a python code block, got %q", res.Body)
	}

	res = render(t, Options{}, block)
	if !strings.HasPrefix(res.Body, "\n.. code-block::\n") {
		t.Errorf("expected an unlabeled code block, got %q", res.Body)
	}
}

func TestRender_BlockQuote(t *testing.T) {
	quote := &doctree.BlockQuote{Blocks: []doctree.Block{para(text("q1"), &doctree.SoftBreak{}, text("q2"))}}
	res := render(t, Options{}, quote)
	if want := "\n..\n\n   q1\n   q2\n\n"; res.Body != want {
		t.Errorf("expected %q, got %q", want, res.Body)
	}
}

func TestRender_SimpleBlocks(t *testing.T) {
	tests := []struct {
		name  string
		block doctree.Block
		want  string
	}{
		{"thematic break", &doctree.ThematicBreak{}, "\n----\n"},
		{"raw html", &doctree.RawHTMLBlock{HTML: "<div>\n<p>x</p>\n</div>\n"}, "\n\n.. raw:: html\n\n   <div>\n   <p>x</p>\n   </div>\n\n"},
		{"directive", &doctree.Directive{Text: ".. note::\n\n   Body.\n", Terminated: true}, "\n.. note::\n\n   Body.\n"},
		{"last directive", &doctree.Directive{Text: ".. a"}, "\n.. a\n"},
		{"literal marker", &doctree.LiteralBlockMarker{}, "\n\n"},
	}
	for _, tt := range tests {
		res := render(t, Options{}, tt.block)
		if res.Body != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.name, tt.want, res.Body)
		}
	}
}

func TestRender_Table(t *testing.T) {
	cell := func(s string) []doctree.Inline { return []doctree.Inline{text(s)} }
	table := &doctree.Table{
		Header: [][]doctree.Inline{cell("h1"), cell("h2")},
		Rows: [][][]doctree.Inline{
			{cell("1"), cell("2")},
			{cell("3"), cell("4")},
		},
	}
	want := strings.Join([]string{
		"",
		".. list-table::",
		"   :header-rows: 1",
		"",
		"   * - h1",
		"     - h2",
		"   * - 1",
		"     - 2",
		"   * - 3",
		"     - 4",
		"",
		"",
	}, "\n")
	res := render(t, Options{}, table)
	if res.Body != want {
		t.Errorf("expected %q, got %q", want, res.Body)
	}

	table.Header = [][]doctree.Inline{cell(" "), cell("")}
	res = render(t, Options{}, table)
	if strings.Contains(res.Body, ":header-rows:") {
		t.Errorf("expected blank header to be dropped, got %q", res.Body)
	}
	if !strings.HasPrefix(res.Body, "\n.. list-table::\n\n   * - 1\n") {
		t.Errorf("unexpected headerless table: %q", res.Body)
	}
}

func TestRender_FieldList(t *testing.T) {
	doc := &doctree.Document{
		Fields: []doctree.Field{{Name: "author", Value: "Ada"}, {Name: "tags", Value: "[a b]"}},
		Blocks: []doctree.Block{para(text("body"))},
	}
	res, err := NewRenderer(Options{}).Render(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := ":author: Ada\n:tags: [a b]\n\nbody\n"; res.Body != want {
		t.Errorf("expected %q, got %q", want, res.Body)
	}
}
