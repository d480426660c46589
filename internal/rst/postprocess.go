package rst

import "strings"

// RawHTMLRole is the role used for HTML that has no reStructuredText form.
// Documents produced by earlier Markdown converters declare the same name.
const RawHTMLRole = "raw-html-m2r"

// Prolog declares RawHTMLRole. It is prepended to documents that use it.
const Prolog = ".. role:: " + RawHTMLRole + "(raw)\n   :format: html\n\n"

// escapeRewrites drop "\ " escapes next to whitespace or a period, where
// they are never needed. Order matters.
var escapeRewrites = []struct{ old, new string }{
	{"\\ \n", "\n"},
	{"\n\\ ", "\n"},
	{" \\ ", " "},
	{"\\  ", " "},
	{"\\ .", "."},
}

// PostProcess removes redundant escapes. The rewrites repeat until nothing
// changes, so PostProcess(PostProcess(s)) == PostProcess(s).
func PostProcess(text string) string {
	for {
		out := text
		for _, rw := range escapeRewrites {
			out = strings.ReplaceAll(out, rw.old, rw.new)
		}
		if out == text {
			return out
		}
		text = out
	}
}
