package rst

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/html"
)

// codeSpan renders inline code as an inline literal. Content holding "``"
// cannot be expressed that way and falls back to raw HTML.
func codeSpan(code string, st *state) string {
	if !strings.Contains(code, "``") {
		return `\ ` + "``" + code + "``" + `\ `
	}
	escaped := strings.ReplaceAll(html.EscapeString(code), "`", "&#96;")
	return st.rawHTML(`<code class="docutils literal"><span class="pre">` + escaped + `</span></code>`)
}

// link renders a hyperlink whose text has already been rendered.
func (r *Renderer) link(target, title, text string, st *state) string {
	if title != "" {
		return st.rawHTML(fmt.Sprintf(`<a href="%s" title="%s">%s</a>`,
			html.EscapeString(target), html.EscapeString(title), text))
	}

	underscore := "_"
	if r.opts.AnonymousReferences {
		underscore = "__"
	}
	external := `\ ` + "`" + text + " <" + target + ">`" + underscore + `\ `
	if !r.opts.ParseRelativeLinks {
		return external
	}

	u, err := url.Parse(target)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return external
	}

	// The target keeps the destination as written, unescaped.
	rest, frag, _ := strings.Cut(target, "#")
	p, _, _ := strings.Cut(rest, "?")
	role := "doc"
	ref := stripExt(p)
	if frag != "" && p == "" {
		// A bare fragment points at a label in the current project.
		role = "ref"
		ref = frag
	}
	return `\ :` + role + ":`" + text + " <" + ref + ">`" + `\ `
}

// stripExt removes the extension of the last path element. A name that is
// only an extension, such as ".hidden", is left alone.
func stripExt(p string) string {
	base := path.Base(p)
	ext := path.Ext(base)
	if ext == "" || ext == base {
		return p
	}
	return strings.TrimSuffix(p, ext)
}
