package rst

import (
	"strings"

	"github.com/dgallion1/md2rst/internal/doctree"
)

const (
	orderedMarker   = "#. "
	unorderedMarker = "* "
)

// listItem renders the body of one item. The marker is not known here; the
// enclosing list attaches it once all items are rendered.
func (r *Renderer) listItem(item *doctree.ListItem, st *state) (string, error) {
	body, err := r.blocks(item.Blocks, st)
	if err != nil {
		return "", err
	}
	return strings.TrimLeft(body, "\n"), nil
}

// list puts the marker in front of each item's first line and indents the
// remaining lines by the marker's width so nested content stays inside the
// item.
func (r *Renderer) list(n *doctree.List, st *state) (string, error) {
	marker := unorderedMarker
	if n.Ordered {
		marker = orderedMarker
	}
	pad := strings.Repeat(" ", len(marker))

	var buf strings.Builder
	for _, item := range n.Items {
		body, err := r.listItem(item, st)
		if err != nil {
			return "", err
		}
		lines := strings.Split(body, "\n")
		buf.WriteString("\n" + marker + lines[0])
		for _, l := range lines[1:] {
			buf.WriteString("\n")
			if l != "" {
				buf.WriteString(pad + l)
			}
		}
	}
	return "\n" + strings.TrimSuffix(buf.String(), "\n") + "\n", nil
}
