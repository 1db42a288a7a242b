package opml

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/andynu/outline/internal/htmlutil"
	"github.com/andynu/outline/internal/outline"
)

// Generate writes nodes as OPML 2.0: an <outline text="…" _note="…">
// element per node, empty-element form iff the node has no children,
// children recursed in (position, id) order, per spec §4.6.
func Generate(nodes []outline.Node, title string) (string, error) {
	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString("<opml version=\"2.0\">\n")
	b.WriteString("  <head>\n    <title>")
	xml.EscapeText(&b, []byte(title))
	b.WriteString("</title>\n  </head>\n")
	b.WriteString("  <body>\n")

	childrenOf := groupByParent(nodes)
	if err := writeChildren(&b, childrenOf, nil, 2); err != nil {
		return "", err
	}

	b.WriteString("  </body>\n</opml>\n")
	return b.String(), nil
}

func groupByParent(nodes []outline.Node) map[uuid.UUID][]outline.Node {
	m := map[uuid.UUID][]outline.Node{}
	var rootKey uuid.UUID // zero value stands in for "no parent"
	for _, n := range nodes {
		key := rootKey
		if n.ParentID != nil {
			key = *n.ParentID
		}
		m[key] = append(m[key], n)
	}
	for k := range m {
		children := m[k]
		sort.Slice(children, func(i, j int) bool {
			if children[i].Position != children[j].Position {
				return children[i].Position < children[j].Position
			}
			return children[i].ID.String() < children[j].ID.String()
		})
		m[k] = children
	}
	return m
}

func writeChildren(b *strings.Builder, childrenOf map[uuid.UUID][]outline.Node, parentID *uuid.UUID, indent int) error {
	var key uuid.UUID
	if parentID != nil {
		key = *parentID
	}
	children := childrenOf[key]
	pad := strings.Repeat("  ", indent)

	for _, n := range children {
		text := htmlutil.StripHTML(n.Content)
		var attrs strings.Builder
		attrs.WriteString(`text="`)
		xml.EscapeText(&attrs, []byte(text))
		attrs.WriteString(`"`)
		if n.Note != nil && *n.Note != "" {
			attrs.WriteString(` _note="`)
			xml.EscapeText(&attrs, []byte(*n.Note))
			attrs.WriteString(`"`)
		}

		grandchildren := childrenOf[n.ID]
		if len(grandchildren) == 0 {
			fmt.Fprintf(b, "%s<outline %s/>\n", pad, attrs.String())
			continue
		}
		fmt.Fprintf(b, "%s<outline %s>\n", pad, attrs.String())
		id := n.ID
		if err := writeChildren(b, childrenOf, &id, indent+1); err != nil {
			return err
		}
		fmt.Fprintf(b, "%s</outline>\n", pad)
	}
	return nil
}
