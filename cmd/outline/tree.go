package main

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/andynu/outline/internal/outline"
	"github.com/andynu/outline/internal/style"
)

// printTree renders a document's tree depth-first, the same (position, id)
// sibling order internal/outline.DocumentState.Children guarantees.
func printTree(state outline.DocumentState, parentID *uuid.UUID, depth int) {
	for _, n := range state.Children(parentID) {
		indent := strings.Repeat("  ", depth)
		prefix := bulletFor(n)
		short := n.ID.String()[:8]
		fmt.Printf("%s%s %s %s\n", indent, prefix, n.Content, style.HintStyle.Render("("+short+")"))
		if n.Note != nil && *n.Note != "" {
			fmt.Printf("%s  %s\n", indent, style.HintStyle.Render(*n.Note))
		}
		id := n.ID
		printTree(state, &id, depth+1)
	}
}

func bulletFor(n outline.Node) string {
	switch {
	case n.IsChecked:
		return style.PassStyle.Render("[x]")
	case n.NodeType == outline.NodeTypeCheckbox:
		return "[ ]"
	case n.NodeType == outline.NodeTypeHeading:
		level := 1
		if n.HeadingLevel != nil {
			level = *n.HeadingLevel
		}
		return style.HeaderStyle.Render(strings.Repeat("#", level))
	default:
		return "-"
	}
}
