package markdownexport

import (
	"github.com/google/uuid"

	"github.com/andynu/outline/internal/outline"
)

// Select computes the descendant closure of the selected ids (every member
// of selected plus every node whose ParentID chain leads to one),
// optionally dropping checked subtrees entirely, then re-roots any
// node whose parent fell outside the closure so the result stands alone as
// its own tree, per spec §4.6's selection-export contract.
func Select(nodes []outline.Node, selected map[uuid.UUID]bool, excludeChecked bool) []outline.Node {
	byID := make(map[uuid.UUID]outline.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	included := make(map[uuid.UUID]bool, len(nodes))
	for id := range selected {
		if n, ok := byID[id]; ok {
			includeSubtree(n, nodes, included, excludeChecked)
		}
	}

	out := make([]outline.Node, 0, len(included))
	for _, n := range nodes {
		if !included[n.ID] {
			continue
		}
		if n.ParentID != nil && !included[*n.ParentID] {
			n.ParentID = nil
		}
		out = append(out, n)
	}
	return out
}

func includeSubtree(n outline.Node, all []outline.Node, included map[uuid.UUID]bool, excludeChecked bool) {
	if excludeChecked && n.IsChecked {
		return
	}
	if included[n.ID] {
		return
	}
	included[n.ID] = true
	for _, child := range all {
		if child.ParentID != nil && *child.ParentID == n.ID {
			includeSubtree(child, all, included, excludeChecked)
		}
	}
}
