package outline

import (
	"github.com/google/uuid"

	"github.com/andynu/outline/internal/outlog"
)

// Apply is the single authority for state evolution: every document
// mutation, whether freshly submitted or replayed from a pending log, goes
// through this function. It mutates state in place and is safe to call
// repeatedly with the same operation (Create is idempotent; Update/Move are
// no-ops unless strictly newer; Delete is unconditional).
func Apply(state *DocumentState, op Operation) {
	switch op.Op {
	case OpCreate:
		applyCreate(state, op)
	case OpUpdate:
		applyUpdate(state, op)
	case OpMove:
		applyMove(state, op)
	case OpDelete:
		applyDelete(state, op)
	}
}

func applyCreate(state *DocumentState, op Operation) {
	if state.FindNode(op.ID) != nil {
		return
	}
	nodeType := op.NodeType
	if nodeType == "" {
		nodeType = NodeTypeBullet
	}
	state.Nodes = append(state.Nodes, Node{
		ID:        op.ID,
		ParentID:  op.ParentID,
		Position:  op.Position,
		Content:   op.Content,
		NodeType:  nodeType,
		CreatedAt: op.UpdatedAt,
		UpdatedAt: op.UpdatedAt,
	})
}

func applyUpdate(state *DocumentState, op Operation) {
	node := state.FindNode(op.ID)
	if node == nil || !op.UpdatedAt.After(node.UpdatedAt) {
		return
	}
	changes := op.Changes
	if changes == nil {
		node.UpdatedAt = op.UpdatedAt
		return
	}
	if changes.Content != nil {
		node.Content = *changes.Content
	}
	if changes.Note != nil {
		node.Note = changes.Note
	}
	if changes.NodeType != nil {
		node.NodeType = *changes.NodeType
	}
	if changes.HeadingLevel != nil {
		node.HeadingLevel = changes.HeadingLevel
	}
	if changes.IsChecked != nil {
		node.IsChecked = *changes.IsChecked
	}
	if changes.Color != nil {
		node.Color = changes.Color
	}
	if changes.Tags != nil {
		node.Tags = *changes.Tags
	}
	if changes.Date != nil {
		node.Date = clearIfEmpty(*changes.Date)
	}
	if changes.DateRecurrence != nil {
		node.DateRecurrence = clearIfEmpty(*changes.DateRecurrence)
	}
	if changes.Collapsed != nil {
		node.Collapsed = *changes.Collapsed
	}
	if changes.MirrorSourceID != nil {
		node.MirrorSourceID = changes.MirrorSourceID
	}
	node.UpdatedAt = op.UpdatedAt
}

func clearIfEmpty(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func applyMove(state *DocumentState, op Operation) {
	node := state.FindNode(op.ID)
	if node == nil || !op.UpdatedAt.After(node.UpdatedAt) {
		return
	}
	if wouldCreateCycle(state, op.ID, op.ParentID) {
		outlog.Logf("dropping move of %s: new parent would create a cycle", op.ID)
		return
	}
	node.ParentID = op.ParentID
	node.Position = op.Position
	node.UpdatedAt = op.UpdatedAt
}

// wouldCreateCycle walks newParent's ancestor chain looking for id. This is
// the "reject Move that would create a cycle" option from the design notes,
// taken here instead of the alternative (accept and let the island become
// unreachable from the tree).
func wouldCreateCycle(state *DocumentState, id uuid.UUID, newParent *uuid.UUID) bool {
	seen := map[uuid.UUID]bool{}
	cur := newParent
	for cur != nil {
		if *cur == id || seen[*cur] {
			return *cur == id
		}
		seen[*cur] = true
		parent := state.FindNode(*cur)
		if parent == nil {
			return false
		}
		cur = parent.ParentID
	}
	return false
}

func applyDelete(state *DocumentState, op Operation) {
	toDelete := map[uuid.UUID]bool{op.ID: true}
	order := []uuid.UUID{op.ID}
	for i := 0; i < len(order); i++ {
		parent := order[i]
		for _, n := range state.Nodes {
			if n.ParentID != nil && *n.ParentID == parent && !toDelete[n.ID] {
				toDelete[n.ID] = true
				order = append(order, n.ID)
			}
		}
	}
	kept := state.Nodes[:0]
	for _, n := range state.Nodes {
		if !toDelete[n.ID] {
			kept = append(kept, n)
		}
	}
	state.Nodes = kept
}
