// Package outline defines the node/operation data model shared by the
// document store, search index, and import/export pipelines.
package outline

import (
	"time"

	"github.com/google/uuid"
)

// NodeType is the display kind of a Node. Only heading and checkbox carry
// extra meaning (heading_level, is_checked); bullet is the default.
type NodeType string

const (
	NodeTypeBullet   NodeType = "bullet"
	NodeTypeCheckbox NodeType = "checkbox"
	NodeTypeHeading  NodeType = "heading"
)

// Node is one vertex of a document's outline tree. parent_id forms the tree;
// no separate adjacency list is persisted.
type Node struct {
	ID             uuid.UUID  `json:"id"`
	ParentID       *uuid.UUID `json:"parent_id,omitempty"`
	Position       int32      `json:"position"`
	Content        string     `json:"content"`
	Note           *string    `json:"note,omitempty"`
	NodeType       NodeType   `json:"node_type"`
	HeadingLevel   *int       `json:"heading_level,omitempty"`
	IsChecked      bool       `json:"is_checked"`
	Color          *string    `json:"color,omitempty"`
	Tags           []string   `json:"tags,omitempty"`
	Date           *string    `json:"date,omitempty"`
	DateRecurrence *string    `json:"date_recurrence,omitempty"`
	Collapsed      bool       `json:"collapsed"`
	MirrorSourceID *uuid.UUID `json:"mirror_source_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NewNode builds a root-level node with a fresh time-ordered id, suitable for
// ad-hoc construction outside the operation log (tests, demo seeding).
func NewNode(content string) Node {
	now := time.Now().UTC()
	return Node{
		ID:        uuid.Must(uuid.NewV7()),
		Content:   content,
		NodeType:  NodeTypeBullet,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewChildNode builds a node under parentID at position, otherwise identical
// to NewNode.
func NewChildNode(parentID uuid.UUID, position int32, content string) Node {
	n := NewNode(content)
	n.ParentID = &parentID
	n.Position = position
	return n
}

// DocumentState is the full materialized state of one document: an ordered
// bag of nodes. The tree shape is derived at read time by grouping on
// ParentID; nothing else is persisted.
type DocumentState struct {
	Nodes []Node `json:"nodes"`
}

// FindNode returns a pointer into state.Nodes for id, or nil if absent. The
// pointer is only valid until the next mutation of state.Nodes (append may
// reallocate).
func (s *DocumentState) FindNode(id uuid.UUID) *Node {
	for i := range s.Nodes {
		if s.Nodes[i].ID == id {
			return &s.Nodes[i]
		}
	}
	return nil
}

// Children returns the direct children of parentID (nil means root), sorted
// by (position asc, id asc) per the sibling-order invariant.
func (s *DocumentState) Children(parentID *uuid.UUID) []Node {
	var out []Node
	for _, n := range s.Nodes {
		if sameParent(n.ParentID, parentID) {
			out = append(out, n)
		}
	}
	sortSiblings(out)
	return out
}

func sameParent(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func sortSiblings(nodes []Node) {
	// insertion sort: sibling counts are small and this keeps the package
	// free of a sort.Slice closure allocation on the hot read path.
	for i := 1; i < len(nodes); i++ {
		j := i
		for j > 0 && siblingLess(nodes[j], nodes[j-1]) {
			nodes[j], nodes[j-1] = nodes[j-1], nodes[j]
			j--
		}
	}
}

func siblingLess(a, b Node) bool {
	if a.Position != b.Position {
		return a.Position < b.Position
	}
	return a.ID.String() < b.ID.String()
}
