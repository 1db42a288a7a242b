package outline

import (
	"time"

	"github.com/google/uuid"
)

// OpKind discriminates the four Operation variants. Serialized under the
// "op" key, matching the on-disk log line format.
type OpKind string

const (
	OpCreate OpKind = "create"
	OpUpdate OpKind = "update"
	OpMove   OpKind = "move"
	OpDelete OpKind = "delete"
)

// Operation is one log line: a tagged union over Create/Update/Move/Delete.
// Fields irrelevant to Op are left zero and omitted on marshal.
type Operation struct {
	Op        OpKind       `json:"op"`
	ID        uuid.UUID    `json:"id"`
	ParentID  *uuid.UUID   `json:"parent_id,omitempty"`
	Position  int32        `json:"position,omitempty"`
	Content   string       `json:"content,omitempty"`
	NodeType  NodeType     `json:"node_type,omitempty"`
	Changes   *NodeChanges `json:"changes,omitempty"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// NodeChanges is the sparse patch carried by Update. Every field is a
// pointer (or pointer-to-slice for Tags); nil means "leave untouched." This
// is the Go stand-in for the source's Option<T>-everywhere struct: we can't
// rely on a zero value meaning "absent" without losing the ability to clear
// a field, so every mutable field gets its own presence pointer.
type NodeChanges struct {
	Content        *string    `json:"content,omitempty"`
	Note           *string    `json:"note,omitempty"`
	NodeType       *NodeType  `json:"node_type,omitempty"`
	HeadingLevel   *int       `json:"heading_level,omitempty"`
	IsChecked      *bool      `json:"is_checked,omitempty"`
	Color          *string    `json:"color,omitempty"`
	Tags           *[]string  `json:"tags,omitempty"`
	Date           *string    `json:"date,omitempty"`
	DateRecurrence *string    `json:"date_recurrence,omitempty"`
	Collapsed      *bool      `json:"collapsed,omitempty"`
	MirrorSourceID *uuid.UUID `json:"mirror_source_id,omitempty"`
}

// NewCreateOp builds a Create operation with a fresh time-ordered id.
func NewCreateOp(parentID *uuid.UUID, position int32, content string, nodeType NodeType) Operation {
	return NewCreateOpWithID(uuid.Must(uuid.NewV7()), parentID, position, content, nodeType)
}

// NewCreateOpWithID builds a Create operation with a caller-supplied id
// (needed so undo/redo can recreate a node under its original identity).
func NewCreateOpWithID(id uuid.UUID, parentID *uuid.UUID, position int32, content string, nodeType NodeType) Operation {
	if nodeType == "" {
		nodeType = NodeTypeBullet
	}
	return Operation{
		Op:        OpCreate,
		ID:        id,
		ParentID:  parentID,
		Position:  position,
		Content:   content,
		NodeType:  nodeType,
		UpdatedAt: time.Now().UTC(),
	}
}

// NewUpdateOp builds an Update operation carrying changes.
func NewUpdateOp(id uuid.UUID, changes NodeChanges) Operation {
	return Operation{
		Op:        OpUpdate,
		ID:        id,
		Changes:   &changes,
		UpdatedAt: time.Now().UTC(),
	}
}

// NewMoveOp builds a Move operation.
func NewMoveOp(id uuid.UUID, parentID *uuid.UUID, position int32) Operation {
	return Operation{
		Op:        OpMove,
		ID:        id,
		ParentID:  parentID,
		Position:  position,
		UpdatedAt: time.Now().UTC(),
	}
}

// NewDeleteOp builds a Delete operation.
func NewDeleteOp(id uuid.UUID) Operation {
	return Operation{
		Op:        OpDelete,
		ID:        id,
		UpdatedAt: time.Now().UTC(),
	}
}
