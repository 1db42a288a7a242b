// Package opml reads and writes the OPML outline format, including the
// Dynalist dialect's attribute extensions (see spec §4.5): complete,
// colorLabel, heading, and the inline date/recurrence/mark/obsidian-link
// text conventions.
package opml

import (
	"encoding/xml"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/andynu/outline/internal/outline"
)

// ImportedNode is one parsed <outline> element, fully resolved: parent_id
// and position are assigned from the frame stack, text processing has run,
// and Dynalist attributes have been mapped onto the native node fields.
type ImportedNode struct {
	ID             uuid.UUID
	ParentID       *uuid.UUID
	Position       int32
	Content        string
	Note           *string
	NodeType       outline.NodeType
	HeadingLevel   *int
	IsChecked      bool
	Color          *string
	Date           *string
	DateRecurrence *string
}

// frame is one level of the parser's (parent_id, next_child_position) stack,
// per spec §4.5.
type frame struct {
	parentID *uuid.UUID
	nextPos  int32
}

// Parse streams r as OPML, reading every <outline> element inside <body> in
// document order. Dynalist attributes (complete, colorLabel, heading) are
// recognized when present; text/_note are read regardless (baseline OPML
// import, supplemented from original_source's simpler variant — Dynalist
// attribute recognition layers on top, it doesn't replace plain reading).
func Parse(r io.Reader) ([]ImportedNode, error) {
	dec := xml.NewDecoder(r)
	var nodes []ImportedNode
	stack := []frame{{parentID: nil, nextPos: 0}}
	inBody := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, outline.NewError(outline.ErrParse, "opml", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "body":
				inBody = true
			case "outline":
				if !inBody {
					continue
				}
				n := parseOutlineElement(t, &stack)
				nodes = append(nodes, n)
				stack = append(stack, frame{parentID: &n.ID, nextPos: 0})
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "body":
				inBody = false
			case "outline":
				if inBody && len(stack) > 1 {
					stack = stack[:len(stack)-1]
				}
			}
		}
	}

	return nodes, nil
}

func parseOutlineElement(e xml.StartElement, stack *[]frame) ImportedNode {
	var rawText, rawNote, complete, colorLabel, heading string
	hasNote := false
	for _, attr := range e.Attr {
		switch attr.Name.Local {
		case "text":
			rawText = attr.Value
		case "_note":
			rawNote = attr.Value
			hasNote = true
		case "complete":
			complete = attr.Value
		case "colorLabel":
			colorLabel = attr.Value
		case "heading":
			heading = attr.Value
		}
	}

	top := &(*stack)[len(*stack)-1]
	parentID := top.parentID
	position := top.nextPos
	top.nextPos++

	content, date, recurrence := processText(rawText)
	var note *string
	if hasNote {
		processedNote, _, _ := processText(rawNote)
		note = &processedNote
	}

	n := ImportedNode{
		ID:       uuid.Must(uuid.NewV7()),
		ParentID: parentID,
		Position: position,
		Content:  content,
		Note:     note,
		NodeType: outline.NodeTypeBullet,
	}
	if date != "" {
		n.Date = &date
	}
	if recurrence != "" {
		n.DateRecurrence = &recurrence
	}
	if complete == "true" {
		n.IsChecked = true
		n.NodeType = outline.NodeTypeCheckbox
	}
	if colorLabel != "" {
		if color, ok := colorLabels[colorLabel]; ok {
			n.Color = &color
		}
	}
	if heading != "" {
		if lvl, err := strconv.Atoi(heading); err == nil && lvl >= 1 && lvl <= 6 {
			n.NodeType = outline.NodeTypeHeading
			n.HeadingLevel = &lvl
		}
	}

	return n
}

// ToOperations converts parsed nodes into the Create-then-Update op pairs
// spec §4.5 calls for: a schema-stable Create per node, followed by an
// Update carrying any non-default metadata the Create path doesn't accept
// (color, date, checkbox state, heading level). now is called once per
// emitted operation so a test clock can hand out strictly increasing
// timestamps in import order.
func ToOperations(nodes []ImportedNode, now func() time.Time) []outline.Operation {
	ops := make([]outline.Operation, 0, len(nodes)*2)
	for _, n := range nodes {
		ops = append(ops, outline.Operation{
			Op:        outline.OpCreate,
			ID:        n.ID,
			ParentID:  n.ParentID,
			Position:  n.Position,
			Content:   n.Content,
			NodeType:  outline.NodeTypeBullet,
			UpdatedAt: now(),
		})
		if !needsUpdate(n) {
			continue
		}
		changes := outline.NodeChanges{}
		if n.Note != nil {
			changes.Note = n.Note
		}
		if n.NodeType != outline.NodeTypeBullet {
			nt := n.NodeType
			changes.NodeType = &nt
		}
		if n.IsChecked {
			v := true
			changes.IsChecked = &v
		}
		if n.Color != nil {
			changes.Color = n.Color
		}
		if n.Date != nil {
			changes.Date = n.Date
		}
		if n.DateRecurrence != nil {
			changes.DateRecurrence = n.DateRecurrence
		}
		if n.HeadingLevel != nil {
			changes.HeadingLevel = n.HeadingLevel
		}
		ops = append(ops, outline.Operation{
			Op:        outline.OpUpdate,
			ID:        n.ID,
			Changes:   &changes,
			UpdatedAt: now(),
		})
	}
	return ops
}

func needsUpdate(n ImportedNode) bool {
	return n.Note != nil || n.NodeType != outline.NodeTypeBullet || n.IsChecked ||
		n.Color != nil || n.Date != nil || n.DateRecurrence != nil || n.HeadingLevel != nil
}
