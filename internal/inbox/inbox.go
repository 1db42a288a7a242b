// Package inbox implements the append-only quick-capture queue described in
// spec §3/§6: a single inbox.jsonl file outside any document, drained on
// demand into a user-designated node. Nothing but Capture writes to it;
// the file is otherwise treated as an external append-only queue, the way
// spec §1's Non-goals list it.
package inbox

import (
	"bufio"
	"encoding/json"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/andynu/outline/internal/outline"
)

// Item is one captured line. Source is free-form (e.g. "cli", "share-sheet")
// and optional.
type Item struct {
	ID          uuid.UUID `json:"id"`
	Content     string    `json:"content"`
	Note        *string   `json:"note,omitempty"`
	CaptureDate string    `json:"capture_date"`
	CapturedAt  time.Time `json:"captured_at"`
	Source      *string   `json:"source,omitempty"`
}

// Capture appends one item to path, creating the file if absent. Matches
// the append protocol's flush-and-sync discipline in internal/docstore,
// since this file is exactly as sync-agent-exposed as a pending log.
func Capture(path string, item Item) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return outline.NewError(outline.ErrIO, path, err)
	}
	defer f.Close()

	line, err := json.Marshal(item)
	if err != nil {
		return outline.NewError(outline.ErrParse, path, err)
	}
	line = append(line, '\n')

	bw := bufio.NewWriter(f)
	if _, err := bw.Write(line); err != nil {
		return outline.NewError(outline.ErrIO, path, err)
	}
	if err := bw.Flush(); err != nil {
		return outline.NewError(outline.ErrIO, path, err)
	}
	return f.Sync()
}

// NewItem builds an Item with a fresh id and capture timestamp.
func NewItem(content string, note, source *string) Item {
	now := time.Now().UTC()
	return Item{
		ID:          uuid.Must(uuid.NewV7()),
		Content:     content,
		Note:        note,
		CaptureDate: now.Format("2006-01-02"),
		CapturedAt:  now,
		Source:      source,
	}
}

// Read parses every line of path as an Item. Per spec §7's warning policy,
// a malformed line is skipped with a warning rather than failing the whole
// read — the inverse of the pending-log load's strict policy, since the
// source here is explicitly lenient (spec §9 Open Question #1 notes this
// inconsistency and asks implementers to choose; the inbox choice is
// "lenient", the pending-log choice is "strict").
func Read(path string) ([]Item, []error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, []error{outline.NewError(outline.ErrIO, path, err)}
	}
	defer f.Close()

	var items []Item
	var warnings []error
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var item Item
		if err := json.Unmarshal(line, &item); err != nil {
			warnings = append(warnings, outline.NewError(outline.ErrParse, path, err))
			continue
		}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		warnings = append(warnings, outline.NewError(outline.ErrIO, path, err))
	}
	return items, warnings
}

// Clear removes the file at path, used after a successful drain. A missing
// file is not an error.
func Clear(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return outline.NewError(outline.ErrIO, path, err)
	}
	return nil
}

// Target names where drained inbox items become real nodes.
type Target struct {
	DocumentID uuid.UUID
	NodeID     uuid.UUID
}

// DrainOps converts inbox items into Create operations parented under
// target.NodeID, in capture order. Returns outline.ErrNotConfigured-style
// callers are expected to check target validity themselves (this package
// has no notion of "configured"; internal/config's Inbox type carries that).
func DrainOps(items []Item, parentID uuid.UUID, startPosition int32) []outline.Operation {
	ops := make([]outline.Operation, 0, len(items))
	for i, item := range items {
		op := outline.Operation{
			Op:        outline.OpCreate,
			ID:        uuid.Must(uuid.NewV7()),
			ParentID:  &parentID,
			Position:  startPosition + int32(i),
			Content:   item.Content,
			NodeType:  outline.NodeTypeBullet,
			UpdatedAt: item.CapturedAt,
		}
		ops = append(ops, op)
		if item.Note != nil {
			ops = append(ops, outline.Operation{
				Op:        outline.OpUpdate,
				ID:        op.ID,
				Changes:   &outline.NodeChanges{Note: item.Note},
				UpdatedAt: item.CapturedAt.Add(time.Nanosecond),
			})
		}
	}
	return ops
}
