package inbox

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/andynu/outline/internal/outline"
)

func TestCaptureAndReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inbox.jsonl")
	note := "a note"
	item := NewItem("buy milk", &note, nil)

	if err := Capture(path, item); err != nil {
		t.Fatalf("Capture: %v", err)
	}

	items, warnings := Read(path)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(items) != 1 || items[0].Content != "buy milk" {
		t.Fatalf("got %+v", items)
	}
}

func TestReadSkipsMalformedLineWithWarning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inbox.jsonl")
	if err := Capture(path, NewItem("good item", nil, nil)); err != nil {
		t.Fatalf("Capture: %v", err)
	}
	appendRaw(t, path, "not json\n")
	if err := Capture(path, NewItem("second good item", nil, nil)); err != nil {
		t.Fatalf("Capture: %v", err)
	}

	items, warnings := Read(path)
	if len(items) != 2 {
		t.Fatalf("want 2 valid items despite malformed line, got %d", len(items))
	}
	if len(warnings) != 1 {
		t.Fatalf("want 1 warning, got %d", len(warnings))
	}
}

func TestDrainOpsCreatesChildNodesInOrder(t *testing.T) {
	items := []Item{NewItem("first", nil, nil), NewItem("second", nil, nil)}
	parent := uuid.Must(uuid.NewV7())
	ops := DrainOps(items, parent, 5)

	if len(ops) != 2 {
		t.Fatalf("want 2 ops, got %d", len(ops))
	}
	var state outline.DocumentState
	outline.Apply(&state, outline.Operation{Op: outline.OpCreate, ID: parent, UpdatedAt: items[0].CapturedAt})
	for _, op := range ops {
		outline.Apply(&state, op)
	}
	children := state.Children(&parent)
	if len(children) != 2 || children[0].Content != "first" || children[0].Position != 5 {
		t.Fatalf("got %+v", children)
	}
}

func TestDrainOpsPreservesNote(t *testing.T) {
	note := "buy the good kind"
	items := []Item{NewItem("milk", &note, nil)}
	parent := uuid.Must(uuid.NewV7())
	ops := DrainOps(items, parent, 0)

	var state outline.DocumentState
	outline.Apply(&state, outline.Operation{Op: outline.OpCreate, ID: parent, UpdatedAt: items[0].CapturedAt})
	for _, op := range ops {
		outline.Apply(&state, op)
	}
	children := state.Children(&parent)
	if len(children) != 1 {
		t.Fatalf("want 1 child, got %+v", children)
	}
	if children[0].Note == nil || *children[0].Note != note {
		t.Fatalf("want note %q preserved, got %+v", note, children[0].Note)
	}
}

func appendRaw(t *testing.T, path, s string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteString(s); err != nil {
		t.Fatalf("write: %v", err)
	}
}
