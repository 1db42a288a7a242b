package jsonbackup

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/andynu/outline/internal/outline"
)

func TestRoundTrip(t *testing.T) {
	note := "a note"
	color := "blue"
	nodes := []outline.Node{
		{
			ID: uuid.Must(uuid.NewV7()), Content: "Hello", Note: &note,
			NodeType: outline.NodeTypeCheckbox, IsChecked: true, Color: &color,
			Tags: []string{"a", "b"}, CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
		},
	}

	data, err := Export(nodes, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	got, err := Import(data)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("want 1 node, got %d", len(got))
	}
	if got[0].Content != "Hello" || got[0].Note == nil || *got[0].Note != "a note" {
		t.Errorf("round-trip mismatch: %+v", got[0])
	}
	if len(got[0].Tags) != 2 {
		t.Errorf("tags not round-tripped: %+v", got[0].Tags)
	}
}

func TestImportRejectsGarbage(t *testing.T) {
	if _, err := Import([]byte("not json")); err == nil {
		t.Error("want error for malformed backup")
	}
}
