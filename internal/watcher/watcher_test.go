package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestExtractDocumentID(t *testing.T) {
	documentsDir := "/data/documents"
	id := uuid.Must(uuid.NewV7())

	cases := []struct {
		path string
		want uuid.UUID
		ok   bool
	}{
		{filepath.Join(documentsDir, id.String(), "state.json"), id, true},
		{filepath.Join(documentsDir, id.String(), "pending.host.jsonl"), id, true},
		{filepath.Join(documentsDir, "not-a-uuid", "state.json"), uuid.UUID{}, false},
		{filepath.Join("/other/place", id.String(), "state.json"), uuid.UUID{}, false},
		{documentsDir, uuid.UUID{}, false},
	}

	for _, c := range cases {
		got, ok := extractDocumentID(c.path, documentsDir)
		if ok != c.ok {
			t.Errorf("extractDocumentID(%q): ok = %v, want %v", c.path, ok, c.ok)
			continue
		}
		if ok && got != c.want {
			t.Errorf("extractDocumentID(%q) = %v, want %v", c.path, got, c.want)
		}
	}
}

func TestWatcherEmitsOnFileModification(t *testing.T) {
	documentsDir := t.TempDir()
	id := uuid.Must(uuid.NewV7())
	docDir := filepath.Join(documentsDir, id.String())
	if err := os.MkdirAll(docDir, 0o755); err != nil {
		t.Fatal(err)
	}

	w := New(documentsDir)
	changes := make(chan ChangeSet, 8)
	w.Subscribe(changes)
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(docDir, "pending.host.jsonl"), []byte("{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case batch := <-changes:
		found := false
		for _, gotID := range batch.DocumentIDs {
			if gotID == id {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected change-set to contain %v, got %+v", id, batch.DocumentIDs)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for watcher event")
	}
}

func TestStartIsIdempotent(t *testing.T) {
	w := New(t.TempDir())
	if err := w.Start(); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	defer w.Stop()
	if err := w.Start(); err == nil {
		t.Fatal("expected second Start to report already running")
	}
}
