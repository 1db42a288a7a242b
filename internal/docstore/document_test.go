package docstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/andynu/outline/internal/outline"
)

func mustV7(t *testing.T) uuid.UUID {
	t.Helper()
	id, err := uuid.NewV7()
	if err != nil {
		t.Fatalf("NewV7: %v", err)
	}
	return id
}

func writePendingLine(t *testing.T, dir, host string, op outline.Operation) {
	t.Helper()
	line, err := json.Marshal(op)
	if err != nil {
		t.Fatalf("marshal op: %v", err)
	}
	path := pendingPath(dir, host)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		t.Fatalf("open pending file: %v", err)
	}
	defer f.Close()
	if _, err := f.Write(append(line, '\n')); err != nil {
		t.Fatalf("write pending line: %v", err)
	}
}

func TestLoadMergesMultiMachineLogs(t *testing.T) {
	// S1: empty state.json, pending.A.jsonl and pending.B.jsonl each with
	// one root Create; load merges both into two ordered root nodes.
	id := mustV7(t)
	documentsDir := t.TempDir()
	dir := filepath.Join(documentsDir, id.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}

	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Second)

	a := outline.NewCreateOpWithID(mustV7(t), nil, 0, "From A", outline.NodeTypeBullet)
	a.UpdatedAt = t1
	b := outline.NewCreateOpWithID(mustV7(t), nil, 1, "From B", outline.NodeTypeBullet)
	b.UpdatedAt = t2

	writePendingLine(t, dir, "A", a)
	writePendingLine(t, dir, "B", b)

	doc, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	state := doc.State()
	if len(state.Nodes) != 2 {
		t.Fatalf("want 2 root nodes, got %d", len(state.Nodes))
	}

	if err := doc.Compact(); err != nil {
		t.Fatalf("Compact: %v", err)
	}
	matches, _ := filepath.Glob(pendingGlob(dir))
	if len(matches) != 0 {
		t.Fatalf("expected no pending files after compact, got %v", matches)
	}

	reloaded, err := Load(dir)
	if err != nil {
		t.Fatalf("reload after compact: %v", err)
	}
	if len(reloaded.State().Nodes) != 2 {
		t.Fatalf("compaction fidelity: want 2 nodes after reload, got %d", len(reloaded.State().Nodes))
	}
}

func TestLoadSortsBeforeReplayAcrossFiles(t *testing.T) {
	// S2: two updates to the same id land in reverse file order; after
	// sorted replay the later updated_at wins.
	id := mustV7(t)
	documentsDir := t.TempDir()
	dir := filepath.Join(documentsDir, id.String())
	os.MkdirAll(dir, 0o755)

	nodeID := mustV7(t)
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	create := outline.NewCreateOpWithID(nodeID, nil, 0, "initial", outline.NodeTypeBullet)
	create.UpdatedAt = t0

	second := "second"
	u2 := outline.NewUpdateOp(nodeID, outline.NodeChanges{Content: &second})
	u2.UpdatedAt = t0.Add(2 * time.Millisecond)
	first := "first"
	u1 := outline.NewUpdateOp(nodeID, outline.NodeChanges{Content: &first})
	u1.UpdatedAt = t0.Add(1 * time.Millisecond)

	// host "A" gets the later update; host "B" (sorted after "A"
	// alphabetically) gets create + the earlier update, so naive file-order
	// replay would drop u2 (its node does not exist yet) and end on "first".
	writePendingLine(t, dir, "A", u2)
	writePendingLine(t, dir, "B", create)
	writePendingLine(t, dir, "B", u1)

	doc, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	node := doc.State().FindNode(nodeID)
	if node == nil || node.Content != "second" {
		t.Fatalf("want content %q after sorted replay, got %+v", "second", node)
	}
}

func TestAutoCompactOnOpThreshold(t *testing.T) {
	// S6: seed 999 creates, append one more; auto-compact should fire.
	id := mustV7(t)
	documentsDir := t.TempDir()
	doc, err := Create(documentsDir, id)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < autoCompactOpThreshold; i++ {
		op := outline.NewCreateOp(nil, int32(i), "node", outline.NodeTypeBullet)
		op.UpdatedAt = base.Add(time.Duration(i) * time.Millisecond)
		if err := doc.Append(op); err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
	}

	matches, _ := filepath.Glob(pendingGlob(doc.Dir()))
	if len(matches) != 0 {
		t.Fatalf("expected auto-compact to clear pending files, got %v", matches)
	}

	reloaded, err := Load(doc.Dir())
	if err != nil {
		t.Fatalf("reload after auto-compact: %v", err)
	}
	if got := len(reloaded.State().Nodes); got != autoCompactOpThreshold {
		t.Fatalf("want %d nodes in snapshot, got %d", autoCompactOpThreshold, got)
	}
}

func TestHasExternalChangesBlocksCompact(t *testing.T) {
	id := mustV7(t)
	documentsDir := t.TempDir()
	doc, err := Create(documentsDir, id)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Simulate a sync agent delivering another machine's log after our load.
	time.Sleep(10 * time.Millisecond)
	other := outline.NewCreateOp(nil, 0, "from another machine", outline.NodeTypeBullet)
	writePendingLine(t, doc.Dir(), "other-host", other)

	changed, err := doc.HasExternalChanges()
	if err != nil {
		t.Fatalf("HasExternalChanges: %v", err)
	}
	if !changed {
		t.Fatalf("expected external change to be detected")
	}

	if err := doc.Compact(); err == nil {
		t.Fatalf("expected Compact to refuse when external changes are pending")
	}
}

func TestMissingSnapshotLoadsEmptyState(t *testing.T) {
	id := mustV7(t)
	documentsDir := t.TempDir()
	dir := filepath.Join(documentsDir, id.String())
	os.MkdirAll(dir, 0o755)

	doc, err := Load(dir)
	if err != nil {
		t.Fatalf("Load with no state.json: %v", err)
	}
	if len(doc.State().Nodes) != 0 {
		t.Fatalf("expected empty state, got %+v", doc.State().Nodes)
	}
}
