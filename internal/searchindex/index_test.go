package searchindex

import (
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

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	path := filepath.Join(t.TempDir(), "outline.db")
	idx, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func node(content string) outline.Node {
	now := time.Now().UTC()
	return outline.Node{ID: uuid.Must(uuid.NewV7()), Content: content, NodeType: outline.NodeTypeBullet, CreatedAt: now, UpdatedAt: now}
}

func TestSearchWithinDocumentScope(t *testing.T) {
	// S5: two documents mentioning "apple"; unscoped search finds both,
	// scoped search finds only the scoped document's match.
	idx := openTestIndex(t)

	doc1 := mustV7(t)
	doc2 := mustV7(t)
	pie := node("Apple pie recipe")
	cider := node("Apple cider donuts")

	if err := idx.IndexDocument(doc1, []outline.Node{pie}); err != nil {
		t.Fatalf("index doc1: %v", err)
	}
	if err := idx.IndexDocument(doc2, []outline.Node{cider}); err != nil {
		t.Fatalf("index doc2: %v", err)
	}

	all, err := idx.Search("apple", nil, 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("want 2 unscoped results, got %d", len(all))
	}

	scoped, err := idx.Search("apple", &doc1, 0)
	if err != nil {
		t.Fatalf("scoped search: %v", err)
	}
	if len(scoped) != 1 {
		t.Fatalf("want 1 scoped result, got %d", len(scoped))
	}
	if scoped[0].NodeID != pie.ID {
		t.Fatalf("want pie node in scoped result, got %v", scoped[0].NodeID)
	}
}

func TestSearchRoundTrip(t *testing.T) {
	// S8: index_document then a uniquely-matching query returns the node.
	idx := openTestIndex(t)
	doc := mustV7(t)
	target := node("unique-marker-xyzzy content")
	other := node("unrelated text")

	if err := idx.IndexDocument(doc, []outline.Node{target, other}); err != nil {
		t.Fatalf("index: %v", err)
	}

	results, err := idx.Search("xyzzy", nil, 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].NodeID != target.ID {
		t.Fatalf("want unique match on target node, got %+v", results)
	}
}

func TestUpdateNodeUpsertsIntoIndex(t *testing.T) {
	idx := openTestIndex(t)
	doc := mustV7(t)
	n := node("original content")

	if err := idx.UpdateNode(doc, n); err != nil {
		t.Fatalf("update: %v", err)
	}
	n.Content = "revised content with needle"
	if err := idx.UpdateNode(doc, n); err != nil {
		t.Fatalf("re-update: %v", err)
	}

	results, err := idx.Search("needle", nil, 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("want 1 result after upsert, got %d", len(results))
	}
}

func TestDeleteNodeRemovesFromIndex(t *testing.T) {
	idx := openTestIndex(t)
	doc := mustV7(t)
	n := node("deleteme marker")
	if err := idx.UpdateNode(doc, n); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := idx.DeleteNode(n.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	results, err := idx.Search("deleteme", nil, 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("want 0 results after delete, got %d", len(results))
	}
}

func TestBacklinksFollowMentions(t *testing.T) {
	idx := openTestIndex(t)
	doc := mustV7(t)
	target := node("the target node")
	source := node("mentions [[" + target.ID.String() + "]] right here")

	if err := idx.IndexDocument(doc, []outline.Node{target, source}); err != nil {
		t.Fatalf("index: %v", err)
	}
	if err := idx.UpdateDocumentLinks(doc, []outline.Node{target, source}); err != nil {
		t.Fatalf("update links: %v", err)
	}

	backlinks, err := idx.GetBacklinks(target.ID)
	if err != nil {
		t.Fatalf("get backlinks: %v", err)
	}
	if len(backlinks) != 1 || backlinks[0].SourceID != source.ID {
		t.Fatalf("want source as sole backlink, got %+v", backlinks)
	}
}

func TestEscapeFTSQueryWrapsEachTermAsPrefix(t *testing.T) {
	got := escapeFTSQuery(`apple "pie"`)
	want := `"apple"* """pie"""*`
	if got != want {
		t.Fatalf("escapeFTSQuery(%q) = %q, want %q", `apple "pie"`, got, want)
	}
}
