// Package searchindex mirrors node state into a SQLite FTS5 inverted index
// so full-text queries don't require reparsing every document's JSON
// snapshot. The index lives in a cache directory and can always be
// rebuilt from the document store, so corruption is recoverable by
// deleting the file.
package searchindex

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"sync"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/google/uuid"

	"github.com/andynu/outline/internal/htmlutil"
	"github.com/andynu/outline/internal/outline"
)

// Result is one full-text match.
type Result struct {
	NodeID     uuid.UUID
	DocumentID uuid.UUID
	Content    string
	Note       string
	Snippet    string
	Rank       float64
}

// Index is the process-wide search mirror. All operations serialize on one
// lock: query latency dominates lock cost far more than write contention
// does (see spec §4.3).
type Index struct {
	mu sync.Mutex
	db *sql.DB
}

// Open opens (creating the database file if absent) the FTS5-backed index
// at path, applying schema.go idempotently. The directory containing path
// must already exist; Open does not create it.
func Open(path string) (*Index, error) {
	connStr := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(OFF)&_time_format=sqlite", path)
	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, outline.NewError(outline.ErrIO, path, err)
	}
	db.SetMaxOpenConns(1) // single-writer lock, see Index
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, outline.NewError(outline.ErrIO, path, err)
	}
	return &Index{db: db}, nil
}

// Close releases the underlying database handle.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.db.Close()
}

// IndexDocument atomically replaces every record for docID with nodes.
func (idx *Index) IndexDocument(docID uuid.UUID, nodes []outline.Node) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	tx, err := idx.db.Begin()
	if err != nil {
		return outline.NewError(outline.ErrIO, "index_document", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM nodes WHERE document_id = ?`, docID.String()); err != nil {
		return outline.NewError(outline.ErrIO, "index_document", err)
	}
	for _, n := range nodes {
		if err := insertNode(tx, docID, n); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return outline.NewError(outline.ErrIO, "index_document", err)
	}
	return nil
}

// UpdateNode upserts one record.
func (idx *Index) UpdateNode(docID uuid.UUID, n outline.Node) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return insertNode(idx.db, docID, n)
}

func insertNode(exec execer, docID uuid.UUID, n outline.Node) error {
	note := ""
	if n.Note != nil {
		note = *n.Note
	}
	_, err := exec.Exec(`
		INSERT INTO nodes(id, document_id, parent_id, content, note, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			document_id=excluded.document_id, parent_id=excluded.parent_id,
			content=excluded.content, note=excluded.note, tags=excluded.tags,
			created_at=excluded.created_at, updated_at=excluded.updated_at
	`,
		n.ID.String(), docID.String(), parentIDString(n.ParentID),
		htmlutil.StripHTML(n.Content), htmlutil.StripHTML(note), strings.Join(n.Tags, " "),
		n.CreatedAt.Format("2006-01-02T15:04:05.000Z"), n.UpdatedAt.Format("2006-01-02T15:04:05.000Z"))
	if err != nil {
		return outline.NewError(outline.ErrIO, "insert node", err)
	}
	return nil
}

func parentIDString(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// DeleteNode removes one record by id.
func (idx *Index) DeleteNode(nodeID uuid.UUID) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if _, err := idx.db.Exec(`DELETE FROM nodes WHERE id = ?`, nodeID.String()); err != nil {
		return outline.NewError(outline.ErrIO, "delete_node", err)
	}
	return nil
}

var mentionPattern = regexp.MustCompile(`\[\[([0-9a-fA-F-]{36})\]\]`)

// UpdateDocumentLinks scans each node's content/note for [[node-id]]
// mentions and rebuilds the backlink table for docID.
func (idx *Index) UpdateDocumentLinks(docID uuid.UUID, nodes []outline.Node) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	tx, err := idx.db.Begin()
	if err != nil {
		return outline.NewError(outline.ErrIO, "update_document_links", err)
	}
	defer tx.Rollback()

	docNodeIDs := make([]string, 0, len(nodes))
	for _, n := range nodes {
		docNodeIDs = append(docNodeIDs, n.ID.String())
	}
	if len(docNodeIDs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(docNodeIDs)), ",")
		args := make([]any, len(docNodeIDs))
		for i, id := range docNodeIDs {
			args[i] = id
		}
		if _, err := tx.Exec(`DELETE FROM node_links WHERE source_id IN (`+placeholders+`)`, args...); err != nil {
			return outline.NewError(outline.ErrIO, "update_document_links", err)
		}
	}

	for _, n := range nodes {
		note := ""
		if n.Note != nil {
			note = *n.Note
		}
		for _, target := range mentionTargets(n.Content + " " + note) {
			if _, err := tx.Exec(`INSERT OR IGNORE INTO node_links(source_id, target_id) VALUES (?, ?)`,
				n.ID.String(), target); err != nil {
				return outline.NewError(outline.ErrIO, "update_document_links", err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return outline.NewError(outline.ErrIO, "update_document_links", err)
	}
	return nil
}

func mentionTargets(text string) []string {
	matches := mentionPattern.FindAllStringSubmatch(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, err := uuid.Parse(m[1]); err == nil {
			out = append(out, m[1])
		}
	}
	return out
}

// Backlink is one node referencing another by id.
type Backlink struct {
	SourceID   uuid.UUID
	DocumentID uuid.UUID
}

// GetBacklinks returns every node that mentions nodeID.
func (idx *Index) GetBacklinks(nodeID uuid.UUID) ([]Backlink, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	rows, err := idx.db.Query(`
		SELECT nl.source_id, n.document_id
		FROM node_links nl
		JOIN nodes n ON n.id = nl.source_id
		WHERE nl.target_id = ?
	`, nodeID.String())
	if err != nil {
		return nil, outline.NewError(outline.ErrIO, "get_backlinks", err)
	}
	defer rows.Close()

	var out []Backlink
	for rows.Next() {
		var sourceStr, docStr string
		if err := rows.Scan(&sourceStr, &docStr); err != nil {
			return nil, outline.NewError(outline.ErrIO, "get_backlinks", err)
		}
		source, err := uuid.Parse(sourceStr)
		if err != nil {
			continue
		}
		doc, err := uuid.Parse(docStr)
		if err != nil {
			continue
		}
		out = append(out, Backlink{SourceID: source, DocumentID: doc})
	}
	return out, rows.Err()
}

// Search runs a full-text query, optionally scoped to docID. limit <= 0
// means no limit.
func (idx *Index) Search(query string, docID *uuid.UUID, limit int) ([]Result, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	matchQuery := escapeFTSQuery(query)
	if matchQuery == "" {
		return nil, nil
	}

	sqlQuery := `
		SELECT n.id, n.document_id, n.content, n.note,
		       snippet(nodes_fts, 2, '<mark>', '</mark>', '...', 32) AS snippet,
		       bm25(nodes_fts) AS rank
		FROM nodes_fts
		JOIN nodes n ON n.rowid = nodes_fts.rowid
		WHERE nodes_fts MATCH ?
	`
	args := []any{matchQuery}
	if docID != nil {
		sqlQuery += ` AND n.document_id = ?`
		args = append(args, docID.String())
	}
	sqlQuery += ` ORDER BY rank`
	if limit > 0 {
		sqlQuery += fmt.Sprintf(` LIMIT %d`, limit)
	}

	rows, err := idx.db.Query(sqlQuery, args...)
	if err != nil {
		return nil, outline.NewError(outline.ErrIO, "search", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var nodeStr, docStr, content, note, snippet string
		var rank float64
		if err := rows.Scan(&nodeStr, &docStr, &content, &note, &snippet, &rank); err != nil {
			return nil, outline.NewError(outline.ErrIO, "search", err)
		}
		nodeID, err := uuid.Parse(nodeStr)
		if err != nil {
			continue
		}
		documentID, err := uuid.Parse(docStr)
		if err != nil {
			continue
		}
		results = append(results, Result{
			NodeID: nodeID, DocumentID: documentID,
			Content: content, Note: note, Snippet: snippet, Rank: rank,
		})
	}
	return results, rows.Err()
}

// escapeFTSQuery splits query on whitespace and wraps each term as a
// prefix-matched quoted term, joined with implicit AND.
func escapeFTSQuery(query string) string {
	terms := strings.Fields(query)
	parts := make([]string, 0, len(terms))
	for _, term := range terms {
		escaped := strings.ReplaceAll(term, `"`, `""`)
		parts = append(parts, fmt.Sprintf(`"%s"*`, escaped))
	}
	return strings.Join(parts, " ")
}
