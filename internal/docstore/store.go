package docstore

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/andynu/outline/internal/outline"
)

// Store is the process-wide registry of loaded documents, keyed by id. Each
// Document carries its own lock (see §5: "the currently loaded Document —
// behind one lock"); Store adds a second, much shorter-held lock just to
// protect the map itself.
type Store struct {
	mu           sync.Mutex
	documentsDir string
	loaded       map[uuid.UUID]*Document
}

// NewStore opens (creating if absent) the documents/ directory under dataDir.
func NewStore(dataDir string) (*Store, error) {
	documentsDir := filepath.Join(dataDir, "documents")
	if err := os.MkdirAll(documentsDir, 0o755); err != nil {
		return nil, outline.NewError(outline.ErrIO, documentsDir, err)
	}
	return &Store{documentsDir: documentsDir, loaded: map[uuid.UUID]*Document{}}, nil
}

// DocumentsDir returns the root directory documents are stored under.
func (s *Store) DocumentsDir() string { return s.documentsDir }

// Open returns the already-loaded Document for id if present, otherwise
// loads it from disk.
func (s *Store) Open(id uuid.UUID) (*Document, error) {
	s.mu.Lock()
	if d, ok := s.loaded[id]; ok {
		s.mu.Unlock()
		return d, nil
	}
	s.mu.Unlock()

	d, err := Load(filepath.Join(s.documentsDir, id.String()))
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.loaded[id]; ok {
		return existing, nil
	}
	s.loaded[id] = d
	return d, nil
}

// CreateDocument allocates a new document directory with a fresh id.
func (s *Store) CreateDocument() (*Document, error) {
	id := uuid.Must(uuid.NewV7())
	d, err := Create(s.documentsDir, id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.loaded[id] = d
	s.mu.Unlock()
	return d, nil
}

// List enumerates document ids present under documents/, skipping any entry
// whose name does not parse as a UUID.
func (s *Store) List() ([]uuid.UUID, error) {
	entries, err := os.ReadDir(s.documentsDir)
	if err != nil {
		return nil, outline.NewError(outline.ErrIO, s.documentsDir, err)
	}
	var ids []uuid.UUID
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		id, err := uuid.Parse(e.Name())
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Forget drops id from the in-memory registry without touching disk, so the
// next Open performs a fresh Load (used after an externally-detected
// change when the caller wants a clean reload rather than Document.Reload).
func (s *Store) Forget(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.loaded, id)
}
