// Package watcher drives a single recursive, debounced filesystem watch
// over the documents root and maps raw path events to changed document ids,
// the way a sync agent's arriving/departing files are expected to be
// noticed (see spec §4.4).
package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/andynu/outline/internal/outlog"
	"github.com/andynu/outline/internal/outline"
)

// ChangeSet is the payload of one "documents-changed" event: the set of
// document ids touched since the last debounced batch.
type ChangeSet struct {
	DocumentIDs []uuid.UUID
}

// Watcher owns one fsnotify watch over documentsDir plus its debounce
// timer and subscriber list. The zero value is not usable; use New.
type Watcher struct {
	documentsDir string

	mu          sync.Mutex
	running     bool
	fsw         *fsnotify.Watcher
	debouncer   *debouncer
	stopCh      chan struct{}
	doneCh      chan struct{}
	subscribers []chan<- ChangeSet

	pendingMu  sync.Mutex
	pendingIDs map[uuid.UUID]bool
}

// New returns a Watcher over documentsDir. It does not start watching;
// call Start.
func New(documentsDir string) *Watcher {
	return &Watcher{documentsDir: documentsDir}
}

// Subscribe registers ch to receive future ChangeSet batches. Subscribe
// before Start to avoid missing the first batch.
func (w *Watcher) Subscribe(ch chan<- ChangeSet) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.subscribers = append(w.subscribers, ch)
}

// IsRunning reports whether Start has been called without a matching Stop.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Start begins watching documentsDir recursively. Starting an already
// running watcher is a no-op that reports it (idempotent start, per spec).
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return fmt.Errorf("watcher already running")
	}

	if err := os.MkdirAll(w.documentsDir, 0o755); err != nil {
		return outline.NewError(outline.ErrIO, w.documentsDir, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return outline.NewError(outline.ErrIO, "fsnotify.NewWatcher", err)
	}
	if err := addRecursive(fsw, w.documentsDir); err != nil {
		fsw.Close()
		return err
	}

	w.fsw = fsw
	w.pendingIDs = map[uuid.UUID]bool{}
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.debouncer = newDebouncer(500*time.Millisecond, w.flush)
	w.running = true

	go w.run()
	return nil
}

// Stop is best-effort and cooperative: it signals the watch loop and waits
// for it to exit, then releases the fsnotify handle.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	close(w.stopCh)
	done := w.doneCh
	w.mu.Unlock()

	<-done

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debouncer != nil {
		w.debouncer.cancel()
	}
	if w.fsw != nil {
		w.fsw.Close()
	}
	w.running = false
}

func addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if werr := fsw.Add(path); werr != nil {
				outlog.Warnf("watch %s: %v", path, werr)
			}
		}
		return nil
	})
}

func (w *Watcher) run() {
	defer close(w.doneCh)
	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			outlog.Warnf("watcher error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.fsw.Add(event.Name); err != nil {
				outlog.Warnf("watch new dir %s: %v", event.Name, err)
			}
		}
	}

	if id, ok := extractDocumentID(event.Name, w.documentsDir); ok {
		w.pendingMu.Lock()
		w.pendingIDs[id] = true
		w.pendingMu.Unlock()
	}

	w.debouncer.trigger()
}

// flush emits one ChangeSet to every subscriber. It fires even when no
// document id was identified in the batch, so subscribers watching for
// "something happened" (new/deleted documents at the root) still see an
// event, matching the original watcher's "always emit" behavior.
func (w *Watcher) flush() {
	w.pendingMu.Lock()
	ids := make([]uuid.UUID, 0, len(w.pendingIDs))
	for id := range w.pendingIDs {
		ids = append(ids, id)
	}
	w.pendingIDs = map[uuid.UUID]bool{}
	w.pendingMu.Unlock()

	w.mu.Lock()
	subs := make([]chan<- ChangeSet, len(w.subscribers))
	copy(subs, w.subscribers)
	w.mu.Unlock()

	batch := ChangeSet{DocumentIDs: ids}
	for _, ch := range subs {
		select {
		case ch <- batch:
		default:
			outlog.Warnf("subscriber channel full, dropping change-set batch")
		}
	}
}

// extractDocumentID strips documentsDir's prefix from path, takes the
// first remaining path component, and validates it as a document id.
func extractDocumentID(path, documentsDir string) (uuid.UUID, bool) {
	rel, err := filepath.Rel(documentsDir, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return uuid.UUID{}, false
	}
	first := rel
	if idx := strings.IndexRune(rel, filepath.Separator); idx >= 0 {
		first = rel[:idx]
	}
	id, err := uuid.Parse(first)
	if err != nil {
		return uuid.UUID{}, false
	}
	return id, true
}
