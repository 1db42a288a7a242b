// Package docstore implements the per-document on-disk store: a compacted
// snapshot plus one append-only operation log per machine, merged at load
// time and safe to synchronize between machines with a dumb file-sync agent
// (see internal/outline for the operation model this replays).
package docstore

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/andynu/outline/internal/outline"
	"github.com/andynu/outline/internal/outlog"
)

const (
	stateFileName = "state.json"

	// autoCompactOpThreshold and autoCompactByteThreshold gate the
	// auto-compact trigger on append: whichever fires first wins.
	autoCompactOpThreshold   = 1000
	autoCompactByteThreshold = 1 << 20 // 1 MiB
)

// Document is one loaded document's in-memory state plus everything needed
// to append, compact, and detect concurrent external edits. The zero value
// is not usable; construct with Load or Create.
type Document struct {
	mu sync.Mutex

	id             uuid.UUID
	dir            string
	state          outline.DocumentState
	pendingOpCount int
	lastLoadTime   time.Time
}

// ID returns the document's directory-name identity.
func (d *Document) ID() uuid.UUID { return d.id }

// Dir returns the document's directory on disk.
func (d *Document) Dir() string { return d.dir }

// State returns a copy of the currently loaded tree. Callers must not rely
// on node pointer identity across calls.
func (d *Document) State() outline.DocumentState {
	d.mu.Lock()
	defer d.mu.Unlock()
	nodes := make([]outline.Node, len(d.state.Nodes))
	copy(nodes, d.state.Nodes)
	return outline.DocumentState{Nodes: nodes}
}

func statePath(dir string) string { return filepath.Join(dir, stateFileName) }

func pendingPath(dir, host string) string {
	return filepath.Join(dir, fmt.Sprintf("pending.%s.jsonl", host))
}

func pendingGlob(dir string) string { return filepath.Join(dir, "pending.*.jsonl") }

// Create makes a new, empty document directory and returns its loaded
// Document. id is the directory name and the document's identity.
func Create(documentsDir string, id uuid.UUID) (*Document, error) {
	dir := filepath.Join(documentsDir, id.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, outline.NewError(outline.ErrIO, dir, err)
	}
	d := &Document{id: id, dir: dir}
	if err := d.saveStateLocked(); err != nil {
		return nil, err
	}
	d.lastLoadTime = time.Now()
	return d, nil
}

// Load parses dir's snapshot and every pending.*.jsonl file, sorts all
// collected operations by updated_at, and replays them in order. dir's base
// name must parse as a UUID (the document's id).
func Load(dir string) (*Document, error) {
	id, err := uuid.Parse(filepath.Base(dir))
	if err != nil {
		return nil, outline.NewError(outline.ErrReference, dir, err)
	}
	d := &Document{id: id, dir: dir}
	if err := d.loadLocked(); err != nil {
		return nil, err
	}
	return d, nil
}

// Reload re-runs the load protocol against the same directory, discarding
// in-memory state and replacing it with a fresh sorted replay. It does not
// emit any event; that is the watcher's job.
func (d *Document) Reload() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loadLocked()
}

func (d *Document) loadLocked() error {
	state, err := parseSnapshot(statePath(d.dir))
	if err != nil {
		return err
	}

	matches, err := filepath.Glob(pendingGlob(d.dir))
	if err != nil {
		return outline.NewError(outline.ErrIO, d.dir, err)
	}
	sort.Strings(matches) // deterministic traversal order before the updated_at sort

	var ops []outline.Operation
	for _, path := range matches {
		fileOps, err := parsePendingFile(path)
		if err != nil {
			return err
		}
		ops = append(ops, fileOps...)
	}

	sort.SliceStable(ops, func(i, j int) bool {
		return ops[i].UpdatedAt.Before(ops[j].UpdatedAt)
	})

	for _, op := range ops {
		outline.Apply(&state, op)
	}

	d.state = state
	d.pendingOpCount = len(ops)
	d.lastLoadTime = time.Now()
	return nil
}

func parseSnapshot(path string) (outline.DocumentState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return outline.DocumentState{}, nil
		}
		return outline.DocumentState{}, outline.NewError(outline.ErrIO, path, err)
	}
	var state outline.DocumentState
	if err := json.Unmarshal(data, &state); err != nil {
		return outline.DocumentState{}, outline.NewError(outline.ErrParse, path, err)
	}
	return state, nil
}

// parsePendingFile reads one pending.*.jsonl file, parsing each non-empty
// line as an Operation. Per spec this fails the whole load on any malformed
// line (Open Question #1 in the design notes picks the strict policy: a
// sync agent delivering a half-written file is exactly the corruption we
// want the user to notice and manually resolve, rather than silently drop
// lines from it).
func parsePendingFile(path string) ([]outline.Operation, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, outline.NewError(outline.ErrIO, path, err)
	}
	defer f.Close()

	var ops []outline.Operation
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var op outline.Operation
		if err := json.Unmarshal(line, &op); err != nil {
			return nil, outline.NewError(outline.ErrParse, fmt.Sprintf("%s:%d", path, lineNo), err)
		}
		ops = append(ops, op)
	}
	if err := scanner.Err(); err != nil {
		return nil, outline.NewError(outline.ErrIO, path, err)
	}
	return ops, nil
}

// Append serializes op as one JSON line to this machine's pending log,
// flushes it, applies it to the in-memory state, and triggers auto-compact
// if either threshold is crossed. Append failure leaves in-memory state
// untouched.
func (d *Document) Append(op outline.Operation) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	path := pendingPath(d.dir, hostname())
	size, err := appendLine(path, op)
	if err != nil {
		return err
	}

	outline.Apply(&d.state, op)
	d.pendingOpCount++

	if d.pendingOpCount >= autoCompactOpThreshold || size >= autoCompactByteThreshold {
		if err := d.compactLocked(); err != nil {
			outlog.Warnf("auto-compact %s: %v", d.dir, err)
		}
	}
	return nil
}

func appendLine(path string, op outline.Operation) (int64, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return 0, outline.NewError(outline.ErrIO, path, err)
	}
	defer f.Close()

	line, err := json.Marshal(op)
	if err != nil {
		return 0, outline.NewError(outline.ErrParse, path, err)
	}
	line = append(line, '\n')

	bw := bufio.NewWriter(f)
	if _, err := bw.Write(line); err != nil {
		return 0, outline.NewError(outline.ErrIO, path, err)
	}
	if err := bw.Flush(); err != nil {
		return 0, outline.NewError(outline.ErrIO, path, err)
	}
	if err := f.Sync(); err != nil {
		return 0, outline.NewError(outline.ErrIO, path, err)
	}

	info, err := f.Stat()
	if err != nil {
		return 0, outline.NewError(outline.ErrIO, path, err)
	}
	return info.Size(), nil
}

// HasExternalChanges reports whether state.json or any pending file other
// than this machine's own has been modified since this Document's last
// create/load/reload/compact. Callers
// MUST check this before Compact to avoid clobbering a concurrent machine's
// not-yet-observed writes.
func (d *Document) HasExternalChanges() (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.hasExternalChangesLocked()
}

// hasExternalChangesLocked checks every pending file and the snapshot for a
// modification since lastLoadTime, except this machine's own pending log:
// this machine's own appends are already folded into d.state, so their mtime
// advancing past lastLoadTime is not an "external" change — only another
// machine's file (brought in by the sync agent) or an externally-rewritten
// state.json counts.
func (d *Document) hasExternalChangesLocked() (bool, error) {
	paths, err := filepath.Glob(pendingGlob(d.dir))
	if err != nil {
		return false, outline.NewError(outline.ErrIO, d.dir, err)
	}
	paths = append(paths, statePath(d.dir))

	ownPath := pendingPath(d.dir, hostname())
	for _, p := range paths {
		if p == ownPath {
			continue
		}
		info, err := os.Stat(p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return false, outline.NewError(outline.ErrIO, p, err)
		}
		if info.ModTime().After(d.lastLoadTime) {
			return true, nil
		}
	}
	return false, nil
}

// Compact writes the current in-memory state as the new snapshot and
// deletes every pending.*.jsonl file, including other machines' — safe
// because this machine's in-memory state already incorporated every line it
// could see at load time (see package doc and spec §4.2/§9). Aborts if
// HasExternalChanges is true.
func (d *Document) Compact() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.compactLocked()
}

func (d *Document) compactLocked() error {
	external, err := d.hasExternalChangesLocked()
	if err != nil {
		return err
	}
	if external {
		return outline.NewError(outline.ErrIO, d.dir, fmt.Errorf("external changes detected, refusing to compact"))
	}

	lockPath := filepath.Join(d.dir, ".compact.lock")
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return outline.NewError(outline.ErrIO, lockPath, err)
	}
	if !locked {
		return outline.NewError(outline.ErrIO, lockPath, fmt.Errorf("another process is compacting this document"))
	}
	defer lock.Unlock()

	if err := d.saveStateLocked(); err != nil {
		return err
	}

	matches, err := filepath.Glob(pendingGlob(d.dir))
	if err != nil {
		return outline.NewError(outline.ErrIO, d.dir, err)
	}
	for _, p := range matches {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return outline.NewError(outline.ErrIO, p, err)
		}
	}

	d.pendingOpCount = 0
	d.lastLoadTime = time.Now()
	return nil
}

func (d *Document) saveStateLocked() error {
	data, err := json.MarshalIndent(d.state, "", "  ")
	if err != nil {
		return outline.NewError(outline.ErrParse, d.dir, err)
	}
	tmp := statePath(d.dir) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return outline.NewError(outline.ErrIO, tmp, err)
	}
	if err := os.Rename(tmp, statePath(d.dir)); err != nil {
		return outline.NewError(outline.ErrIO, statePath(d.dir), err)
	}
	return nil
}

// PendingOpCount returns the number of operations in the pending logs: those
// read at the last load plus those appended since, reset to zero by
// compaction. Used by tests and the auto-compact threshold.
func (d *Document) PendingOpCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pendingOpCount
}

