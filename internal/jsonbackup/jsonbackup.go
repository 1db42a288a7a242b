// Package jsonbackup implements the full-fidelity JSON backup format (spec
// §4.6): {version, exported_at, nodes}, round-tripping every node field.
package jsonbackup

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/andynu/outline/internal/outline"
)

// Version is the current backup format version. Readers accept only this
// value for now; a future bump would gain a migration step here.
const Version = 1

// Backup is the on-disk shape of a JSON backup file.
type Backup struct {
	Version    int            `json:"version"`
	ExportedAt time.Time      `json:"exported_at"`
	Nodes      []outline.Node `json:"nodes"`
}

// Export serializes nodes as a pretty-printed JSON backup.
func Export(nodes []outline.Node, exportedAt time.Time) ([]byte, error) {
	b := Backup{Version: Version, ExportedAt: exportedAt, Nodes: nodes}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, outline.NewError(outline.ErrParse, "json backup export", err)
	}
	return data, nil
}

// Import parses a JSON backup, returning its nodes. It is the exact inverse
// of Export and round-trips all fields, per spec §4.6.
func Import(data []byte) ([]outline.Node, error) {
	var b Backup
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, outline.NewError(outline.ErrParse, "json backup import", err)
	}
	if b.Version != Version {
		return nil, outline.NewError(outline.ErrParse, "json backup import", fmt.Errorf("unsupported backup version %d", b.Version))
	}
	return b.Nodes, nil
}
