// Package folders is a thin, read-only view over <data>/folders.json, the
// folder-organization metadata spec §1 and §6 treat as an opaque sibling
// JSON store owned by the glue layer, not the core. This package never
// writes the file; it exists only so `outline doc list` can annotate its
// output with a folder name when one happens to be present (spec §7 of
// SPEC_FULL's supplemented-features list).
package folders

import (
	"encoding/json"
	"os"

	"github.com/google/uuid"
)

// entry is the shape original_source/folders.rs keeps per document: a
// folder name plus whatever else the UI layer wants, which this package
// ignores beyond Name.
type entry struct {
	Name string `json:"name"`
}

// Read parses <data>/folders.json into a document-id -> folder-name map.
// A missing or unparseable file yields an empty map rather than an error,
// matching the "opaque, core never depends on it" framing.
func Read(path string) map[uuid.UUID]string {
	data, err := os.ReadFile(path)
	if err != nil {
		return map[uuid.UUID]string{}
	}

	var raw map[string]entry
	if err := json.Unmarshal(data, &raw); err != nil {
		return map[uuid.UUID]string{}
	}

	out := make(map[uuid.UUID]string, len(raw))
	for idStr, e := range raw {
		id, err := uuid.Parse(idStr)
		if err != nil {
			continue
		}
		out[id] = e.Name
	}
	return out
}

// NameFor returns the folder name for docID, or "" if unset/absent.
func NameFor(folderPath string, docID uuid.UUID) string {
	return Read(folderPath)[docID]
}
