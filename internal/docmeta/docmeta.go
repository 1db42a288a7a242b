// Package docmeta renders a document's node list as a flat metadata
// summary in TOML or YAML, for `outline export config` callers who want
// something other than the full JSON backup format (internal/jsonbackup)
// or the tree-shaped exports (OPML/Markdown/iCal). Wires the teacher's
// go.mod dependencies on github.com/BurntSushi/toml and gopkg.in/yaml.v3,
// which the teacher itself uses for config/doc rendering rather than for
// any outline-specific purpose — here they get an actual output format to
// serve.
package docmeta

import (
	"bytes"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/andynu/outline/internal/outline"
)

// Entry is one node's metadata projection: no content body, just the
// fields useful to skim a document's shape without opening the full tree.
type Entry struct {
	ID        string    `toml:"id" yaml:"id"`
	ParentID  string    `toml:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	NodeType  string    `toml:"node_type" yaml:"node_type"`
	IsChecked bool      `toml:"is_checked" yaml:"is_checked"`
	Tags      []string  `toml:"tags,omitempty" yaml:"tags,omitempty"`
	Date      string    `toml:"date,omitempty" yaml:"date,omitempty"`
	UpdatedAt time.Time `toml:"updated_at" yaml:"updated_at"`
}

// Document is the top-level shape both marshalers render.
type Document struct {
	DocumentID string  `toml:"document_id" yaml:"document_id"`
	NodeCount  int     `toml:"node_count" yaml:"node_count"`
	Nodes      []Entry `toml:"nodes" yaml:"nodes"`
}

// BuildDocument projects nodes into the metadata summary shape.
func BuildDocument(docID string, nodes []outline.Node) Document {
	entries := make([]Entry, 0, len(nodes))
	for _, n := range nodes {
		e := Entry{
			ID:        n.ID.String(),
			NodeType:  string(n.NodeType),
			IsChecked: n.IsChecked,
			Tags:      n.Tags,
			UpdatedAt: n.UpdatedAt,
		}
		if n.ParentID != nil {
			e.ParentID = n.ParentID.String()
		}
		if n.Date != nil {
			e.Date = *n.Date
		}
		entries = append(entries, e)
	}
	return Document{DocumentID: docID, NodeCount: len(entries), Nodes: entries}
}

// MarshalTOML renders doc as TOML.
func MarshalTOML(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return nil, outline.NewError(outline.ErrParse, "docmeta toml", err)
	}
	return buf.Bytes(), nil
}

// MarshalYAML renders doc as YAML.
func MarshalYAML(doc Document) ([]byte, error) {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, outline.NewError(outline.ErrParse, "docmeta yaml", err)
	}
	return data, nil
}
