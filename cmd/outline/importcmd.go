package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/andynu/outline/internal/jsonbackup"
	"github.com/andynu/outline/internal/opml"
	"github.com/andynu/outline/internal/outline"
)

var importCmd = &cobra.Command{
	Use:     "import",
	GroupID: "io",
	Short:   "Import OPML, a Dynalist zip backup, or a JSON backup into a new document",
}

var importOPMLCmd = &cobra.Command{
	Use:   "opml <path>",
	Short: "Import an OPML file as a new document",
	Long: `Parse an OPML file (including the Dynalist dialect's complete/colorLabel/
heading attributes) and create a new document from it.

Examples:
  outline import opml export.opml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		nodes, err := opml.Parse(f)
		if err != nil {
			return err
		}
		id, err := createFromImport(a, opml.ToOperations(nodes, monotonicClock()))
		if err != nil {
			return err
		}
		fmt.Println(id)
		return nil
	},
}

var importZipCmd = &cobra.Command{
	Use:   "zip <path>",
	Short: "Import every *.opml entry of a Dynalist full-backup zip as its own document",
	Long: `Parse a zip archive and create one new document per *.opml entry found
inside it. An entry that fails to parse is reported and skipped rather than
aborting the whole archive.

Examples:
  outline import zip dynalist-backup.zip`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		info, err := f.Stat()
		if err != nil {
			return err
		}

		entries, errs := opml.ParseZipBackup(f, info.Size())
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, "warning:", e)
		}
		for _, entry := range entries {
			id, err := createFromImport(a, opml.ToOperations(entry.Nodes, monotonicClock()))
			if err != nil {
				fmt.Fprintf(os.Stderr, "warning: %s: %v\n", entry.Name, err)
				continue
			}
			fmt.Printf("%s -> %s\n", entry.Name, id)
		}
		return nil
	},
}

var importJSONCmd = &cobra.Command{
	Use:   "json <path>",
	Short: "Import a JSON backup as a new document",
	Long: `Parse a JSON backup ({version, exported_at, nodes}) produced by
"outline export json" and recreate it as a new document, preserving every
node field (ids, timestamps, metadata). A node whose updated_at equals its
created_at comes back with updated_at one nanosecond later.

Examples:
  outline import json backup.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		nodes, err := jsonbackup.Import(data)
		if err != nil {
			return err
		}

		doc, err := a.store.CreateDocument()
		if err != nil {
			return err
		}
		for _, n := range nodes {
			op := outline.Operation{
				Op: outline.OpCreate, ID: n.ID, ParentID: n.ParentID, Position: n.Position,
				Content: n.Content, NodeType: n.NodeType, UpdatedAt: n.CreatedAt,
			}
			if err := doc.Append(op); err != nil {
				return err
			}
			changes := outline.NodeChanges{
				Note: n.Note, NodeType: &n.NodeType, HeadingLevel: n.HeadingLevel, IsChecked: &n.IsChecked,
				Color: n.Color, Tags: &n.Tags, Date: n.Date, DateRecurrence: n.DateRecurrence,
				Collapsed: &n.Collapsed, MirrorSourceID: n.MirrorSourceID,
			}
			update := outline.Operation{Op: outline.OpUpdate, ID: n.ID, Changes: &changes, UpdatedAt: n.UpdatedAt}
			if !update.UpdatedAt.After(n.CreatedAt) {
				update.UpdatedAt = n.CreatedAt.Add(time.Nanosecond)
			}
			if err := doc.Append(update); err != nil {
				return err
			}
		}
		state := doc.State()
		if err := a.index.IndexDocument(doc.ID(), state.Nodes); err != nil {
			return err
		}
		if err := a.index.UpdateDocumentLinks(doc.ID(), state.Nodes); err != nil {
			return err
		}
		fmt.Println(doc.ID())
		return nil
	},
}

// monotonicClock returns a now func anchored to the current wall clock but
// guaranteed to hand out strictly increasing timestamps on every call,
// matching the incrementing test clock in internal/opml/parser_test.go: a
// bare time.Now().UTC() can read the same coarse-resolution instant twice in
// a row, and ToOperations' Create/Update pair relies on the Update's
// timestamp being strictly after the Create's (outline.Apply drops an Update
// that isn't strictly newer).
func monotonicClock() func() time.Time {
	base := time.Now().UTC()
	var tick int64
	return func() time.Time {
		tick++
		return base.Add(time.Duration(tick))
	}
}

// createFromImport allocates a new document and replays ops into it,
// indexing the result. Used by both the OPML and zip-backup import paths,
// since "import AS a new document" (spec §4.5) is the same allocate-then-
// replay-then-index pipeline either way.
func createFromImport(a *app, ops []outline.Operation) (string, error) {
	doc, err := a.store.CreateDocument()
	if err != nil {
		return "", err
	}
	for _, op := range ops {
		if err := doc.Append(op); err != nil {
			return "", err
		}
	}
	state := doc.State()
	if err := a.index.IndexDocument(doc.ID(), state.Nodes); err != nil {
		return "", err
	}
	if err := a.index.UpdateDocumentLinks(doc.ID(), state.Nodes); err != nil {
		return "", err
	}
	return doc.ID().String(), nil
}

func init() {
	importCmd.AddCommand(importOPMLCmd, importZipCmd, importJSONCmd)
	rootCmd.AddCommand(importCmd)
}
