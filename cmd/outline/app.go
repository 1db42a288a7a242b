package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/andynu/outline/internal/config"
	"github.com/andynu/outline/internal/docstore"
	"github.com/andynu/outline/internal/folders"
	"github.com/andynu/outline/internal/searchindex"
)

// app bundles the per-invocation handles every subcommand needs: the
// document store registry, the search index, and the resolved data
// directory. Built fresh per cobra Run, torn down before it returns —
// cmd/outline is a one-shot CLI, not a long-lived daemon, so there is no
// process-wide singleton to protect beyond what internal/config already
// owns (see spec §9 on the data-dir override).
type app struct {
	dataDir string
	store   *docstore.Store
	index   *searchindex.Index
}

func newApp(cmd *cobra.Command) (*app, error) {
	if dir, _ := cmd.Flags().GetString("data-dir"); dir != "" {
		config.SetDataDirectory(dir)
	}
	dataDir, err := config.DataDirectory()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	store, err := docstore.NewStore(dataDir)
	if err != nil {
		return nil, err
	}

	cacheDir := filepath.Join(dataDir, ".cache")
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	idx, err := searchindex.Open(filepath.Join(cacheDir, "index.db"))
	if err != nil {
		return nil, err
	}

	return &app{dataDir: dataDir, store: store, index: idx}, nil
}

func (a *app) close() {
	if a.index != nil {
		a.index.Close()
	}
}

func (a *app) inboxPath() string {
	return filepath.Join(a.dataDir, "inbox.jsonl")
}

func (a *app) foldersPath() string {
	return filepath.Join(a.dataDir, "folders.json")
}

func (a *app) folderName(id uuid.UUID) string {
	return folders.NameFor(a.foldersPath(), id)
}

// parseDocID resolves a document id argument, reporting a user-facing error
// on malformed input rather than a bare uuid.Parse message.
func parseDocID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("invalid document id %q: %w", raw, err)
	}
	return id, nil
}

// printJSON marshals v as indented JSON to stdout, for --json callers.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

