// Command outline is the CLI entrypoint wiring the document store, search
// index, filesystem watcher, and import/export pipelines into a single
// cobra-based binary, grounded on cmd/bd's command-registration idiom
// (package main, one file per command, var <name>Cmd registered via
// init()'s rootCmd.AddCommand).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var jsonOutput bool

var rootCmd = &cobra.Command{
	Use:   "outline",
	Short: "Persistence and search core for a hierarchical outliner",
	Long: `outline manages tree-structured notes synchronized between machines by an
external file-sync agent: no server, no CRDT, last-writer-wins by timestamp.

Examples:
  outline doc create
  outline node create <doc-id> "Buy milk"
  outline search "milk"
  outline export opml <doc-id> > backup.opml`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: "documents", Title: "Document commands:"},
		&cobra.Group{ID: "nodes", Title: "Node commands:"},
		&cobra.Group{ID: "search", Title: "Search commands:"},
		&cobra.Group{ID: "io", Title: "Import/export commands:"},
		&cobra.Group{ID: "inbox", Title: "Inbox commands:"},
		&cobra.Group{ID: "daemon", Title: "Watch/daemon commands:"},
	)
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit machine-readable JSON output")
	rootCmd.PersistentFlags().String("data-dir", "", "override the outline data directory")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
