package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andynu/outline/internal/style"
)

var docCmd = &cobra.Command{
	Use:     "doc",
	GroupID: "documents",
	Short:   "Manage documents",
}

var docCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new, empty document",
	Long: `Create a new document directory under the data directory's documents/
tree and print its id.

Examples:
  outline doc create
  outline doc create --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		doc, err := a.store.CreateDocument()
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(map[string]string{"document_id": doc.ID().String()})
		}
		fmt.Println(doc.ID())
		return nil
	},
}

var docListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List every document",
	Long: `List every document directory present under documents/, annotated with
its folder name when folders.json happens to have one (spec §7's
supplemented folder-metadata passthrough).

Examples:
  outline doc list
  outline doc list --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		ids, err := a.store.List()
		if err != nil {
			return err
		}

		if jsonOutput {
			type row struct {
				ID     string `json:"id"`
				Folder string `json:"folder,omitempty"`
			}
			rows := make([]row, 0, len(ids))
			for _, id := range ids {
				rows = append(rows, row{ID: id.String(), Folder: a.folderName(id)})
			}
			return printJSON(rows)
		}

		rows := make([][]string, 0, len(ids))
		for _, id := range ids {
			folder := a.folderName(id)
			if folder == "" {
				folder = style.HintStyle.Render("(no folder)")
			}
			rows = append(rows, []string{id.String(), folder})
		}
		t := style.NewTable().Headers("Document", "Folder").Rows(rows...)
		fmt.Println(t)
		return nil
	},
}

var docShowCmd = &cobra.Command{
	Use:   "show <doc-id>",
	Short: "Print a document's tree",
	Long: `Load a document and print its nodes as an indented tree.

Examples:
  outline doc show 018f1b2a-...
  outline doc show 018f1b2a-... --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		id, err := parseDocID(args[0])
		if err != nil {
			return err
		}
		doc, err := a.store.Open(id)
		if err != nil {
			return err
		}
		state := doc.State()

		if jsonOutput {
			return printJSON(state)
		}
		printTree(state, nil, 0)
		return nil
	},
}

var docCompactCmd = &cobra.Command{
	Use:   "compact <doc-id>",
	Short: "Rewrite a document's snapshot and remove its pending logs",
	Long: `Compact a document: write the in-memory state as the new state.json and
delete every pending.*.jsonl file. Refuses if an external change (e.g. a
sync agent still mid-write) has been detected since this process loaded
the document.

Examples:
  outline doc compact 018f1b2a-...`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		id, err := parseDocID(args[0])
		if err != nil {
			return err
		}
		doc, err := a.store.Open(id)
		if err != nil {
			return err
		}
		return doc.Compact()
	},
}

func init() {
	docCmd.AddCommand(docCreateCmd, docListCmd, docShowCmd, docCompactCmd)
	rootCmd.AddCommand(docCmd)
}
