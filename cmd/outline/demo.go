package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andynu/outline/internal/outline"
)

var demoCmd = &cobra.Command{
	Use:     "demo",
	GroupID: "documents",
	Short:   "Seed a new document with sample content, for manual testing",
	Long: `Create a new document and populate it with the same "Welcome to Outline /
Getting Started / Features" fixture original_source/commands.rs seeds a
fresh document with, useful for exercising doc show / search / export
without hand-authoring content first.

Examples:
  outline demo`,
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

		root1 := outline.NewNode("Welcome to Outline")
		root1.Position = 0
		root2 := outline.NewNode("Getting Started")
		root2.Position = 1
		root3 := outline.NewNode("Features")
		root3.Position = 2

		children := []outline.Node{
			outline.NewChildNode(root2.ID, 0, "Press Enter to create a new item"),
			outline.NewChildNode(root2.ID, 1, "Press Tab to indent"),
			outline.NewChildNode(root2.ID, 2, "Press Shift+Tab to outdent"),
			outline.NewChildNode(root3.ID, 0, "Hierarchical notes"),
			outline.NewChildNode(root3.ID, 1, "Full-text search across documents"),
			outline.NewChildNode(root3.ID, 2, "Sync across machines via a file-sync agent"),
		}

		for _, n := range append([]outline.Node{root1, root2, root3}, children...) {
			op := outline.Operation{
				Op: outline.OpCreate, ID: n.ID, ParentID: n.ParentID, Position: n.Position,
				Content: n.Content, NodeType: n.NodeType, UpdatedAt: n.CreatedAt,
			}
			if err := doc.Append(op); err != nil {
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

func init() {
	rootCmd.AddCommand(demoCmd)
}
