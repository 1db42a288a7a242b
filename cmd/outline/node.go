package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/andynu/outline/internal/outline"
)

var nodeCmd = &cobra.Command{
	Use:     "node",
	GroupID: "nodes",
	Short:   "Create and mutate nodes within a document",
}

var nodeCreateCmd = &cobra.Command{
	Use:   "create <doc-id> <content>",
	Short: "Create a node",
	Long: `Append a Create operation to doc-id's log and apply it.

Examples:
  outline node create 018f1b2a-... "Buy milk"
  outline node create 018f1b2a-... "Sub-item" --parent 018f1b2b-... --position 1`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		docID, err := parseDocID(args[0])
		if err != nil {
			return err
		}
		parentStr, _ := cmd.Flags().GetString("parent")
		position, _ := cmd.Flags().GetInt32("position")
		nodeType, _ := cmd.Flags().GetString("type")

		var parentID *uuid.UUID
		if parentStr != "" {
			id, err := uuid.Parse(parentStr)
			if err != nil {
				return fmt.Errorf("invalid --parent: %w", err)
			}
			parentID = &id
		}

		op := outline.NewCreateOp(parentID, position, args[1], outline.NodeType(nodeType))
		if err := applyAndIndex(a, docID, op); err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(map[string]string{"id": op.ID.String()})
		}
		fmt.Println(op.ID)
		return nil
	},
}

var nodeUpdateCmd = &cobra.Command{
	Use:   "update <doc-id> <node-id>",
	Short: "Apply a sparse patch to a node",
	Long: `Update one or more fields of an existing node. Only flags explicitly
passed are changed; everything else is left untouched.

Examples:
  outline node update 018f1b2a-... 018f1b2c-... --content "Buy oat milk"
  outline node update 018f1b2a-... 018f1b2c-... --checked
  outline node update 018f1b2a-... 018f1b2c-... --date 2026-08-01`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		docID, err := parseDocID(args[0])
		if err != nil {
			return err
		}
		nodeID, err := parseDocID(args[1])
		if err != nil {
			return err
		}

		var changes outline.NodeChanges
		if cmd.Flags().Changed("content") {
			v, _ := cmd.Flags().GetString("content")
			changes.Content = &v
		}
		if cmd.Flags().Changed("note") {
			v, _ := cmd.Flags().GetString("note")
			changes.Note = &v
		}
		if cmd.Flags().Changed("checked") {
			v, _ := cmd.Flags().GetBool("checked")
			changes.IsChecked = &v
		}
		if cmd.Flags().Changed("date") {
			v, _ := cmd.Flags().GetString("date")
			changes.Date = &v
		}
		if cmd.Flags().Changed("recurrence") {
			v, _ := cmd.Flags().GetString("recurrence")
			changes.DateRecurrence = &v
		}
		if cmd.Flags().Changed("color") {
			v, _ := cmd.Flags().GetString("color")
			changes.Color = &v
		}

		op := outline.NewUpdateOp(nodeID, changes)
		return applyAndIndex(a, docID, op)
	},
}

var nodeMoveCmd = &cobra.Command{
	Use:   "move <doc-id> <node-id>",
	Short: "Reparent and/or reposition a node",
	Long: `Move a node to a new parent (or to root with --root) at position.

Examples:
  outline node move 018f1b2a-... 018f1b2c-... --parent 018f1b2d-... --position 0
  outline node move 018f1b2a-... 018f1b2c-... --root --position 2`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		docID, err := parseDocID(args[0])
		if err != nil {
			return err
		}
		nodeID, err := parseDocID(args[1])
		if err != nil {
			return err
		}

		root, _ := cmd.Flags().GetBool("root")
		parentStr, _ := cmd.Flags().GetString("parent")
		position, _ := cmd.Flags().GetInt32("position")

		var parentID *uuid.UUID
		if !root {
			if parentStr == "" {
				return fmt.Errorf("one of --parent or --root is required")
			}
			id, err := uuid.Parse(parentStr)
			if err != nil {
				return fmt.Errorf("invalid --parent: %w", err)
			}
			parentID = &id
		}

		op := outline.NewMoveOp(nodeID, parentID, position)
		return applyAndIndex(a, docID, op)
	},
}

var nodeDeleteCmd = &cobra.Command{
	Use:     "delete <doc-id> <node-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a node and its descendants",
	Long: `Delete a node. Every descendant is deleted too (the fixed-point expansion
internal/outline.Apply performs for OpDelete).

Examples:
  outline node delete 018f1b2a-... 018f1b2c-...`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		docID, err := parseDocID(args[0])
		if err != nil {
			return err
		}
		nodeID, err := parseDocID(args[1])
		if err != nil {
			return err
		}

		op := outline.NewDeleteOp(nodeID)
		return applyAndIndex(a, docID, op)
	},
}

// applyAndIndex appends op to doc-id's log, then mirrors the resulting
// state into the search index: an upsert for Create/Update/Move, a delete
// for Delete, followed by a backlink rebuild — the caller-updates-index-
// after-successful-apply contract spec §4.3 describes.
func applyAndIndex(a *app, docID uuid.UUID, op outline.Operation) error {
	doc, err := a.store.Open(docID)
	if err != nil {
		return err
	}
	if err := doc.Append(op); err != nil {
		return err
	}

	state := doc.State()
	if op.Op == outline.OpDelete {
		if err := a.index.DeleteNode(op.ID); err != nil {
			return err
		}
	} else if n := state.FindNode(op.ID); n != nil {
		if err := a.index.UpdateNode(docID, *n); err != nil {
			return err
		}
	}
	return a.index.UpdateDocumentLinks(docID, state.Nodes)
}

func init() {
	nodeCreateCmd.Flags().String("parent", "", "parent node id (root if omitted)")
	nodeCreateCmd.Flags().Int32("position", 0, "sibling position")
	nodeCreateCmd.Flags().String("type", string(outline.NodeTypeBullet), "node type: bullet, checkbox, heading")

	nodeUpdateCmd.Flags().String("content", "", "new content")
	nodeUpdateCmd.Flags().String("note", "", "new note")
	nodeUpdateCmd.Flags().Bool("checked", false, "checked state")
	nodeUpdateCmd.Flags().String("date", "", "due date (YYYY-MM-DD, empty clears)")
	nodeUpdateCmd.Flags().String("recurrence", "", "RRULE recurrence (empty clears)")
	nodeUpdateCmd.Flags().String("color", "", "color label")

	nodeMoveCmd.Flags().String("parent", "", "new parent node id")
	nodeMoveCmd.Flags().Bool("root", false, "move to document root")
	nodeMoveCmd.Flags().Int32("position", 0, "sibling position")

	nodeCmd.AddCommand(nodeCreateCmd, nodeUpdateCmd, nodeMoveCmd, nodeDeleteCmd)
	rootCmd.AddCommand(nodeCmd)
}
