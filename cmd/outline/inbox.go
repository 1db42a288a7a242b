package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/andynu/outline/internal/config"
	"github.com/andynu/outline/internal/docstore"
	"github.com/andynu/outline/internal/inbox"
)

var inboxCmd = &cobra.Command{
	Use:     "inbox",
	GroupID: "inbox",
	Short:   "Quick-capture queue, drained into a designated node",
}

var inboxCaptureCmd = &cobra.Command{
	Use:   "capture [content]",
	Short: "Append one item to the inbox",
	Long: `Capture one line to inbox.jsonl, outside any document. Run with no
arguments to fill in content and an optional note through an interactive
form.

Examples:
  outline inbox capture "call the dentist"
  outline inbox capture "call the dentist" --note "ask about Tuesday"
  outline inbox capture`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		var content, note string
		if len(args) > 0 {
			content = args[0]
			note, _ = cmd.Flags().GetString("note")
		} else {
			if err := huh.NewForm(
				huh.NewGroup(
					huh.NewInput().Title("Content").Value(&content),
					huh.NewText().Title("Note (optional)").Value(&note),
				),
			).Run(); err != nil {
				return err
			}
		}
		if content == "" {
			return fmt.Errorf("content must not be empty")
		}

		var notePtr *string
		if note != "" {
			notePtr = &note
		}
		item := inbox.NewItem(content, notePtr, nil)
		return inbox.Capture(a.inboxPath(), item)
	},
}

var inboxDrainCmd = &cobra.Command{
	Use:   "drain",
	Short: "Move every captured item into the configured target node and clear the inbox",
	Long: `Read every item in inbox.jsonl, append them as child nodes under the
target document/node from config.json's inbox section, then clear the
inbox file.

Examples:
  outline inbox drain`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		cfg := config.Load()
		if cfg.Inbox == nil || cfg.Inbox.DocumentID == "" || cfg.Inbox.NodeID == "" {
			return fmt.Errorf("no inbox target configured; run 'outline inbox set-target' first")
		}
		docID, err := parseDocID(cfg.Inbox.DocumentID)
		if err != nil {
			return fmt.Errorf("configured inbox document id: %w", err)
		}
		nodeID, err := parseDocID(cfg.Inbox.NodeID)
		if err != nil {
			return fmt.Errorf("configured inbox node id: %w", err)
		}

		items, warnings := inbox.Read(a.inboxPath())
		for _, w := range warnings {
			fmt.Fprintln(os.Stderr, "warning:", w)
		}
		if len(items) == 0 {
			fmt.Println("inbox is empty")
			return nil
		}

		doc, err := a.store.Open(docID)
		if err != nil {
			return err
		}
		startPosition := nextPosition(doc, nodeID)
		ops := inbox.DrainOps(items, nodeID, startPosition)
		for _, op := range ops {
			if err := applyAndIndex(a, docID, op); err != nil {
				return err
			}
		}
		if err := inbox.Clear(a.inboxPath()); err != nil {
			return err
		}
		fmt.Printf("drained %d item(s) into %s\n", len(items), nodeID)
		return nil
	},
}

var inboxSetTargetCmd = &cobra.Command{
	Use:   "set-target <doc-id> <node-id>",
	Short: "Configure where 'inbox drain' files captured items",
	Long: `Write doc-id/node-id into config.json's inbox section.

Examples:
  outline inbox set-target 018f1b2a-... 018f1b2c-...`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := uuid.Parse(args[0]); err != nil {
			return fmt.Errorf("invalid document id: %w", err)
		}
		if _, err := uuid.Parse(args[1]); err != nil {
			return fmt.Errorf("invalid node id: %w", err)
		}

		path, err := config.ConfigPath()
		if err != nil {
			return err
		}
		cfg := config.Load()
		cfg.Inbox = &config.Inbox{DocumentID: args[0], NodeID: args[1]}

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0o644)
	},
}

// nextPosition returns the sibling position one past nodeID's current last
// child, so drained items land after whatever is already there.
func nextPosition(doc *docstore.Document, nodeID uuid.UUID) int32 {
	children := doc.State().Children(&nodeID)
	if len(children) == 0 {
		return 0
	}
	return children[len(children)-1].Position + 1
}

func init() {
	inboxCaptureCmd.Flags().String("note", "", "optional note (ignored when content is read from the form)")
	inboxCmd.AddCommand(inboxCaptureCmd, inboxDrainCmd, inboxSetTargetCmd)
	rootCmd.AddCommand(inboxCmd)
}
