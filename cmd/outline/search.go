package main

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/andynu/outline/internal/style"
)

var searchCmd = &cobra.Command{
	Use:     "search <query>",
	GroupID: "search",
	Short:   "Full-text search across node content, notes, and tags",
	Long: `Query the FTS5-backed search mirror, ranked by BM25.

Examples:
  outline search "milk"
  outline search "milk" --doc 018f1b2a-...
  outline search "milk" --limit 5 --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		limit, _ := cmd.Flags().GetInt("limit")
		docStr, _ := cmd.Flags().GetString("doc")
		var docID *uuid.UUID
		if docStr != "" {
			id, err := parseDocID(docStr)
			if err != nil {
				return err
			}
			docID = &id
		}

		results, err := a.index.Search(args[0], docID, limit)
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(results)
		}

		if len(results) == 0 {
			fmt.Println(style.HintStyle.Render("no matches"))
			return nil
		}
		for _, r := range results {
			fmt.Println(style.HeaderStyle.Render(r.NodeID.String()[:8]), renderSnippet(r.Snippet))
		}
		return nil
	},
}

// renderSnippet swaps the FTS5 snippet()'s <mark>/</mark> delimiters for
// the terminal style, the CLI-side equivalent of a browser rendering them
// as <mark> tags.
func renderSnippet(snippet string) string {
	s := strings.ReplaceAll(snippet, "<mark>", "\x00")
	s = strings.ReplaceAll(s, "</mark>", "\x01")
	var b strings.Builder
	inMark := false
	for _, r := range s {
		switch r {
		case '\x00':
			inMark = true
		case '\x01':
			inMark = false
		default:
			if inMark {
				b.WriteString(style.SnippetMarkStyle.Render(string(r)))
			} else {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

func init() {
	searchCmd.Flags().Int("limit", 20, "maximum results")
	searchCmd.Flags().String("doc", "", "scope the query to one document id")
	rootCmd.AddCommand(searchCmd)
}
