package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/andynu/outline/internal/docmeta"
	"github.com/andynu/outline/internal/icalexport"
	"github.com/andynu/outline/internal/jsonbackup"
	"github.com/andynu/outline/internal/markdownexport"
	"github.com/andynu/outline/internal/opml"
	"github.com/andynu/outline/internal/outline"
)

var exportCmd = &cobra.Command{
	Use:     "export",
	GroupID: "io",
	Short:   "Export a document to OPML, Markdown, JSON, iCal, or config form",
}

func loadExportNodes(cmd *cobra.Command, docArg string) (*app, []outline.Node, error) {
	a, err := newApp(cmd)
	if err != nil {
		return nil, nil, err
	}
	id, err := parseDocID(docArg)
	if err != nil {
		a.close()
		return nil, nil, err
	}
	doc, err := a.store.Open(id)
	if err != nil {
		a.close()
		return nil, nil, err
	}
	return a, doc.State().Nodes, nil
}

func writeOutput(cmd *cobra.Command, content string) error {
	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		fmt.Println(content)
		return nil
	}
	return os.WriteFile(out, []byte(content), 0o644)
}

var exportOPMLCmd = &cobra.Command{
	Use:   "opml <doc-id>",
	Short: "Export as OPML 2.0",
	Long: `Write doc-id's tree as OPML.

Examples:
  outline export opml 018f1b2a-... > backup.opml
  outline export opml 018f1b2a-... --out backup.opml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, nodes, err := loadExportNodes(cmd, args[0])
		if err != nil {
			return err
		}
		defer a.close()
		out, err := opml.Generate(nodes, args[0])
		if err != nil {
			return err
		}
		return writeOutput(cmd, out)
	},
}

var exportMarkdownCmd = &cobra.Command{
	Use:   "markdown <doc-id>",
	Short: "Export as indented Markdown bullets",
	Long: `Write doc-id's tree as Markdown, with calendar-app emoji metadata for
dates, recurrence, and completion.

Examples:
  outline export markdown 018f1b2a-... > notes.md
  outline export markdown 018f1b2a-... --preview`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, nodes, err := loadExportNodes(cmd, args[0])
		if err != nil {
			return err
		}
		defer a.close()
		md := markdownexport.Generate(nodes)

		if preview, _ := cmd.Flags().GetBool("preview"); preview {
			rendered, err := glamour.Render(md, "dark")
			if err != nil {
				return err
			}
			fmt.Print(rendered)
			return nil
		}
		return writeOutput(cmd, md)
	},
}

var exportJSONCmd = &cobra.Command{
	Use:   "json <doc-id>",
	Short: "Export as a full-fidelity JSON backup",
	Long: `Write doc-id's nodes as a JSON backup ({version, exported_at, nodes}),
the exact inverse of "outline import json".

Examples:
  outline export json 018f1b2a-... --out backup.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, nodes, err := loadExportNodes(cmd, args[0])
		if err != nil {
			return err
		}
		defer a.close()
		data, err := jsonbackup.Export(nodes, time.Now().UTC())
		if err != nil {
			return err
		}
		return writeOutput(cmd, string(data))
	},
}

var exportICalCmd = &cobra.Command{
	Use:   "ical <doc-id>",
	Short: "Export dated nodes as an iCalendar feed",
	Long: `Write one VEVENT per node carrying a Date.

Examples:
  outline export ical 018f1b2a-... --out tasks.ics`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, nodes, err := loadExportNodes(cmd, args[0])
		if err != nil {
			return err
		}
		defer a.close()
		return writeOutput(cmd, icalexport.Generate(nodes))
	},
}

var exportConfigCmd = &cobra.Command{
	Use:   "config <doc-id>",
	Short: "Export a flat node-metadata summary as TOML or YAML",
	Long: `Render doc-id's node metadata (no content body) in TOML or YAML, for
skimming a document's shape without opening the full tree.

Examples:
  outline export config 018f1b2a-...
  outline export config 018f1b2a-... --format yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, nodes, err := loadExportNodes(cmd, args[0])
		if err != nil {
			return err
		}
		defer a.close()

		doc := docmeta.BuildDocument(args[0], nodes)
		format, _ := cmd.Flags().GetString("format")
		var data []byte
		switch format {
		case "yaml":
			data, err = docmeta.MarshalYAML(doc)
		default:
			data, err = docmeta.MarshalTOML(doc)
		}
		if err != nil {
			return err
		}
		return writeOutput(cmd, string(data))
	},
}

func init() {
	for _, c := range []*cobra.Command{exportOPMLCmd, exportMarkdownCmd, exportJSONCmd, exportICalCmd, exportConfigCmd} {
		c.Flags().String("out", "", "write to this path instead of stdout")
	}
	exportMarkdownCmd.Flags().Bool("preview", false, "render to the terminal with glamour instead of writing raw Markdown")
	exportConfigCmd.Flags().String("format", "toml", "output format: toml or yaml")

	exportCmd.AddCommand(exportOPMLCmd, exportMarkdownCmd, exportJSONCmd, exportICalCmd, exportConfigCmd)
	rootCmd.AddCommand(exportCmd)
}
