package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/andynu/outline/internal/outlog"
	"github.com/andynu/outline/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	GroupID: "daemon",
	Short:   "Watch documents/ and reload+reindex changed documents",
	Long: `Run a long-lived watch over the data directory's documents/ tree. Each
500ms-debounced batch of changed document ids is reloaded from disk (picking
up what an external sync agent wrote) and re-mirrored into the search
index.

Examples:
  outline watch
  outline watch --log-file /tmp/outline-watch.log`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		if logFile, _ := cmd.Flags().GetString("log-file"); logFile != "" {
			outlog.UseFile(logFile, 10, 3, 28)
		}

		w := watcher.New(filepath.Join(a.dataDir, "documents"))
		changes := make(chan watcher.ChangeSet, 16)
		w.Subscribe(changes)
		if err := w.Start(); err != nil {
			return err
		}
		defer w.Stop()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		fmt.Println("watching", a.dataDir, "(Ctrl-C to stop)")
		for {
			select {
			case cs := <-changes:
				for _, id := range cs.DocumentIDs {
					a.store.Forget(id)
					doc, err := a.store.Open(id)
					if err != nil {
						outlog.Warnf("reload %s: %v", id, err)
						continue
					}
					state := doc.State()
					if err := a.index.IndexDocument(id, state.Nodes); err != nil {
						outlog.Warnf("reindex %s: %v", id, err)
						continue
					}
					if err := a.index.UpdateDocumentLinks(id, state.Nodes); err != nil {
						outlog.Warnf("relink %s: %v", id, err)
					}
					outlog.Logf("reloaded and reindexed %s", id)
				}
			case <-sigCh:
				fmt.Println("stopping")
				return nil
			}
		}
	},
}

func init() {
	watchCmd.Flags().String("log-file", "", "redirect log output to a rotating file instead of stderr")
	rootCmd.AddCommand(watchCmd)
}
