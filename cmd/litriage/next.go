package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hollis/litriage/internal/filter"
	"github.com/hollis/litriage/internal/notes"
	"github.com/hollis/litriage/internal/storage"
	"github.com/hollis/litriage/internal/triage"
)

var nextFlags viewFlags

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Show the next article in the filtered queue",
	Long: `Show the next article in the filtered queue and mark it as viewed.

The browse position is persisted, so repeated invocations step through
the queue one article at a time. Changing the filter resets the
position to the start of the new queue.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		fcfg := nextFlags.config()
		view, err := currentView(store, cfg, fcfg)
		if err != nil {
			return err
		}
		if len(view) == 0 {
			fmt.Println("No articles match the current filter. Try 'litriage sync' or a wider filter.")
			return nil
		}

		pos, err := store.GetBrowsePosition()
		if err != nil {
			return err
		}
		idx := nextIndex(pos, view, filter.Fingerprint(fcfg))
		if idx >= len(view) {
			fmt.Printf("End of queue (%d articles). Adjust the filter or run 'litriage sync'.\n", len(view))
			return nil
		}

		article := view[idx]
		tr := triage.New(store, notes.NewMarkdownWriter(cfg.Notes))
		if article.State == storage.StateUnseen {
			if article, err = tr.MarkViewed(article.ID); err != nil {
				return err
			}
		}

		fmt.Printf("[%d/%d]\n\n", idx+1, len(view))
		printArticle(article)
		fmt.Printf("\n('litriage save' to keep, 'litriage skip' to dismiss)\n")

		return store.SaveBrowsePosition(&storage.BrowsePosition{
			CurrentID:         article.ID,
			FilterFingerprint: filter.Fingerprint(fcfg),
			Index:             idx,
		})
	},
}

// nextIndex resolves the saved position against the current queue. A
// changed fingerprint invalidates the cursor and browsing restarts at
// the head. When the current article left the queue (saved or skipped
// elsewhere) the saved index points at its successor already.
func nextIndex(pos *storage.BrowsePosition, view []*storage.Article, fingerprint string) int {
	if pos.FilterFingerprint != fingerprint || pos.CurrentID == "" {
		return 0
	}
	for i, a := range view {
		if a.ID == pos.CurrentID {
			return i + 1
		}
	}
	if pos.Index < len(view) {
		return pos.Index
	}
	return len(view)
}

func init() {
	addViewFlags(nextCmd, &nextFlags)
	rootCmd.AddCommand(nextCmd)
}
