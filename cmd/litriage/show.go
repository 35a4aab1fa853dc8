package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hollis/litriage/internal/notes"
	"github.com/hollis/litriage/internal/source"
	"github.com/hollis/litriage/internal/storage"
	"github.com/hollis/litriage/internal/triage"
)

var viewCmd = &cobra.Command{
	Use:   "view <doi>",
	Short: "Show a single article by DOI",
	Args:  cobra.ExactArgs(1),
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

		id, ok := source.NormalizeDOI(args[0])
		if !ok {
			return fmt.Errorf("%q does not look like a DOI", args[0])
		}
		article, err := store.GetArticle(id)
		if err != nil {
			return err
		}
		if article.State == storage.StateUnseen {
			tr := triage.New(store, notes.NewMarkdownWriter(cfg.Notes))
			if article, err = tr.MarkViewed(id); err != nil {
				return err
			}
		}
		printArticle(article)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
