package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hollis/litriage/internal/notes"
	"github.com/hollis/litriage/internal/triage"
)

var skipCmd = &cobra.Command{
	Use:   "skip [doi]",
	Short: "Skip an article",
	Long: `Mark an article as skipped so it drops out of the unseen queue.

Without an argument the current browse article is skipped. Skipping an
already skipped article is a no-op.`,
	Args: cobra.MaximumNArgs(1),
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

		id, err := resolveTarget(store, args)
		if err != nil {
			return err
		}
		tr := triage.New(store, notes.NewMarkdownWriter(cfg.Notes))
		article, err := tr.Skip(id)
		if err != nil {
			return err
		}
		fmt.Printf("Skipped %q\n", article.Title)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(skipCmd)
}
