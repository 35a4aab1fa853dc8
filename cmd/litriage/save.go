package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hollis/litriage/internal/notes"
	"github.com/hollis/litriage/internal/source"
	"github.com/hollis/litriage/internal/storage"
	"github.com/hollis/litriage/internal/triage"
)

var saveCmd = &cobra.Command{
	Use:   "save [doi]",
	Short: "Save an article and write its reading note",
	Long: `Save an article and write its reading note.

Without an argument the current browse article (the one last shown by
'litriage next') is saved. Saving an already saved article is a no-op.`,
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
		article, err := tr.Save(id)
		if err != nil {
			return err
		}
		fmt.Printf("Saved %q\n", article.Title)
		fmt.Printf("Note: %s\n", article.SavedLocation)
		return nil
	},
}

// resolveTarget picks the article to act on: an explicit DOI argument,
// or the current browse position.
func resolveTarget(store *storage.Store, args []string) (string, error) {
	if len(args) == 1 {
		id, ok := source.NormalizeDOI(args[0])
		if !ok {
			return "", fmt.Errorf("%q does not look like a DOI", args[0])
		}
		return id, nil
	}
	pos, err := store.GetBrowsePosition()
	if err != nil {
		return "", err
	}
	if pos.CurrentID == "" {
		return "", fmt.Errorf("no current article; run 'litriage next' first or pass a DOI")
	}
	return pos.CurrentID, nil
}

func init() {
	rootCmd.AddCommand(saveCmd)
}
