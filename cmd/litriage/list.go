package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listFlags viewFlags

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List articles matching the current filter",
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

		view, err := currentView(store, cfg, listFlags.config())
		if err != nil {
			return err
		}
		if len(view) == 0 {
			fmt.Println("No articles match the current filter.")
			return nil
		}
		for i, a := range view {
			printArticleLine(i, a)
		}
		fmt.Printf("\n%d article(s)\n", len(view))
		return nil
	},
}

func addViewFlags(cmd *cobra.Command, f *viewFlags) {
	cmd.Flags().StringVar(&f.state, "state", "", "state filter: unseen, all, viewed, saved, skipped")
	cmd.Flags().StringVar(&f.dateRange, "range", "", "date range: day, week, month, quarter")
	cmd.Flags().StringVar(&f.from, "from", "", "custom range start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "custom range end (YYYY-MM-DD)")
	cmd.Flags().StringSliceVarP(&f.journals, "journal", "j", nil, "restrict to journal key(s)")
	cmd.Flags().StringSliceVarP(&f.keywords, "keyword", "k", nil, "keyword filter (matches any)")
	cmd.Flags().BoolVar(&f.titleOnly, "title-only", false, "match keywords against titles only")
	cmd.Flags().StringVar(&f.sortKey, "sort", "", "sort order: date_desc, date_asc, journal_asc")
}

func init() {
	addViewFlags(listCmd, &listFlags)
	rootCmd.AddCommand(listCmd)
}
