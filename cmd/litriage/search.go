package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hollis/litriage/internal/config"
	"github.com/hollis/litriage/internal/source"
)

var (
	searchLimit int
	searchKeep  bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>...",
	Short: "Search the concept graph for articles outside your subscriptions",
	Long: `Search the concept graph for articles outside your subscriptions.

Results are shown but not stored. Pass --keep to merge them into the
local collection, where they enter the triage queue as unseen.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		client := searchClient(cfg)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		query := strings.Join(args, " ")
		results, err := client.SearchWorks(ctx, query, searchLimit)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Println("No results.")
			return nil
		}

		for i, a := range results {
			printArticleLine(i, a)
		}

		if !searchKeep {
			fmt.Printf("\n%d result(s). Pass --keep to add them to the collection.\n", len(results))
			return nil
		}

		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		added := 0
		for _, a := range results {
			inserted, err := store.InsertIfAbsent(a)
			if err != nil {
				return err
			}
			if inserted {
				added++
			}
		}
		fmt.Printf("\nKept %d new article(s) (%d already present).\n", added, len(results)-added)
		return nil
	},
}

func searchClient(cfg *config.Config) source.Searcher {
	opts := []source.Option{source.WithUserAgent(cfg.Fetch.UserAgent)}
	if email := contactEmail(cfg); email != "" {
		opts = append(opts, source.WithMailto(email))
	}
	return source.NewOpenAlexClient(opts...)
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 20, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchKeep, "keep", false, "store results in the local collection")
	rootCmd.AddCommand(searchCmd)
}
