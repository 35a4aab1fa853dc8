package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show fetch and triage counters",
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

		stats, err := store.GetStats()
		if err != nil {
			return err
		}

		fmt.Printf("Fetched: %d   Saved: %d   Skipped: %d\n", stats.TotalFetched, stats.TotalSaved, stats.TotalSkipped)
		if len(stats.Journals) == 0 {
			return nil
		}

		keys := make([]string, 0, len(stats.Journals))
		for key := range stats.Journals {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		fmt.Println()
		fmt.Printf("%-28s %8s %8s %8s\n", "journal", "fetched", "saved", "skipped")
		for _, key := range keys {
			js := stats.Journals[key]
			name := key
			if idx := cfg.FindJournal(key); idx >= 0 {
				name = cfg.Journals[idx].Name
			}
			fmt.Printf("%-28s %8d %8d %8d\n", truncate(name, 28), js.Fetched, js.Saved, js.Skipped)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
