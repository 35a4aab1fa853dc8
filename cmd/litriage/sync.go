package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	syncLookback int
	syncLimit    int
)

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().IntVar(&syncLookback, "lookback", 0, "Days to look back (overrides config)")
	syncCmd.Flags().IntVar(&syncLimit, "limit", 0, "Max articles per journal (overrides config)")
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch recent articles for all enabled journals",
	Long: `Fetch recent articles for every enabled journal and merge the net-new
ones into the local collection. Already-known identifiers are left
untouched, so triage state survives re-fetching.

A journal whose fetch fails is skipped for this pass; the remaining
journals are still synced.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	journals := cfg.EnabledJournals()
	if len(journals) == 0 {
		return fmt.Errorf("no enabled journals; add one with 'litriage journals add'")
	}

	lookback := cfg.Fetch.LookbackDays
	if syncLookback > 0 {
		lookback = syncLookback
	}
	limit := cfg.Fetch.PerJournalLimit
	if syncLimit > 0 {
		limit = syncLimit
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	engine := newEngine(cfg, store)
	result, err := engine.Sync(context.Background(), journals, lookback, limit)
	if err != nil {
		return err
	}

	fmt.Printf("Synced %d journals: %d new articles (total fetched: %d)\n",
		len(journals)-len(result.FailedJournals), result.NewArticles, result.TotalFetched)
	if result.Backfilled > 0 {
		fmt.Printf("Backfilled %d abstracts\n", result.Backfilled)
	}
	for _, key := range result.FailedJournals {
		fmt.Printf("Warning: fetch failed for journal %s (see log)\n", key)
	}
	return nil
}
