// Package main provides the litriage CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hollis/litriage/internal/config"
	"github.com/hollis/litriage/internal/debuglog"
	"github.com/hollis/litriage/internal/ingest"
	"github.com/hollis/litriage/internal/source"
	"github.com/hollis/litriage/internal/storage"
)

// Version is set at build time via ldflags
var Version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "litriage",
	Short: "Triage recent journal articles from the command line",
	Long: `litriage aggregates recent articles from the OpenAlex and Crossref
metadata APIs for the journals you subscribe to, keeps a local collection
with per-article triage state, and writes saved articles out as markdown
notes.

Typical session:
  litriage sync            # fetch recent articles for enabled journals
  litriage next            # show the next unseen article
  litriage save            # keep it (writes a note)
  litriage skip            # or reject it`,
	SilenceUsage: true,
}

func init() {
	// Pick up LITRIAGE_* variables (contact email, log level) from a
	// local .env during development.
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file")
	rootCmd.Version = Version
}

func main() {
	err := rootCmd.Execute()
	debuglog.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the settings blob and wires up logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if level := debuglog.ParseLogLevel(cfg.Log.Level); level != debuglog.LevelOff {
		if err := debuglog.Setup(level, cfg.Log.Path); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}
	return cfg, nil
}

// savePath is where journal subscription changes are written back.
func savePath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultPath()
}

func openStore(cfg *config.Config) (*storage.Store, error) {
	store, err := storage.NewStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening store at %s: %w", cfg.Database.Path, err)
	}
	return store, nil
}

func contactEmail(cfg *config.Config) string {
	if cfg.Fetch.ContactEmail != "" {
		return cfg.Fetch.ContactEmail
	}
	return os.Getenv("LITRIAGE_MAILTO")
}

// newProvider builds the configured primary metadata source.
func newProvider(cfg *config.Config) source.Provider {
	opts := []source.Option{source.WithUserAgent(cfg.Fetch.UserAgent)}
	if email := contactEmail(cfg); email != "" {
		opts = append(opts, source.WithMailto(email))
	}
	if cfg.Fetch.Provider == "crossref" {
		return source.NewCrossrefClient(opts...)
	}
	return source.NewOpenAlexClient(opts...)
}

// newEngine wires the sync engine. The concept-graph provider often ships
// works without a usable abstract, so its passes get a citation-registry
// backfill; the citation-registry provider delivers abstracts inline.
func newEngine(cfg *config.Config, store *storage.Store) *ingest.Engine {
	provider := newProvider(cfg)

	var backfill source.AbstractLookup
	if cfg.Fetch.Provider == "openalex" {
		opts := []source.Option{source.WithUserAgent(cfg.Fetch.UserAgent)}
		if email := contactEmail(cfg); email != "" {
			opts = append(opts, source.WithMailto(email))
		}
		backfill = source.NewCrossrefClient(opts...)
	}

	return ingest.NewEngine(store, provider, backfill, cfg.Fetch.BackfillDelay)
}
