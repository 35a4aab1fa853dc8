package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hollis/litriage/internal/config"
	"github.com/hollis/litriage/internal/journals"
)

var journalsCmd = &cobra.Command{
	Use:   "journals",
	Short: "Manage journal subscriptions",
}

var journalsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List subscribed journals",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if len(cfg.Journals) == 0 {
			fmt.Println("No journal subscriptions. Add one with 'litriage journals add'.")
			return nil
		}
		for _, j := range cfg.Journals {
			mark := " "
			if j.Enabled {
				mark = "*"
			}
			fmt.Printf("%s %-40s %s\n", mark, j.Name, j.RegistryKey)
		}
		return nil
	},
}

var journalsCatalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List journals known to the built-in catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := journals.NewCatalog()
		if err != nil {
			return err
		}
		for _, key := range catalog.Keys() {
			entry, _ := catalog.Get(key)
			fmt.Printf("%-28s %-40s %s\n", key, entry.Name, entry.ISSN)
		}
		return nil
	},
}

var addISSN string

var journalsAddCmd = &cobra.Command{
	Use:   "add <name-or-key>",
	Short: "Subscribe to a journal",
	Long: `Subscribe to a journal by catalog key, name, alias or ISSN.

Journals not in the built-in catalog can be added with an explicit
--issn flag; the argument is then used as the display name.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		sub, err := resolveSubscription(args[0], addISSN)
		if err != nil {
			return err
		}
		if idx := cfg.FindJournal(sub.RegistryKey); idx >= 0 {
			cfg.Journals[idx].Enabled = true
			if err := config.Save(cfg, savePath()); err != nil {
				return err
			}
			fmt.Printf("Already subscribed to %s; enabled.\n", cfg.Journals[idx].Name)
			return nil
		}

		cfg.Journals = append(cfg.Journals, sub)
		if err := config.Save(cfg, savePath()); err != nil {
			return err
		}
		fmt.Printf("Subscribed to %s (%s)\n", sub.Name, sub.RegistryKey)
		return nil
	},
}

func resolveSubscription(query, issn string) (config.Journal, error) {
	if issn != "" {
		return config.Journal{
			Name:        query,
			RegistryKey: issn,
			Enabled:     true,
		}, nil
	}
	catalog, err := journals.NewCatalog()
	if err != nil {
		return config.Journal{}, err
	}
	entry, ok := catalog.Lookup(query)
	if !ok {
		return config.Journal{}, fmt.Errorf("journal %q not in catalog; pass --issn to add it anyway", query)
	}
	return entry.Subscription(), nil
}

var journalsEnableCmd = &cobra.Command{
	Use:   "enable <key>",
	Short: "Enable a subscription",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setEnabled(args[0], true)
	},
}

var journalsDisableCmd = &cobra.Command{
	Use:   "disable <key>",
	Short: "Disable a subscription without removing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setEnabled(args[0], false)
	},
}

func setEnabled(key string, enabled bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	idx := cfg.FindJournal(key)
	if idx < 0 {
		return fmt.Errorf("no subscription with registry key %q", key)
	}
	cfg.Journals[idx].Enabled = enabled
	if err := config.Save(cfg, savePath()); err != nil {
		return err
	}
	verb := "Disabled"
	if enabled {
		verb = "Enabled"
	}
	fmt.Printf("%s %s\n", verb, cfg.Journals[idx].Name)
	return nil
}

func init() {
	journalsAddCmd.Flags().StringVar(&addISSN, "issn", "", "registry key for journals outside the catalog")
	journalsCmd.AddCommand(journalsListCmd, journalsCatalogCmd, journalsAddCmd, journalsEnableCmd, journalsDisableCmd)
	rootCmd.AddCommand(journalsCmd)
}
