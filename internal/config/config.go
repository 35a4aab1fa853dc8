package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config is the settings blob: journal subscriptions, fetch policy, note
// template options and the paths the rest of the system works against.
// It is persisted as a TOML file, separate from the article data blob.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Fetch    FetchConfig    `mapstructure:"fetch"`
	Notes    NotesConfig    `mapstructure:"notes"`
	Log      LogConfig      `mapstructure:"log"`
	Journals []Journal      `mapstructure:"journals"`
}

type DatabaseConfig struct {
	Path    string        `mapstructure:"path"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// FetchConfig controls the sync pass: which provider to query, how far
// back to look, and how polite to be about it.
type FetchConfig struct {
	Provider        string        `mapstructure:"provider"` // "openalex" or "crossref"
	ContactEmail    string        `mapstructure:"contact_email"`
	LookbackDays    int           `mapstructure:"lookback_days"`
	PerJournalLimit int           `mapstructure:"per_journal_limit"`
	HTTPTimeout     time.Duration `mapstructure:"http_timeout"`
	BackfillDelay   time.Duration `mapstructure:"backfill_delay"`
	UserAgent       string        `mapstructure:"user_agent"`
}

// NotesConfig shapes the markdown notes written for saved articles.
type NotesConfig struct {
	Directory       string   `mapstructure:"directory"`
	IncludeAbstract bool     `mapstructure:"include_abstract"`
	IncludeKeywords bool     `mapstructure:"include_keywords"`
	Tags            []string `mapstructure:"tags"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

// Journal is one subscription. RegistryKey is the upstream registry
// identifier (an ISSN for both supported providers); RegistryKeyAlt
// covers journals that carry separate print and electronic ISSNs.
type Journal struct {
	Name           string `mapstructure:"name"`
	RegistryKey    string `mapstructure:"registry_key"`
	RegistryKeyAlt string `mapstructure:"registry_key_alt"`
	Publisher      string `mapstructure:"publisher"`
	Enabled        bool   `mapstructure:"enabled"`
}

// Keys returns the registry keys to try for this journal, primary first.
func (j Journal) Keys() []string {
	keys := []string{j.RegistryKey}
	if j.RegistryKeyAlt != "" {
		keys = append(keys, j.RegistryKeyAlt)
	}
	return keys
}

// EnabledJournals returns the subscriptions currently switched on, in
// config order.
func (c *Config) EnabledJournals() []Journal {
	var enabled []Journal
	for _, j := range c.Journals {
		if j.Enabled {
			enabled = append(enabled, j)
		}
	}
	return enabled
}

// FindJournal locates a subscription by registry key (identity per the
// data model). Returns the index or -1.
func (c *Config) FindJournal(registryKey string) int {
	for i, j := range c.Journals {
		if j.RegistryKey == registryKey {
			return i
		}
	}
	return -1
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	dbPath := filepath.Join(homeDir, ".litriage.db")
	notesDir := filepath.Join(homeDir, "litriage-notes")

	return &Config{
		Database: DatabaseConfig{
			Path:    dbPath,
			Timeout: 1 * time.Second,
		},
		Fetch: FetchConfig{
			Provider:        "openalex",
			LookbackDays:    7,
			PerJournalLimit: 50,
			HTTPTimeout:     30 * time.Second,
			BackfillDelay:   100 * time.Millisecond,
			UserAgent:       "litriage/1.0 (https://github.com/hollis/litriage)",
		},
		Notes: NotesConfig{
			Directory:       notesDir,
			IncludeAbstract: true,
			IncludeKeywords: true,
			Tags:            []string{"paper"},
		},
		Log: LogConfig{
			Level: "off",
		},
	}
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	cfg := defaultConfig()
	v.SetDefault("database", cfg.Database)
	v.SetDefault("fetch", cfg.Fetch)
	v.SetDefault("notes", cfg.Notes)
	v.SetDefault("log", cfg.Log)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		homeDir, _ := os.UserHomeDir()
		configDir := filepath.Join(homeDir, ".config", "litriage")

		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("LITRIAGE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	expandPaths(&config)

	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func validate(cfg *Config) error {
	switch cfg.Fetch.Provider {
	case "openalex", "crossref":
	default:
		return fmt.Errorf("unknown provider %q (want openalex or crossref)", cfg.Fetch.Provider)
	}
	if cfg.Fetch.LookbackDays <= 0 {
		return fmt.Errorf("lookback_days must be positive, got %d", cfg.Fetch.LookbackDays)
	}
	if cfg.Fetch.PerJournalLimit <= 0 {
		return fmt.Errorf("per_journal_limit must be positive, got %d", cfg.Fetch.PerJournalLimit)
	}
	return nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

func expandPaths(cfg *Config) {
	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.Notes.Directory = expandPath(cfg.Notes.Directory)
	cfg.Log.Path = expandPath(cfg.Log.Path)
}

// DefaultPath is where Save writes when no explicit path was given.
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "litriage", "config.toml")
}

// Save persists the settings blob. Durations are written as strings so
// the TOML stays hand-editable.
func Save(config *Config, path string) error {
	v := viper.New()

	dbCfg := map[string]interface{}{
		"path":    config.Database.Path,
		"timeout": config.Database.Timeout.String(),
	}

	fetchCfg := map[string]interface{}{
		"provider":          config.Fetch.Provider,
		"contact_email":     config.Fetch.ContactEmail,
		"lookback_days":     config.Fetch.LookbackDays,
		"per_journal_limit": config.Fetch.PerJournalLimit,
		"http_timeout":      config.Fetch.HTTPTimeout.String(),
		"backfill_delay":    config.Fetch.BackfillDelay.String(),
		"user_agent":        config.Fetch.UserAgent,
	}

	journals := make([]map[string]interface{}, 0, len(config.Journals))
	for _, j := range config.Journals {
		journals = append(journals, map[string]interface{}{
			"name":             j.Name,
			"registry_key":     j.RegistryKey,
			"registry_key_alt": j.RegistryKeyAlt,
			"publisher":        j.Publisher,
			"enabled":          j.Enabled,
		})
	}

	v.Set("database", dbCfg)
	v.Set("fetch", fetchCfg)
	v.Set("notes", config.Notes)
	v.Set("log", config.Log)
	v.Set("journals", journals)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
