package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Database.Timeout != 1*time.Second {
		t.Errorf("Database.Timeout = %v, want 1s", cfg.Database.Timeout)
	}

	if cfg.Fetch.Provider != "openalex" {
		t.Errorf("Fetch.Provider = %q, want openalex", cfg.Fetch.Provider)
	}
	if cfg.Fetch.LookbackDays != 7 {
		t.Errorf("Fetch.LookbackDays = %d, want 7", cfg.Fetch.LookbackDays)
	}
	if cfg.Fetch.PerJournalLimit != 50 {
		t.Errorf("Fetch.PerJournalLimit = %d, want 50", cfg.Fetch.PerJournalLimit)
	}
	if cfg.Fetch.HTTPTimeout != 30*time.Second {
		t.Errorf("Fetch.HTTPTimeout = %v, want 30s", cfg.Fetch.HTTPTimeout)
	}
	if cfg.Fetch.UserAgent == "" {
		t.Error("Fetch.UserAgent should not be empty")
	}

	if !cfg.Notes.IncludeAbstract {
		t.Error("Notes.IncludeAbstract should default to true")
	}
	if len(cfg.Journals) != 0 {
		t.Errorf("default config should have no subscriptions, got %d", len(cfg.Journals))
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"crossref provider", func(c *Config) { c.Fetch.Provider = "crossref" }, false},
		{"unknown provider", func(c *Config) { c.Fetch.Provider = "pubmed" }, true},
		{"zero lookback", func(c *Config) { c.Fetch.LookbackDays = 0 }, true},
		{"negative limit", func(c *Config) { c.Fetch.PerJournalLimit = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestJournalKeys(t *testing.T) {
	j := Journal{RegistryKey: "0028-0836"}
	keys := j.Keys()
	if len(keys) != 1 || keys[0] != "0028-0836" {
		t.Errorf("Keys() = %v, want [0028-0836]", keys)
	}

	j.RegistryKeyAlt = "1476-4687"
	keys = j.Keys()
	if len(keys) != 2 || keys[1] != "1476-4687" {
		t.Errorf("Keys() = %v, want primary then alternate", keys)
	}
}

func TestEnabledJournals(t *testing.T) {
	cfg := &Config{Journals: []Journal{
		{Name: "A", RegistryKey: "1", Enabled: true},
		{Name: "B", RegistryKey: "2", Enabled: false},
		{Name: "C", RegistryKey: "3", Enabled: true},
	}}

	enabled := cfg.EnabledJournals()
	if len(enabled) != 2 {
		t.Fatalf("EnabledJournals() returned %d journals, want 2", len(enabled))
	}
	if enabled[0].Name != "A" || enabled[1].Name != "C" {
		t.Errorf("EnabledJournals() = %v, want config order A, C", enabled)
	}
}

func TestFindJournal(t *testing.T) {
	cfg := &Config{Journals: []Journal{
		{RegistryKey: "0028-0836"},
		{RegistryKey: "0036-8075"},
	}}

	if idx := cfg.FindJournal("0036-8075"); idx != 1 {
		t.Errorf("FindJournal() = %d, want 1", idx)
	}
	if idx := cfg.FindJournal("9999-9999"); idx != -1 {
		t.Errorf("FindJournal() = %d for unknown key, want -1", idx)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := TestConfig()
	cfg.Fetch.ContactEmail = "reader@example.org"
	cfg.Journals = []Journal{
		{Name: "Nature", RegistryKey: "0028-0836", RegistryKeyAlt: "1476-4687", Publisher: "Springer Nature", Enabled: true},
		{Name: "Science", RegistryKey: "0036-8075", Enabled: false},
	}

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if loaded.Fetch.ContactEmail != "reader@example.org" {
		t.Errorf("ContactEmail = %q after round trip", loaded.Fetch.ContactEmail)
	}
	if loaded.Fetch.BackfillDelay != time.Millisecond {
		t.Errorf("BackfillDelay = %v, want 1ms", loaded.Fetch.BackfillDelay)
	}
	if len(loaded.Journals) != 2 {
		t.Fatalf("loaded %d journals, want 2", len(loaded.Journals))
	}
	if loaded.Journals[0].RegistryKeyAlt != "1476-4687" {
		t.Errorf("RegistryKeyAlt = %q after round trip", loaded.Journals[0].RegistryKeyAlt)
	}
	if loaded.Journals[1].Enabled {
		t.Error("disabled journal re-loaded as enabled")
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	// A missing file at the default search paths falls back to defaults,
	// but an explicitly named file that does not exist is an error.
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("Load() with explicit missing path should error")
	}
}

func TestGenerateDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	if err := GenerateDefaultConfig(path); err != nil {
		t.Fatalf("GenerateDefaultConfig() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() of generated config error = %v", err)
	}
	if loaded.Fetch.Provider != "openalex" {
		t.Errorf("generated provider = %q, want openalex", loaded.Fetch.Provider)
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"~/notes", filepath.Join(home, "notes")},
		{"/absolute/path", "/absolute/path"},
	}

	for _, tt := range tests {
		if got := expandPath(tt.in); got != tt.want {
			t.Errorf("expandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
