package journals

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/hollis/litriage/internal/config"
)

//go:embed journals.toml
var journalsTOML []byte

// Entry is one known journal in the catalog.
type Entry struct {
	Name      string   `toml:"name"`
	ISSN      string   `toml:"issn"`
	ISSNAlt   string   `toml:"issn_alt,omitempty"`
	Publisher string   `toml:"publisher,omitempty"`
	Aliases   []string `toml:"aliases,omitempty"`
}

type catalogFile struct {
	Journals map[string]Entry `toml:"journals"`
}

// Catalog maps short keys and aliases to known journals, so a
// subscription can be added by name instead of by ISSN.
type Catalog struct {
	entries map[string]Entry
}

// NewCatalog loads the built-in catalog and merges any user additions
// from the config directory on top.
func NewCatalog() (*Catalog, error) {
	var file catalogFile
	if err := toml.Unmarshal(journalsTOML, &file); err != nil {
		return nil, fmt.Errorf("parsing journals.toml: %w", err)
	}

	c := &Catalog{entries: file.Journals}
	c.loadUserCatalog()
	return c, nil
}

// loadUserCatalog merges custom journal entries; user entries override
// built-ins with the same key.
func (c *Catalog) loadUserCatalog() {
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	path := filepath.Join(home, ".config", "litriage", "journals.toml")

	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	var file catalogFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return
	}
	for key, entry := range file.Journals {
		c.entries[key] = entry
	}
}

// Lookup resolves a catalog key, journal name, alias or ISSN to an
// entry. Matching is case-insensitive.
func (c *Catalog) Lookup(query string) (Entry, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return Entry{}, false
	}

	if entry, ok := c.entries[q]; ok {
		return entry, true
	}
	for _, entry := range c.entries {
		if strings.ToLower(entry.Name) == q || entry.ISSN == q || entry.ISSNAlt == q {
			return entry, true
		}
		for _, alias := range entry.Aliases {
			if strings.ToLower(alias) == q {
				return entry, true
			}
		}
	}
	return Entry{}, false
}

// Keys returns the catalog keys sorted alphabetically.
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the entry for an exact catalog key.
func (c *Catalog) Get(key string) (Entry, bool) {
	entry, ok := c.entries[key]
	return entry, ok
}

// Subscription converts a catalog entry into a journal subscription.
func (e Entry) Subscription() config.Journal {
	return config.Journal{
		Name:           e.Name,
		RegistryKey:    e.ISSN,
		RegistryKeyAlt: e.ISSNAlt,
		Publisher:      e.Publisher,
		Enabled:        true,
	}
}
