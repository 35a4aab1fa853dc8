package filter

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
)

// canonicalConfig is the fingerprint input: the filter's semantic content
// with every set-valued field sorted and case-folded the same way the
// matcher folds it, so neither set order nor keyword casing changes the
// hash.
type canonicalConfig struct {
	DateRange   DateRange   `json:"date_range"`
	CustomFrom  string      `json:"custom_from"`
	CustomTo    string      `json:"custom_to"`
	JournalKeys []string    `json:"journal_keys"`
	Keywords    []string    `json:"keywords"`
	SearchScope SearchScope `json:"search_scope"`
	StateFilter StateFilter `json:"state_filter"`
	SortKey     SortKey     `json:"sort_key"`
}

// Fingerprint returns a deterministic short digest of the filter. Two
// configs that differ only in the order (or duplication) of their journal
// keys or keywords, or in keyword casing, hash identically. The exact bit
// pattern carries no compatibility promise; it is only ever compared to a
// previously stored fingerprint.
func Fingerprint(cfg Config) string {
	canonical := canonicalConfig{
		DateRange:   cfg.DateRange,
		CustomFrom:  cfg.CustomFrom,
		CustomTo:    cfg.CustomTo,
		JournalKeys: sortedUnique(cfg.JournalKeys, false),
		Keywords:    sortedUnique(cfg.Keywords, true),
		SearchScope: cfg.SearchScope,
		StateFilter: cfg.StateFilter,
		SortKey:     cfg.SortKey,
	}

	// Custom bounds only matter for a custom range.
	if canonical.DateRange != RangeCustom {
		canonical.CustomFrom = ""
		canonical.CustomTo = ""
	}

	data, err := json.Marshal(canonical)
	if err != nil {
		// Marshaling a struct of strings and slices cannot fail.
		panic(err)
	}

	h := fnv.New64a()
	h.Write(data)
	return fmt.Sprintf("%016x", h.Sum64())
}

func sortedUnique(values []string, fold bool) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if fold {
			v = strings.ToLower(strings.TrimSpace(v))
		}
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
