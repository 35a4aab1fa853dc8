package storage

import (
	"time"
)

// ArticleState tracks where an article sits in the triage lifecycle.
type ArticleState string

const (
	StateUnseen  ArticleState = "unseen"
	StateViewed  ArticleState = "viewed"
	StateSaved   ArticleState = "saved"
	StateSkipped ArticleState = "skipped"
)

// Article is the canonical record both upstream sources normalize into.
// ID is the DOI, lower-cased and stripped of any resolver prefix; it is
// the dedup key across fetch cycles.
type Article struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Authors       []string     `json:"authors"`
	JournalName   string       `json:"journal_name"`
	JournalKey    string       `json:"journal_key"`
	Volume        string       `json:"volume,omitempty"`
	Issue         string       `json:"issue,omitempty"`
	Pages         string       `json:"pages,omitempty"`
	PublishedDate string       `json:"published_date"` // YYYY-MM-DD, empty when unknown
	Year          int          `json:"year"`
	Abstract      string       `json:"abstract,omitempty"`
	Keywords      []string     `json:"keywords,omitempty"`
	CanonicalURL  string       `json:"canonical_url"`
	OpenAccessURL string       `json:"open_access_url,omitempty"`
	State         ArticleState `json:"state"`
	FetchedAt     time.Time    `json:"fetched_at"`
	ViewedAt      *time.Time   `json:"viewed_at,omitempty"`
	SavedAt       *time.Time   `json:"saved_at,omitempty"`
	SavedLocation string       `json:"saved_location,omitempty"`
}

// JournalStats holds per-journal running totals, keyed by registry key.
type JournalStats struct {
	Fetched int `json:"fetched"`
	Saved   int `json:"saved"`
	Skipped int `json:"skipped"`
}

// Stats holds the collection-wide counters. They only ever grow, except
// when the whole data blob is cleared.
type Stats struct {
	TotalFetched int                     `json:"total_fetched"`
	TotalSaved   int                     `json:"total_saved"`
	TotalSkipped int                     `json:"total_skipped"`
	Journals     map[string]JournalStats `json:"journals,omitempty"`
}

// Bump applies mutate to the per-journal counters for journalKey,
// allocating the Journals map on first use.
func (s *Stats) Bump(journalKey string, mutate func(*JournalStats)) {
	if s.Journals == nil {
		s.Journals = make(map[string]JournalStats)
	}
	js := s.Journals[journalKey]
	mutate(&js)
	s.Journals[journalKey] = js
}

// BrowsePosition is the resumable cursor into the most recent filtered
// view. FilterFingerprint tells the presentation layer whether Index is
// still meaningful or has to reset.
type BrowsePosition struct {
	CurrentID         string `json:"current_id,omitempty"`
	FilterFingerprint string `json:"filter_fingerprint"`
	Index             int    `json:"index"`
}
