package source

import (
	"context"
	"fmt"
	"time"

	"github.com/hollis/litriage/internal/config"
	"github.com/hollis/litriage/internal/storage"
)

// Window is the inclusive publication-date range a sync pass asks for.
type Window struct {
	From time.Time
	To   time.Time
}

// LookbackWindow returns the trailing window ending today.
func LookbackWindow(now time.Time, days int) Window {
	return Window{From: now.AddDate(0, 0, -days), To: now}
}

func (w Window) FromDate() string { return w.From.Format("2006-01-02") }
func (w Window) ToDate() string   { return w.To.Format("2006-01-02") }

// Provider fetches recent works for a journal and normalizes them into
// canonical Articles. Upstream records without a usable identifier are
// dropped, not surfaced as errors.
type Provider interface {
	Name() string
	FetchWorks(ctx context.Context, journal config.Journal, window Window, limit int) ([]*storage.Article, error)
}

// AbstractLookup is the per-identifier secondary lookup the backfill
// resolver runs against.
type AbstractLookup interface {
	FetchAbstract(ctx context.Context, id string) (string, error)
}

// Searcher is the free-text discovery endpoint. Results are normalized
// Articles but are not merged into the collection by the lookup itself.
type Searcher interface {
	SearchWorks(ctx context.Context, query string, limit int) ([]*storage.Article, error)
}

// APIError is a non-2xx response from a metadata source.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error: %d %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error: HTTP %d", e.StatusCode)
}

// maxKeywords caps the keyword list on a normalized article.
const maxKeywords = 8
