package ingest

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/hollis/litriage/internal/config"
	"github.com/hollis/litriage/internal/debuglog"
	"github.com/hollis/litriage/internal/source"
	"github.com/hollis/litriage/internal/storage"
)

// perJournalTimeout bounds a single journal fetch so one hung upstream
// request cannot stall the whole pass.
const perJournalTimeout = 2 * time.Minute

// Engine runs a sync pass: fetches recent works for every enabled
// journal, merges net-new articles into the store, and backfills missing
// abstracts from the secondary source. Journals are fetched one at a
// time; partial success is the expected outcome and per-journal failures
// never abort the pass.
type Engine struct {
	store    *storage.Store
	provider source.Provider
	backfill source.AbstractLookup // nil disables the backfill pass
	limiter  *rate.Limiter
	now      func() time.Time
}

// NewEngine wires a sync engine. backfill may be nil when the primary
// provider already delivers abstracts inline. backfillDelay is the
// minimum spacing between secondary lookups.
func NewEngine(store *storage.Store, provider source.Provider, backfill source.AbstractLookup, backfillDelay time.Duration) *Engine {
	if backfillDelay <= 0 {
		backfillDelay = 100 * time.Millisecond
	}
	return &Engine{
		store:    store,
		provider: provider,
		backfill: backfill,
		limiter:  rate.NewLimiter(rate.Every(backfillDelay), 1),
		now:      time.Now,
	}
}

// Result summarizes one sync pass.
type Result struct {
	NewArticles    int      // net-new articles merged this pass
	Backfilled     int      // abstracts filled by the secondary source
	FailedJournals []string // registry keys whose fetch failed this pass
	TotalFetched   int      // running total after this pass
}

// Sync fetches every journal in order and merges the results. Only
// storage failures are returned as errors; fetch and parse failures are
// logged per journal and the pass continues.
func (e *Engine) Sync(ctx context.Context, journals []config.Journal, lookbackDays, perJournalLimit int) (*Result, error) {
	window := source.LookbackWindow(e.now(), lookbackDays)
	result := &Result{}

	var fetchedThisPass []*storage.Article

	for _, journal := range journals {
		articles, err := e.fetchJournal(ctx, journal, window, perJournalLimit)
		if err != nil {
			debuglog.Warnf("sync: fetching %s (%s): %v", journal.Name, journal.RegistryKey, err)
			result.FailedJournals = append(result.FailedJournals, journal.RegistryKey)
			continue
		}

		inserted := 0
		for _, article := range articles {
			ok, err := e.store.InsertIfAbsent(article)
			if err != nil {
				return nil, err
			}
			if ok {
				inserted++
				fetchedThisPass = append(fetchedThisPass, article)
			}
		}

		if inserted > 0 {
			key := journal.RegistryKey
			err := e.store.UpdateStats(func(s *storage.Stats) {
				s.TotalFetched += inserted
				s.Bump(key, func(js *storage.JournalStats) { js.Fetched += inserted })
			})
			if err != nil {
				return nil, err
			}
		}

		result.NewArticles += inserted
		debuglog.Infof("sync: %s: %d fetched, %d new", journal.Name, len(articles), inserted)
	}

	if e.backfill != nil {
		var missing []*storage.Article
		for _, a := range fetchedThisPass {
			if a.Abstract == "" {
				missing = append(missing, a)
			}
		}
		result.Backfilled = e.Backfill(ctx, missing)
	}

	stats, err := e.store.GetStats()
	if err != nil {
		return nil, err
	}
	result.TotalFetched = stats.TotalFetched

	return result, nil
}

func (e *Engine) fetchJournal(ctx context.Context, journal config.Journal, window source.Window, limit int) ([]*storage.Article, error) {
	ctx, cancel := context.WithTimeout(ctx, perJournalTimeout)
	defer cancel()
	return e.provider.FetchWorks(ctx, journal, window, limit)
}

// Backfill fills missing abstracts one identifier at a time against the
// secondary source, pacing requests through the rate limiter. A failed
// lookup means the article simply keeps no abstract; it never aborts the
// batch. Returns how many articles were filled.
func (e *Engine) Backfill(ctx context.Context, articles []*storage.Article) int {
	filled := 0
	for _, article := range articles {
		if err := e.limiter.Wait(ctx); err != nil {
			// Context cancelled; keep what we have.
			return filled
		}

		abstract, err := e.backfill.FetchAbstract(ctx, article.ID)
		if err != nil {
			debuglog.Debugf("backfill: %s: %v", article.ID, err)
			continue
		}
		if abstract == "" {
			continue
		}

		article.Abstract = abstract
		if err := e.store.UpdateArticle(article); err != nil {
			debuglog.Warnf("backfill: persisting %s: %v", article.ID, err)
			continue
		}
		filled++
	}
	return filled
}
