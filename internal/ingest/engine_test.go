package ingest

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hollis/litriage/internal/config"
	"github.com/hollis/litriage/internal/source"
	"github.com/hollis/litriage/internal/storage"
)

// fakeProvider serves canned articles per registry key and fails for
// keys listed in failing.
type fakeProvider struct {
	articles map[string][]*storage.Article
	failing  map[string]bool
	calls    []string
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) FetchWorks(ctx context.Context, journal config.Journal, window source.Window, limit int) ([]*storage.Article, error) {
	p.calls = append(p.calls, journal.RegistryKey)
	if p.failing[journal.RegistryKey] {
		return nil, errors.New("upstream unavailable")
	}
	return p.articles[journal.RegistryKey], nil
}

type fakeLookup struct {
	abstracts map[string]string
	failing   map[string]bool
	calls     int
}

func (l *fakeLookup) FetchAbstract(ctx context.Context, id string) (string, error) {
	l.calls++
	if l.failing[id] {
		return "", errors.New("lookup failed")
	}
	return l.abstracts[id], nil
}

func newTestStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func fetched(id, journalKey, abstract string) *storage.Article {
	return &storage.Article{
		ID:         id,
		Title:      "Article " + id,
		JournalKey: journalKey,
		Abstract:   abstract,
		State:      storage.StateUnseen,
		FetchedAt:  time.Now(),
	}
}

func journals(keys ...string) []config.Journal {
	out := make([]config.Journal, len(keys))
	for i, k := range keys {
		out[i] = config.Journal{Name: "Journal " + k, RegistryKey: k, Enabled: true}
	}
	return out
}

func TestSync_MergesNewArticles(t *testing.T) {
	store := newTestStore(t)
	provider := &fakeProvider{articles: map[string][]*storage.Article{
		"j1": {fetched("10.1/a", "j1", "has abstract"), fetched("10.1/b", "j1", "has abstract")},
		"j2": {fetched("10.2/c", "j2", "has abstract")},
	}}

	engine := NewEngine(store, provider, nil, time.Millisecond)
	result, err := engine.Sync(context.Background(), journals("j1", "j2"), 7, 50)
	require.NoError(t, err)

	assert.Equal(t, 3, result.NewArticles)
	assert.Equal(t, 3, result.TotalFetched)
	assert.Empty(t, result.FailedJournals)

	stats, err := store.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalFetched)
	assert.Equal(t, 2, stats.Journals["j1"].Fetched)
	assert.Equal(t, 1, stats.Journals["j2"].Fetched)
}

func TestSync_DedupAcrossPasses(t *testing.T) {
	store := newTestStore(t)
	provider := &fakeProvider{articles: map[string][]*storage.Article{
		"j1": {fetched("10.1/a", "j1", "x")},
	}}
	engine := NewEngine(store, provider, nil, time.Millisecond)

	result, err := engine.Sync(context.Background(), journals("j1"), 7, 50)
	require.NoError(t, err)
	assert.Equal(t, 1, result.NewArticles)

	// Second pass returns the same identifier plus one new one.
	provider.articles["j1"] = []*storage.Article{
		fetched("10.1/a", "j1", "x"),
		fetched("10.1/new", "j1", "x"),
	}
	result, err = engine.Sync(context.Background(), journals("j1"), 7, 50)
	require.NoError(t, err)
	assert.Equal(t, 1, result.NewArticles, "only the net-new identifier counts")
	assert.Equal(t, 2, result.TotalFetched)

	stats, err := store.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Journals["j1"].Fetched)
}

func TestSync_PartialFailure(t *testing.T) {
	store := newTestStore(t)
	provider := &fakeProvider{
		articles: map[string][]*storage.Article{
			"j1": {fetched("10.1/a", "j1", "x")},
			"j3": {fetched("10.3/b", "j3", "x")},
		},
		failing: map[string]bool{"j2": true},
	}

	engine := NewEngine(store, provider, nil, time.Millisecond)
	result, err := engine.Sync(context.Background(), journals("j1", "j2", "j3"), 7, 50)
	require.NoError(t, err, "a failing journal must not abort the pass")

	assert.Equal(t, 2, result.NewArticles)
	assert.Equal(t, []string{"j2"}, result.FailedJournals)
	assert.Equal(t, []string{"j1", "j2", "j3"}, provider.calls, "remaining journals still fetched after a failure")
}

func TestSync_BackfillsMissingAbstracts(t *testing.T) {
	store := newTestStore(t)
	provider := &fakeProvider{articles: map[string][]*storage.Article{
		"j1": {
			fetched("10.1/with", "j1", "already present"),
			fetched("10.1/without", "j1", ""),
		},
	}}
	lookup := &fakeLookup{abstracts: map[string]string{
		"10.1/without": "filled in later",
	}}

	engine := NewEngine(store, provider, lookup, time.Millisecond)
	result, err := engine.Sync(context.Background(), journals("j1"), 7, 50)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Backfilled)
	assert.Equal(t, 1, lookup.calls, "articles with abstracts are not looked up")

	got, err := store.GetArticle("10.1/without")
	require.NoError(t, err)
	assert.Equal(t, "filled in later", got.Abstract)
}

func TestBackfill_SwallowsFailures(t *testing.T) {
	store := newTestStore(t)
	for _, id := range []string{"10.1/a", "10.1/b", "10.1/c"} {
		_, err := store.InsertIfAbsent(fetched(id, "j1", ""))
		require.NoError(t, err)
	}
	a, _ := store.GetArticle("10.1/a")
	b, _ := store.GetArticle("10.1/b")
	c, _ := store.GetArticle("10.1/c")

	lookup := &fakeLookup{
		abstracts: map[string]string{"10.1/a": "first", "10.1/c": "third"},
		failing:   map[string]bool{"10.1/b": true},
	}
	engine := NewEngine(store, &fakeProvider{}, lookup, time.Millisecond)

	filled := engine.Backfill(context.Background(), []*storage.Article{a, b, c})
	assert.Equal(t, 2, filled)
	assert.Equal(t, 3, lookup.calls, "a failed lookup must not abort the batch")

	got, err := store.GetArticle("10.1/b")
	require.NoError(t, err)
	assert.Empty(t, got.Abstract)
}

func TestBackfill_CancelledContextStopsEarly(t *testing.T) {
	store := newTestStore(t)
	_, err := store.InsertIfAbsent(fetched("10.1/a", "j1", ""))
	require.NoError(t, err)
	a, _ := store.GetArticle("10.1/a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	lookup := &fakeLookup{abstracts: map[string]string{"10.1/a": "never fetched"}}
	engine := NewEngine(store, &fakeProvider{}, lookup, time.Hour)

	filled := engine.Backfill(ctx, []*storage.Article{a})
	assert.Equal(t, 0, filled)
}
