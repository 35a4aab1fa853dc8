package triage

import (
	"fmt"
	"time"

	"github.com/hollis/litriage/internal/notes"
	"github.com/hollis/litriage/internal/storage"
)

// Triager runs the per-article lifecycle: unseen -> viewed -> saved or
// skipped. Save and Skip are idempotent; repeating one on an article
// already in the target state is a no-op, so the running counters can
// never double-count.
type Triager struct {
	store *storage.Store
	notes notes.Writer
	now   func() time.Time
}

func New(store *storage.Store, writer notes.Writer) *Triager {
	return &Triager{
		store: store,
		notes: writer,
		now:   time.Now,
	}
}

// MarkViewed records that the article has been presented to the user.
// Only the first presentation transitions the state; anything past unseen
// is left alone.
func (t *Triager) MarkViewed(id string) (*storage.Article, error) {
	article, err := t.store.GetArticle(id)
	if err != nil {
		return nil, err
	}
	if article.State != storage.StateUnseen {
		return article, nil
	}

	viewedAt := t.now()
	article.State = storage.StateViewed
	article.ViewedAt = &viewedAt
	if err := t.store.UpdateArticle(article); err != nil {
		return nil, fmt.Errorf("recording view: %w", err)
	}
	return article, nil
}

// Save writes the note first and commits the state change only after the
// note landed on disk. A failed note write surfaces to the caller and
// leaves the article exactly as it was, so the action can be retried.
func (t *Triager) Save(id string) (*storage.Article, error) {
	article, err := t.store.GetArticle(id)
	if err != nil {
		return nil, err
	}
	if article.State == storage.StateSaved {
		return article, nil
	}

	location, err := t.notes.Write(article)
	if err != nil {
		return nil, fmt.Errorf("persisting note: %w", err)
	}

	savedAt := t.now()
	article.State = storage.StateSaved
	article.SavedAt = &savedAt
	article.SavedLocation = location
	err = t.store.UpdateArticleAndStats(article, func(s *storage.Stats) {
		s.TotalSaved++
		s.Bump(article.JournalKey, func(js *storage.JournalStats) { js.Saved++ })
	})
	if err != nil {
		return nil, fmt.Errorf("committing save: %w", err)
	}
	return article, nil
}

// Skip marks the article rejected for the browse flow.
func (t *Triager) Skip(id string) (*storage.Article, error) {
	article, err := t.store.GetArticle(id)
	if err != nil {
		return nil, err
	}
	if article.State == storage.StateSkipped {
		return article, nil
	}

	article.State = storage.StateSkipped
	err = t.store.UpdateArticleAndStats(article, func(s *storage.Stats) {
		s.TotalSkipped++
		s.Bump(article.JournalKey, func(js *storage.JournalStats) { js.Skipped++ })
	})
	if err != nil {
		return nil, fmt.Errorf("committing skip: %w", err)
	}
	return article, nil
}
