package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	articlesBucket = []byte("articles")
	metaBucket     = []byte("metadata")

	statsKey    = []byte("stats")
	positionKey = []byte("browse_position")
)

// ErrNotFound is returned when an article id is not in the collection.
var ErrNotFound = errors.New("article not found")

// Store is the durable data blob: the article collection, the running
// statistics, and the browse position, all kept in one bolt database so
// every mutation commits atomically.
type Store struct {
	db *bolt.DB
}

func NewStore(dbPath string) (*Store, error) {
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{articlesBucket, metaBucket} {
			if _, createErr := tx.CreateBucketIfNotExists(bucket); createErr != nil {
				return createErr
			}
		}
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// InsertIfAbsent adds the article only when its id is net-new and reports
// whether an insert happened. An already-known id is left exactly as
// stored: state, timestamps and saved location survive re-fetches.
func (s *Store) InsertIfAbsent(article *Article) (bool, error) {
	inserted := false
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(articlesBucket)
		if b.Get([]byte(article.ID)) != nil {
			return nil
		}
		data, err := json.Marshal(article)
		if err != nil {
			return err
		}
		if err := b.Put([]byte(article.ID), data); err != nil {
			return err
		}
		inserted = true
		return nil
	})
	return inserted, err
}

func (s *Store) GetArticle(id string) (*Article, error) {
	var article Article
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(articlesBucket).Get([]byte(id))
		if data == nil {
			return ErrNotFound
		}
		return json.Unmarshal(data, &article)
	})
	if err != nil {
		return nil, err
	}
	return &article, nil
}

// UpdateArticle overwrites an existing article. Updating an unknown id is
// an error so callers cannot resurrect cleared records.
func (s *Store) UpdateArticle(article *Article) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(articlesBucket)
		if b.Get([]byte(article.ID)) == nil {
			return ErrNotFound
		}
		data, err := json.Marshal(article)
		if err != nil {
			return err
		}
		return b.Put([]byte(article.ID), data)
	})
}

// AllArticles returns the whole collection ordered by id. The ordering is
// deterministic so repeated filter passes over an unchanged collection see
// the same input sequence.
func (s *Store) AllArticles() ([]*Article, error) {
	var articles []*Article
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(articlesBucket).ForEach(func(_ []byte, v []byte) error {
			var article Article
			if err := json.Unmarshal(v, &article); err != nil {
				return err
			}
			articles = append(articles, &article)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(articles, func(i, j int) bool {
		return articles[i].ID < articles[j].ID
	})
	return articles, nil
}

func (s *Store) GetStats() (*Stats, error) {
	stats := &Stats{}
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(metaBucket).Get(statsKey)
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, stats)
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// UpdateStats loads the counters, applies mutate, and writes them back in
// a single transaction.
func (s *Store) UpdateStats(mutate func(*Stats)) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return mutateStats(tx, mutate)
	})
}

// UpdateArticleAndStats commits a triage transition: the article's new
// state and the counter bump land in one transaction, so a crash cannot
// leave a counted-but-unsaved (or saved-but-uncounted) article behind.
func (s *Store) UpdateArticleAndStats(article *Article, mutate func(*Stats)) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(articlesBucket)
		if b.Get([]byte(article.ID)) == nil {
			return ErrNotFound
		}
		data, err := json.Marshal(article)
		if err != nil {
			return err
		}
		if err := b.Put([]byte(article.ID), data); err != nil {
			return err
		}
		if mutate == nil {
			return nil
		}
		return mutateStats(tx, mutate)
	})
}

func mutateStats(tx *bolt.Tx, mutate func(*Stats)) error {
	b := tx.Bucket(metaBucket)
	stats := &Stats{}
	if data := b.Get(statsKey); data != nil {
		if err := json.Unmarshal(data, stats); err != nil {
			return err
		}
	}
	mutate(stats)
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return b.Put(statsKey, data)
}

func (s *Store) GetBrowsePosition() (*BrowsePosition, error) {
	pos := &BrowsePosition{}
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(metaBucket).Get(positionKey)
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, pos)
	})
	if err != nil {
		return nil, err
	}
	return pos, nil
}

func (s *Store) SaveBrowsePosition(pos *BrowsePosition) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(pos)
		if err != nil {
			return err
		}
		return tx.Bucket(metaBucket).Put(positionKey, data)
	})
}

// ClearData drops the whole data blob: articles, statistics and browse
// position. Settings live elsewhere and are untouched.
func (s *Store) ClearData() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{articlesBucket, metaBucket} {
			if err := tx.DeleteBucket(bucket); err != nil {
				return err
			}
			if _, err := tx.CreateBucket(bucket); err != nil {
				return err
			}
		}
		return nil
	})
}
