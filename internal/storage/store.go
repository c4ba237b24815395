package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/pders01/newsdesk/internal/debuglog"
	"github.com/pders01/newsdesk/internal/news"
)

var (
	articlesBucket = []byte("articles")
	queriesBucket  = []byte("queries")
	metaBucket     = []byte("metadata")
)

// MaxRecentQueries bounds the recent query list.
const MaxRecentQueries = 20

var ErrArticleNotFound = errors.New("article not found")

type Store struct {
	db  *bolt.DB
	now func() time.Time
}

func NewStore(dbPath string) (*Store, error) {
	return NewStoreWithTimeout(dbPath, 1*time.Second)
}

// NewStoreWithTimeout waits at most timeout for the file lock held by another
// newsdesk process.
func NewStoreWithTimeout(dbPath string, timeout time.Duration) (*Store, error) {
	if timeout <= 0 {
		timeout = 1 * time.Second
	}
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{articlesBucket, queriesBucket, metaBucket} {
			if _, createErr := tx.CreateBucketIfNotExists(bucket); createErr != nil {
				return createErr
			}
		}
		return nil
	})

	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveArticles upserts fetched articles. Existing records keep their first
// seen time and read/starred flags. The stored records are returned in input
// order.
func (s *Store) SaveArticles(articles []news.Article) ([]*Article, error) {
	seen := s.now()
	saved := make([]*Article, 0, len(articles))
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(articlesBucket)
		for _, a := range articles {
			rec := FromNews(a, seen)
			if data := b.Get([]byte(rec.ID)); data != nil {
				var prev Article
				if err := json.Unmarshal(data, &prev); err == nil {
					rec.FirstSeen = prev.FirstSeen
					rec.Read = prev.Read
					rec.Starred = prev.Starred
				}
			}
			data, err := json.Marshal(rec)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(rec.ID), data); err != nil {
				return err
			}
			saved = append(saved, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	debuglog.Debugf("storage: saved %d articles", len(saved))
	return saved, nil
}

func (s *Store) GetArticle(id string) (*Article, error) {
	var article Article
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(articlesBucket).Get([]byte(id))
		if data == nil {
			return ErrArticleNotFound
		}
		return json.Unmarshal(data, &article)
	})
	if err != nil {
		return nil, err
	}
	return &article, nil
}

// GetArticles returns stored articles, most recently seen first. A limit of
// zero or less returns everything.
func (s *Store) GetArticles(limit int) ([]*Article, error) {
	return s.collect(limit, func(*Article) bool { return true })
}

// GetStarred returns starred articles, most recently seen first.
func (s *Store) GetStarred(limit int) ([]*Article, error) {
	return s.collect(limit, func(a *Article) bool { return a.Starred })
}

func (s *Store) collect(limit int, keep func(*Article) bool) ([]*Article, error) {
	var articles []*Article
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(articlesBucket).ForEach(func(_ []byte, v []byte) error {
			var article Article
			if err := json.Unmarshal(v, &article); err != nil {
				return nil
			}
			if keep(&article) {
				articles = append(articles, &article)
			}
			return nil
		})
	})
	sort.SliceStable(articles, func(i, j int) bool {
		if !articles[i].LastSeen.Equal(articles[j].LastSeen) {
			return articles[i].LastSeen.After(articles[j].LastSeen)
		}
		return articles[i].Published.After(articles[j].Published)
	})
	if limit > 0 && len(articles) > limit {
		articles = articles[:limit]
	}
	return articles, err
}

func (s *Store) MarkArticleRead(id string, read bool) error {
	return s.update(id, func(a *Article) { a.Read = read })
}

// ToggleStarred flips the starred flag and returns the new value.
func (s *Store) ToggleStarred(id string) (bool, error) {
	var starred bool
	err := s.update(id, func(a *Article) {
		a.Starred = !a.Starred
		starred = a.Starred
	})
	return starred, err
}

func (s *Store) update(id string, fn func(*Article)) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(articlesBucket)
		data := b.Get([]byte(id))
		if data == nil {
			return ErrArticleNotFound
		}

		var article Article
		if err := json.Unmarshal(data, &article); err != nil {
			return err
		}

		fn(&article)

		data, err := json.Marshal(article)
		if err != nil {
			return err
		}

		return b.Put([]byte(id), data)
	})
}

// RecordQuery moves q to the front of the recent query list. The default
// query (no text, no category) is not recorded.
func (s *Store) RecordQuery(q news.Query) error {
	text := q.Trimmed()
	if text == "" && q.Category == "" {
		return nil
	}
	rec := QueryRecord{Text: text, Category: q.Category, At: s.now()}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(queriesBucket)
		list, err := readQueries(b)
		if err != nil {
			return err
		}

		out := make([]QueryRecord, 0, len(list)+1)
		out = append(out, rec)
		for _, prev := range list {
			if strings.EqualFold(prev.Text, rec.Text) && prev.Category == rec.Category {
				continue
			}
			out = append(out, prev)
		}
		if len(out) > MaxRecentQueries {
			out = out[:MaxRecentQueries]
		}

		data, err := json.Marshal(out)
		if err != nil {
			return err
		}
		return b.Put(recentKey, data)
	})
}

// RecentQueries returns recorded queries, most recent first.
func (s *Store) RecentQueries() ([]QueryRecord, error) {
	var list []QueryRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		list, err = readQueries(tx.Bucket(queriesBucket))
		return err
	})
	return list, err
}

var recentKey = []byte("recent")

func readQueries(b *bolt.Bucket) ([]QueryRecord, error) {
	data := b.Get(recentKey)
	if data == nil {
		return nil, nil
	}
	var list []QueryRecord
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decoding recent queries: %w", err)
	}
	return list, nil
}

// SetMeta and GetMeta keep small string values such as the last category.
func (s *Store) SetMeta(key, value string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(metaBucket).Put([]byte(key), []byte(value))
	})
}

func (s *Store) GetMeta(key string) (string, error) {
	var value string
	err := s.db.View(func(tx *bolt.Tx) error {
		value = string(tx.Bucket(metaBucket).Get([]byte(key)))
		return nil
	})
	return value, err
}
