package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/pders01/newsdesk/internal/news"
)

// Article is a news article as remembered locally. Content fields are
// refreshed every time the article is seen again; the flags are not.
type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Image       string    `json:"image"`
	Source      string    `json:"source"`
	Topic       string    `json:"topic"`
	Published   time.Time `json:"published"`
	FirstSeen   time.Time `json:"first_seen"`
	LastSeen    time.Time `json:"last_seen"`
	Read        bool      `json:"read"`
	Starred     bool      `json:"starred"`
}

// QueryRecord is one entry of the recent query list.
type QueryRecord struct {
	Text     string    `json:"text"`
	Category string    `json:"category"`
	At       time.Time `json:"at"`
}

func (r QueryRecord) Query() news.Query {
	return news.Query{Text: r.Text, Category: r.Category}
}

// ArticleID hashes the URL, or the title when the article has no link.
func ArticleID(a news.Article) string {
	key := strings.TrimSpace(a.Link())
	if key == "" {
		key = "title:" + strings.TrimSpace(a.Title)
	}
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// FromNews converts a fetched article into a history record seen at seen.
func FromNews(a news.Article, seen time.Time) *Article {
	rec := &Article{
		ID:          ArticleID(a),
		Title:       a.Title,
		Description: a.DescriptionText(),
		URL:         a.Link(),
		Image:       a.ImageURL(),
		Source:      a.SourceName(),
		Topic:       a.TopicLabel(),
		FirstSeen:   seen,
		LastSeen:    seen,
	}
	if ts, ok := a.Published(); ok {
		rec.Published = ts
	}
	return rec
}

// News converts the record back into the wire shape used by the views.
func (a *Article) News() news.Article {
	out := news.Article{Title: a.Title}
	if a.Description != "" {
		out.Description = news.Ptr(a.Description)
	}
	if a.URL != "" {
		out.URL = news.Ptr(a.URL)
	}
	if a.Image != "" {
		out.Image = news.Ptr(a.Image)
	}
	if a.Source != "" {
		out.Source = &news.Source{Name: news.Ptr(a.Source)}
	}
	if a.Topic != "" {
		out.Topic = news.Ptr(a.Topic)
	}
	if !a.Published.IsZero() {
		out.PublishedAt = news.Ptr(a.Published.UTC().Format(time.RFC3339))
	}
	return out
}
