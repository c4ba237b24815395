package news

import (
	"strings"
	"time"
)

// Article is a record as returned by the aggregation endpoint. Only Title is
// expected on every record; everything else may be missing and is modelled
// as a pointer so callers have to check for presence.
type Article struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	URL         *string `json:"url,omitempty"`
	Image       *string `json:"image,omitempty"`
	PublishedAt *string `json:"publishedAt,omitempty"`
	Source      *Source `json:"source,omitempty"`
	Topic       *string `json:"topic,omitempty"`
}

type Source struct {
	Name *string `json:"name,omitempty"`
	URL  *string `json:"url,omitempty"`
}

// timestamp layouts accepted for PublishedAt, most common first
var publishedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (a Article) DescriptionText() string { return deref(a.Description) }
func (a Article) Link() string            { return deref(a.URL) }
func (a Article) ImageURL() string        { return deref(a.Image) }
func (a Article) TopicLabel() string      { return deref(a.Topic) }

func (a Article) SourceName() string {
	if a.Source == nil {
		return ""
	}
	return deref(a.Source.Name)
}

// Published parses PublishedAt. ok is false when the field is absent or
// does not parse as an ISO-8601 timestamp.
func (a Article) Published() (t time.Time, ok bool) {
	raw := strings.TrimSpace(deref(a.PublishedAt))
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range publishedLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// Ptr returns a pointer to s; handy for building optional fields.
func Ptr(s string) *string { return &s }

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
