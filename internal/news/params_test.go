package news

import (
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		category string
		want     url.Values
	}{
		{
			name: "no inputs only carries fixed params",
			want: url.Values{"lang": {"ja"}, "country": {"jp"}, "max": {"10"}},
		},
		{
			name:     "category only",
			category: "technology",
			want:     url.Values{"lang": {"ja"}, "country": {"jp"}, "max": {"10"}, "topic": {"technology"}},
		},
		{
			name:     "query and category",
			query:    "election",
			category: "world",
			want:     url.Values{"lang": {"ja"}, "country": {"jp"}, "max": {"10"}, "q": {"election"}, "topic": {"world"}},
		},
		{
			name:  "query is trimmed",
			query: "  tokyo  ",
			want:  url.Values{"lang": {"ja"}, "country": {"jp"}, "max": {"10"}, "q": {"tokyo"}},
		},
		{
			name:     "whitespace query and unknown category",
			query:    " \t\n ",
			category: "gossip",
			want:     url.Values{"lang": {"ja"}, "country": {"jp"}, "max": {"10"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.query, tt.category).Values()
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Resolve(%q, %q) mismatch (-want +got):\n%s", tt.query, tt.category, diff)
			}
		})
	}
}

func TestResolve_UnknownCategoriesNeverSendTopic(t *testing.T) {
	for _, category := range []string{"gossip", "Technology", " world", "busines", "tecnology", "all", "ビジネス"} {
		p := Resolve("", category)
		assert.Empty(t, p.Topic, "category %q", category)
		assert.NotContains(t, p.Values(), "topic", "category %q", category)
	}
}

func TestResolve_WhitespaceQueriesNeverSendKeyword(t *testing.T) {
	for _, q := range []string{"", " ", "\t", "\n\n", "  "} {
		p := Resolve(q, "")
		assert.NotContains(t, p.Values(), "q", "query %q", q)
	}
}

func TestCategoryTopicsAreIdentity(t *testing.T) {
	for category, topic := range categoryTopics {
		assert.Equal(t, category, topic)
		_, ok := TopicFor(topic)
		assert.True(t, ok, "topic %q must also be a valid category", topic)
	}
	for _, c := range Categories[1:] {
		_, ok := TopicFor(c.ID)
		assert.True(t, ok, "category tab %q has no topic", c.ID)
	}
}

func TestCategoryIndexAndLabel(t *testing.T) {
	assert.Equal(t, 0, CategoryIndex(""))
	assert.Equal(t, 0, CategoryIndex("unknown"))
	assert.Equal(t, "テクノロジー", CategoryLabel("technology"))
	assert.Equal(t, "unknown", CategoryLabel("unknown"))
	assert.Equal(t, "technology", Categories[CategoryIndex("technology")].ID)
}
