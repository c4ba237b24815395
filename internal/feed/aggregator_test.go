package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/newsdesk/internal/config"
	"github.com/pders01/newsdesk/internal/news"
)

type rssItem struct {
	title, link, desc, date string
}

func rssDoc(channel string, items ...rssItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<?xml version="1.0"?><rss version="2.0"><channel><title>%s</title><link>https://%s.example.org/</link>`, channel, strings.ToLower(channel))
	for _, it := range items {
		fmt.Fprintf(&b, "<item><title>%s</title><link>%s</link><description>%s</description>", it.title, it.link, it.desc)
		if it.date != "" {
			fmt.Fprintf(&b, "<pubDate>%s</pubDate>", it.date)
		}
		b.WriteString("</item>")
	}
	b.WriteString("</channel></rss>")
	return b.String()
}

// feedServer serves path → document and counts hits per path.
type feedServer struct {
	*httptest.Server
	hits map[string]*int32
}

func newFeedServer(t *testing.T, docs map[string]string) *feedServer {
	t.Helper()
	fs := &feedServer{hits: map[string]*int32{}}
	for path := range docs {
		fs.hits[path] = new(int32)
	}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		doc, ok := docs[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		atomic.AddInt32(fs.hits[r.URL.Path], 1)
		_, _ = w.Write([]byte(doc))
	}))
	t.Cleanup(fs.Close)
	return fs
}

func testAggregator(feeds map[string][]string) *Aggregator {
	cfg := config.TestConfig()
	cfg.Server.Feeds = feeds
	return NewAggregator(cfg)
}

func titles(articles []news.Article) []string {
	out := make([]string, len(articles))
	for i, a := range articles {
		out[i] = a.Title
	}
	return out
}

func TestAggregator_MergesSortsAndCaps(t *testing.T) {
	srv := newFeedServer(t, map[string]string{
		"/a.xml": rssDoc("Alpha",
			rssItem{"Old news", "https://a.example.org/1", "older", "Wed, 01 Jan 2025 08:00:00 GMT"},
			rssItem{"Newest", "https://a.example.org/2", "newest", "Fri, 03 Jan 2025 08:00:00 GMT"},
		),
		"/b.xml": rssDoc("Beta",
			rssItem{"Middle", "https://b.example.org/1", "middle", "Thu, 02 Jan 2025 08:00:00 GMT"},
			rssItem{"Undated", "https://b.example.org/2", "no date", ""},
			rssItem{"Newest duplicate", "https://a.example.org/2", "same link", "Fri, 03 Jan 2025 08:00:00 GMT"},
		),
	})
	agg := testAggregator(map[string][]string{
		"top": {srv.URL + "/a.xml", srv.URL + "/b.xml"},
	})

	got, err := agg.Articles(context.Background(), Request{Max: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"Newest", "Middle", "Old news", "Undated"}, titles(got))

	got, err = agg.Articles(context.Background(), Request{Max: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"Newest", "Middle"}, titles(got))
}

func TestAggregator_TopicAndQuery(t *testing.T) {
	srv := newFeedServer(t, map[string]string{
		"/top.xml": rssDoc("Top", rssItem{"Top story", "https://t.example.org/1", "", ""}),
		"/world.xml": rssDoc("World",
			rssItem{"Election in France", "https://w.example.org/1", "Polls open", "Thu, 02 Jan 2025 08:00:00 GMT"},
			rssItem{"Summit ends", "https://w.example.org/2", "Leaders discuss the ELECTION timetable", "Wed, 01 Jan 2025 08:00:00 GMT"},
			rssItem{"Floods", "https://w.example.org/3", "Rain", "Fri, 03 Jan 2025 08:00:00 GMT"},
		),
	})
	agg := testAggregator(map[string][]string{
		"top":   {srv.URL + "/top.xml"},
		"World": {srv.URL + "/world.xml"},
	})

	got, err := agg.Articles(context.Background(), Request{Topic: "world", Query: "election", Max: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"Election in France", "Summit ends"}, titles(got))
	for _, a := range got {
		assert.Equal(t, "world", a.TopicLabel())
	}

	got, err = agg.Articles(context.Background(), Request{Query: "   ", Max: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"Top story"}, titles(got))
	assert.Nil(t, got[0].Topic)

	got, err = agg.Articles(context.Background(), Request{Topic: "world", Query: "no such words", Max: 10})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	assert.Equal(t, []string{"top", "world"}, agg.Topics())
}

func TestAggregator_UnknownTopic(t *testing.T) {
	agg := testAggregator(map[string][]string{"top": {}})
	_, err := agg.Articles(context.Background(), Request{Topic: "weather"})
	assert.ErrorIs(t, err, ErrUnknownTopic)
}

func TestAggregator_PartialAndTotalFailure(t *testing.T) {
	srv := newFeedServer(t, map[string]string{
		"/ok.xml": rssDoc("Ok", rssItem{"Still here", "https://ok.example.org/1", "", ""}),
	})

	agg := testAggregator(map[string][]string{
		"top": {srv.URL + "/ok.xml", srv.URL + "/missing.xml"},
	})
	got, err := agg.Articles(context.Background(), Request{Max: 10})
	require.NoError(t, err, "one healthy feed is enough")
	assert.Equal(t, []string{"Still here"}, titles(got))

	agg = testAggregator(map[string][]string{
		"top": {srv.URL + "/missing.xml", srv.URL + "/gone.xml"},
	})
	_, err = agg.Articles(context.Background(), Request{Max: 10})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAllFeedsFailed))
}

func TestAggregator_CachesWithinTTL(t *testing.T) {
	srv := newFeedServer(t, map[string]string{
		"/a.xml": rssDoc("Alpha", rssItem{"Cached", "https://a.example.org/1", "", ""}),
	})
	agg := testAggregator(map[string][]string{"top": {srv.URL + "/a.xml"}})
	agg.ttl = time.Minute
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	agg.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		_, err := agg.Articles(context.Background(), Request{Max: 10})
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(srv.hits["/a.xml"]))

	now = now.Add(2 * time.Minute)
	_, err := agg.Articles(context.Background(), Request{Max: 10})
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(srv.hits["/a.xml"]))
}

func TestAggregator_RepeatedNotModifiedWithoutCache(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusNotModified)
	}))
	t.Cleanup(srv.Close)

	agg := testAggregator(map[string][]string{"top": {srv.URL + "/feed.xml"}})

	_, err := agg.feedArticles(context.Background(), srv.URL+"/feed.xml", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotModified)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits), "retried once")

	_, err = agg.Articles(context.Background(), Request{Max: 10})
	assert.ErrorIs(t, err, ErrAllFeedsFailed)
	assert.ErrorIs(t, err, ErrNotModified)
}

func TestAggregator_CanceledContext(t *testing.T) {
	srv := newFeedServer(t, map[string]string{
		"/a.xml": rssDoc("Alpha", rssItem{"x", "https://a.example.org/1", "", ""}),
	})
	agg := testAggregator(map[string][]string{"top": {srv.URL + "/a.xml"}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := agg.Articles(ctx, Request{Max: 10})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAggregator_AsFetcher(t *testing.T) {
	srv := newFeedServer(t, map[string]string{
		"/tech.xml": rssDoc("Tech",
			rssItem{"Chip plant opens", "https://t.example.org/1", "", "Thu, 02 Jan 2025 08:00:00 GMT"},
			rssItem{"Rocket launch", "https://t.example.org/2", "", "Fri, 03 Jan 2025 08:00:00 GMT"},
		),
	})
	agg := testAggregator(map[string][]string{"technology": {srv.URL + "/tech.xml"}})

	var f news.Fetcher = agg
	c := news.NewController(f, time.Second)
	st := c.Load(context.Background(), news.Query{Text: "rocket", Category: "technology"})

	require.Equal(t, news.PhaseLoaded, st.Phase)
	assert.Equal(t, []string{"Rocket launch"}, titles(st.Articles))
}
