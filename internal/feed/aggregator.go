package feed

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pders01/newsdesk/internal/config"
	"github.com/pders01/newsdesk/internal/debuglog"
	"github.com/pders01/newsdesk/internal/news"
)

// TopTopic keys the feeds used when a request names no topic.
const TopTopic = "top"

const maxConcurrentFetch = 4

var (
	ErrUnknownTopic   = errors.New("unknown topic")
	ErrAllFeedsFailed = errors.New("all feeds failed")
	// ErrNotModified is returned when a feed answers 304 to an unconditional
	// request, so there is neither a body nor a cached copy to serve.
	ErrNotModified = errors.New("feed answered 304 without a cached copy")
)

// Request is what the news endpoint asks for. Lang and Country are accepted
// for compatibility; feeds are configured per locale already.
type Request struct {
	Lang    string
	Country string
	Max     int
	Query   string
	Topic   string
}

type cachedFeed struct {
	articles  []news.Article
	fetchedAt time.Time
}

// Aggregator answers news requests from configured RSS feeds.
type Aggregator struct {
	feeds   map[string][]string
	fetcher *Fetcher
	parser  *Parser
	ttl     time.Duration
	now     func() time.Time

	mu    sync.RWMutex
	cache map[string]cachedFeed
}

func NewAggregator(cfg *config.Config) *Aggregator {
	feeds := make(map[string][]string, len(cfg.Server.Feeds))
	for topic, urls := range cfg.Server.Feeds {
		feeds[strings.ToLower(topic)] = urls
	}
	return &Aggregator{
		feeds:   feeds,
		fetcher: NewFetcher(cfg),
		parser:  NewParser(),
		ttl:     cfg.Server.CacheTTL,
		now:     time.Now,
		cache:   map[string]cachedFeed{},
	}
}

// Topics lists configured topics in sorted order.
func (a *Aggregator) Topics() []string {
	topics := make([]string, 0, len(a.feeds))
	for topic := range a.feeds {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics
}

// Articles fetches every feed of the requested topic, then filters, orders
// newest first and caps the merged list. Individual feed failures are logged;
// the request fails only when every feed failed.
func (a *Aggregator) Articles(ctx context.Context, req Request) ([]news.Article, error) {
	topic := strings.ToLower(strings.TrimSpace(req.Topic))
	key := topic
	if key == "" {
		key = TopTopic
	}
	urls, ok := a.feeds[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTopic, topic)
	}

	results := make([][]news.Article, len(urls))
	failures := make([]error, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetch)
	for i, u := range urls {
		g.Go(func() error {
			arts, err := a.feedArticles(gctx, u, topic)
			if err != nil {
				debuglog.WithFields(map[string]interface{}{"feed": u}).Warnf("feed fetch failed: %v", err)
				failures[i] = err
				return nil
			}
			results[i] = arts
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(urls) > 0 && allFailed(failures) {
		return nil, fmt.Errorf("%w: %w", ErrAllFeedsFailed, errors.Join(failures...))
	}

	merged := merge(results)
	merged = filter(merged, req.Query)
	sortNewestFirst(merged)
	if req.Max > 0 && len(merged) > req.Max {
		merged = merged[:req.Max]
	}
	return merged, nil
}

// Fetch makes the aggregator usable in-process as a news.Fetcher, without
// going through the HTTP endpoint.
func (a *Aggregator) Fetch(ctx context.Context, p news.RequestParams) ([]news.Article, error) {
	return a.Articles(ctx, Request{
		Lang:    p.Lang,
		Country: p.Country,
		Max:     p.Max,
		Query:   p.Query,
		Topic:   p.Topic,
	})
}

func (a *Aggregator) feedArticles(ctx context.Context, url, topic string) ([]news.Article, error) {
	cacheKey := topic + "|" + url

	a.mu.RLock()
	cached, hit := a.cache[cacheKey]
	a.mu.RUnlock()
	if hit && a.ttl > 0 && a.now().Sub(cached.fetchedAt) < a.ttl {
		return cached.articles, nil
	}

	body, modified, err := a.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if !modified {
		if hit {
			a.store(cacheKey, cached.articles)
			return cached.articles, nil
		}
		// 304 without a cached copy; ask again unconditionally.
		a.fetcher.Forget(url)
		if body, modified, err = a.fetcher.Fetch(ctx, url); err != nil {
			return nil, err
		}
		if !modified {
			return nil, fmt.Errorf("%w: %s", ErrNotModified, url)
		}
	}

	articles, err := a.parser.Parse(body, topic)
	if err != nil {
		return nil, err
	}
	a.store(cacheKey, articles)
	return articles, nil
}

func (a *Aggregator) store(key string, articles []news.Article) {
	a.mu.Lock()
	a.cache[key] = cachedFeed{articles: articles, fetchedAt: a.now()}
	a.mu.Unlock()
}

func allFailed(errs []error) bool {
	for _, err := range errs {
		if err == nil {
			return false
		}
	}
	return true
}

// merge concatenates per-feed results, dropping repeated links.
func merge(results [][]news.Article) []news.Article {
	seen := map[string]bool{}
	out := []news.Article{}
	for _, arts := range results {
		for _, art := range arts {
			key := art.Link()
			if key == "" {
				key = "title:" + art.Title
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, art)
		}
	}
	return out
}

// filter keeps articles whose title, description or source contains every
// whitespace-separated word of query, case-insensitively.
func filter(articles []news.Article, query string) []news.Article {
	words := strings.Fields(strings.ToLower(query))
	if len(words) == 0 {
		return articles
	}
	out := articles[:0:0]
	for _, art := range articles {
		haystack := strings.ToLower(art.Title + " " + art.DescriptionText() + " " + art.SourceName())
		match := true
		for _, w := range words {
			if !strings.Contains(haystack, w) {
				match = false
				break
			}
		}
		if match {
			out = append(out, art)
		}
	}
	return out
}

// sortNewestFirst orders by publication time; undated articles go last in
// feed order.
func sortNewestFirst(articles []news.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		ti, okI := articles[i].Published()
		tj, okJ := articles[j].Published()
		switch {
		case okI && okJ:
			return ti.After(tj)
		case okI:
			return true
		default:
			return false
		}
	})
}
