package feed

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/pders01/newsdesk/internal/config"
)

const defaultUserAgent = "newsdesk-server/1.0 (https://github.com/pders01/newsdesk)"

// validators are the conditional request headers remembered per feed URL.
type validators struct {
	etag         string
	lastModified string
}

// Fetcher downloads feed documents with conditional requests.
type Fetcher struct {
	client *resty.Client

	mu    sync.Mutex
	known map[string]validators
}

func NewFetcher(cfg *config.Config) *Fetcher {
	timeout := cfg.Server.HTTPTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ua := cfg.Server.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", ua).
		SetHeader("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")

	return &Fetcher{client: client, known: map[string]validators{}}
}

// Fetch returns the document body, or modified=false when the server answered
// 304 for the validators of the previous fetch.
func (f *Fetcher) Fetch(ctx context.Context, url string) (body []byte, modified bool, err error) {
	req := f.client.R().SetContext(ctx)

	f.mu.Lock()
	v := f.known[url]
	f.mu.Unlock()
	if v.etag != "" {
		req.SetHeader("If-None-Match", v.etag)
	}
	if v.lastModified != "" {
		req.SetHeader("If-Modified-Since", v.lastModified)
	}

	resp, err := req.Get(url)
	if err != nil {
		return nil, false, fmt.Errorf("fetching feed: %w", err)
	}

	if resp.StatusCode() == http.StatusNotModified {
		return nil, false, nil
	}

	if resp.StatusCode() >= 400 {
		return nil, false, fmt.Errorf("HTTP error: %d", resp.StatusCode())
	}

	f.mu.Lock()
	f.known[url] = validators{
		etag:         resp.Header().Get("ETag"),
		lastModified: resp.Header().Get("Last-Modified"),
	}
	f.mu.Unlock()

	return resp.Body(), true, nil
}

// Forget drops remembered validators so the next fetch is unconditional.
func (f *Fetcher) Forget(url string) {
	f.mu.Lock()
	delete(f.known, url)
	f.mu.Unlock()
}
