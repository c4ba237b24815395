package news

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/pders01/newsdesk/internal/debuglog"
)

const defaultUserAgent = "newsdesk/1.0 (github.com/pders01/newsdesk)"

// ErrMalformedResponse is returned when the body is not a JSON object.
var ErrMalformedResponse = errors.New("malformed response body")

// APIError is a non-success response. Message holds the server supplied
// "error" field when there was one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("HTTP %d", e.Status)
}

// Fetcher retrieves one page of articles for the given parameters.
type Fetcher interface {
	Fetch(ctx context.Context, params RequestParams) ([]Article, error)
}

// Client talks to the aggregation endpoint over HTTP.
type Client struct {
	http     *resty.Client
	endpoint string
}

func NewClient(endpoint string, timeout time.Duration, userAgent string) *Client {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	c := resty.New()
	c.SetTimeout(timeout)
	c.SetHeader("User-Agent", userAgent)
	c.SetHeader("Accept", "application/json")
	return &Client{http: c, endpoint: endpoint}
}

// Fetch issues a read-only request that bypasses intermediate caches.
func (c *Client) Fetch(ctx context.Context, params RequestParams) ([]Article, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(params.Values()).
		SetHeader("Cache-Control", "no-cache, no-store").
		SetHeader("Pragma", "no-cache").
		Get(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetching news: %w", err)
	}

	body, decodeErr := decodeResponse(resp.Body())
	if !resp.IsSuccess() {
		apiErr := &APIError{Status: resp.StatusCode()}
		if decodeErr == nil {
			apiErr.Message = body.errorMessage()
		}
		return nil, apiErr
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	return body.articleList(), nil
}

type responseBody struct {
	Articles json.RawMessage `json:"articles"`
	Error    json.RawMessage `json:"error"`
}

func decodeResponse(data []byte) (*responseBody, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, ErrMalformedResponse
	}
	var body responseBody
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &body, nil
}

// articleList never fails: a missing or mis-shaped field becomes an empty
// list, and records are decoded one by one so a bad record only costs itself.
func (b *responseBody) articleList() []Article {
	if len(b.Articles) == 0 || string(b.Articles) == "null" {
		return []Article{}
	}
	var records []json.RawMessage
	if err := json.Unmarshal(b.Articles, &records); err != nil {
		debuglog.Warnf("ignoring articles field: %v", err)
		return []Article{}
	}
	articles := make([]Article, 0, len(records))
	for i, rec := range records {
		art, err := decodeArticle(rec)
		if err != nil {
			debuglog.Warnf("skipping article %d: %v", i, err)
			continue
		}
		articles = append(articles, art)
	}
	return articles
}

// decodeArticle reads one record. Optional fields of the wrong JSON type are
// treated as absent; a record that is not an object or whose title is not a
// string is rejected.
func decodeArticle(data json.RawMessage) (Article, error) {
	var a Article
	if err := json.Unmarshal(data, &a); err == nil {
		return a, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Article{}, err
	}
	a = Article{
		Description: optionalString(fields["description"]),
		URL:         optionalString(fields["url"]),
		Image:       optionalString(fields["image"]),
		PublishedAt: optionalString(fields["publishedAt"]),
		Source:      lenientSource(fields["source"]),
		Topic:       optionalString(fields["topic"]),
	}
	if raw, ok := fields["title"]; ok && string(raw) != "null" {
		if err := json.Unmarshal(raw, &a.Title); err != nil {
			return Article{}, fmt.Errorf("title: %w", err)
		}
	}
	return a, nil
}

func optionalString(raw json.RawMessage) *string {
	if len(raw) == 0 {
		return nil
	}
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return s
}

// lenientSource accepts the {name, url} object or a bare name string.
func lenientSource(raw json.RawMessage) *Source {
	if len(raw) == 0 {
		return nil
	}
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		return &Source{Name: &name}
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil
	}
	return &Source{Name: optionalString(fields["name"]), URL: optionalString(fields["url"])}
}

func (b *responseBody) errorMessage() string {
	if len(b.Error) == 0 {
		return ""
	}
	var msg string
	if err := json.Unmarshal(b.Error, &msg); err != nil {
		return ""
	}
	return strings.TrimSpace(msg)
}
