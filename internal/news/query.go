package news

import (
	"net/url"
	"strings"
)

// Query is the input that drives a fetch: free text plus a category id.
// Both may be empty.
type Query struct {
	Text     string
	Category string
}

// Trimmed returns the query text without surrounding whitespace.
func (q Query) Trimmed() string {
	return strings.TrimSpace(q.Text)
}

// Params resolves q into request parameters.
func (q Query) Params() RequestParams {
	return Resolve(q.Text, q.Category)
}

// Values renders q the way it appears in a navigable URL.
func (q Query) Values() url.Values {
	v := url.Values{}
	if t := q.Trimmed(); t != "" {
		v.Set("q", t)
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	return v
}

// QueryFromValues reads q and category from URL query values. Missing keys
// are treated as empty strings.
func QueryFromValues(v url.Values) Query {
	return Query{
		Text:     strings.TrimSpace(v.Get("q")),
		Category: strings.TrimSpace(v.Get("category")),
	}
}

// ParseQuery accepts a raw query string ("q=x&category=y"), one with a
// leading "?", a path with a query ("news?q=x") or a full URL, and extracts
// the query state from it.
func ParseQuery(raw string) (Query, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Query{}, nil
	}
	if strings.Contains(raw, "://") || strings.HasPrefix(raw, "/") || hasPath(raw) {
		u, err := url.Parse(raw)
		if err != nil {
			return Query{}, err
		}
		return QueryFromValues(u.Query()), nil
	}
	v, err := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	if err != nil {
		return Query{}, err
	}
	return QueryFromValues(v), nil
}

// hasPath reports whether raw has a path before its query, that is a "?"
// ahead of the first "=".
func hasPath(raw string) bool {
	q := strings.IndexByte(raw, '?')
	if q <= 0 {
		return false
	}
	eq := strings.IndexByte(raw, '=')
	return eq < 0 || q < eq
}
