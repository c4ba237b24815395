package news

import (
	"net/url"
	"strconv"
	"strings"
)

// Fixed locale and page size sent with every request.
const (
	Language = "ja"
	Country  = "jp"
	PageSize = 10
)

// RequestParams are the query parameters sent to the aggregation endpoint.
// Query and Topic are empty when they must be omitted.
type RequestParams struct {
	Lang    string
	Country string
	Max     int
	Query   string
	Topic   string
}

// Resolve derives request parameters from the raw query text and category.
// It never fails: whitespace-only text drops the keyword and unknown
// categories drop the topic.
func Resolve(query, category string) RequestParams {
	p := RequestParams{
		Lang:    Language,
		Country: Country,
		Max:     PageSize,
	}
	if q := strings.TrimSpace(query); q != "" {
		p.Query = q
	}
	if topic, ok := TopicFor(category); ok {
		p.Topic = topic
	}
	return p
}

func (p RequestParams) Values() url.Values {
	v := url.Values{}
	v.Set("lang", p.Lang)
	v.Set("country", p.Country)
	v.Set("max", strconv.Itoa(p.Max))
	if p.Query != "" {
		v.Set("q", p.Query)
	}
	if p.Topic != "" {
		v.Set("topic", p.Topic)
	}
	return v
}

func (p RequestParams) String() string {
	return p.Values().Encode()
}
