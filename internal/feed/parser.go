package feed

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/pders01/newsdesk/internal/news"
)

type Parser struct {
	parser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		parser: gofeed.NewParser(),
	}
}

// Parse turns an RSS or Atom document into articles labelled with topic.
func (p *Parser) Parse(body []byte, topic string) ([]news.Article, error) {
	feed, err := p.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}

	sourceName := strings.TrimSpace(feed.Title)
	sourceURL := strings.TrimSpace(feed.Link)

	articles := make([]news.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		title := collapseSpace(item.Title)
		if title == "" {
			continue
		}

		name, headline := splitSource(title, sourceName)
		article := news.Article{Title: headline}

		text, img := htmlText(item.Description)
		if text == "" {
			text, img = htmlText(item.Content)
		}
		if text != "" && text != headline && text != title {
			article.Description = news.Ptr(text)
		}

		if link := strings.TrimSpace(item.Link); link != "" {
			article.URL = news.Ptr(link)
		}

		if image := imageURL(item, img); image != "" {
			article.Image = news.Ptr(image)
		}

		if ts := published(item); !ts.IsZero() {
			article.PublishedAt = news.Ptr(ts.UTC().Format(time.RFC3339))
		}

		if name != "" {
			src := &news.Source{Name: news.Ptr(name)}
			if sourceURL != "" {
				src.URL = news.Ptr(sourceURL)
			}
			article.Source = src
		}

		if topic != "" {
			article.Topic = news.Ptr(topic)
		}

		articles = append(articles, article)
	}

	return articles, nil
}

func published(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}
	return time.Time{}
}

// htmlText strips markup from an RSS description and returns its text and
// the first image source it contains.
func htmlText(fragment string) (string, string) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return "", ""
	}
	if !strings.ContainsAny(fragment, "<&") {
		return collapseSpace(fragment), ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return collapseSpace(fragment), ""
	}

	doc.Find("script, style").Remove()
	img, _ := doc.Find("img[src]").First().Attr("src")

	var parts []string
	doc.Find("body").Contents().Each(func(_ int, s *goquery.Selection) {
		if t := collapseSpace(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return collapseSpace(strings.Join(parts, " ")), strings.TrimSpace(img)
}

func imageURL(item *gofeed.Item, inline string) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enc := range item.Enclosures {
		if enc.URL != "" && strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
	}
	if inline != "" {
		if u, err := url.Parse(inline); err == nil && u.IsAbs() {
			return inline
		}
	}
	return ""
}

// splitSource handles aggregator feeds whose titles end in " - Publisher".
// The feed title is the source otherwise.
func splitSource(title, feedTitle string) (source, headline string) {
	if strings.Contains(feedTitle, "Google") {
		if i := strings.LastIndex(title, " - "); i > 0 {
			return strings.TrimSpace(title[i+3:]), strings.TrimSpace(title[:i])
		}
	}
	return feedTitle, title
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
