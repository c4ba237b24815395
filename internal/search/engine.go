package search

import (
	"math"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/pders01/newsdesk/internal/storage"
)

// scanLimit bounds how many history records one query scores.
const scanLimit = 1000

// Result represents a search match with relevance scoring
type Result struct {
	Article *storage.Article
	Score   float64
	Matches []Match
}

// Match represents where text was found
type Match struct {
	Field  string // "title", "description", "source"
	Text   string // matched text snippet
	Weight float64
}

// Engine scores stored history in memory without an index.
type Engine struct {
	store ArticleSource
	now   func() time.Time
}

// NewEngine creates a new search engine
func NewEngine(store ArticleSource) *Engine {
	return &Engine{store: store, now: time.Now}
}

// Search ranks remembered articles against query, best first.
func (e *Engine) Search(query string, limit int) ([]*Result, error) {
	if len(strings.TrimSpace(query)) < 2 {
		return []*Result{}, nil
	}

	terms := tokenize(query)
	if len(terms) == 0 {
		return []*Result{}, nil
	}

	articles, err := e.store.GetArticles(scanLimit)
	if err != nil {
		return nil, err
	}

	results := []*Result{}
	for _, article := range articles {
		if result := e.searchArticle(article, terms); result != nil {
			results = append(results, result)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

func (e *Engine) searchArticle(article *storage.Article, terms []string) *Result {
	var matches []Match
	var totalScore float64

	if titleScore := scoreField(article.Title, terms, 4.0); titleScore > 0 {
		matches = append(matches, Match{
			Field:  "title",
			Text:   article.Title,
			Weight: titleScore,
		})
		totalScore += titleScore
	}

	if descScore := scoreField(article.Description, terms, 2.0); descScore > 0 {
		matches = append(matches, Match{
			Field:  "description",
			Text:   truncate(article.Description, 150),
			Weight: descScore,
		})
		totalScore += descScore
	}

	if sourceScore := scoreField(article.Source, terms, 0.5); sourceScore > 0 {
		matches = append(matches, Match{
			Field:  "source",
			Text:   article.Source,
			Weight: sourceScore,
		})
		totalScore += sourceScore
	}

	if totalScore <= 0 {
		return nil
	}

	totalScore *= 1.0 + recencyBoost(article, e.now())
	if article.Starred {
		totalScore *= 1.1
	}

	return &Result{
		Article: article,
		Score:   totalScore,
		Matches: matches,
	}
}

// scoreField calculates relevance score for a field
func scoreField(text string, terms []string, weight float64) float64 {
	if text == "" {
		return 0
	}

	lower := strings.ToLower(text)
	words := tokenize(text)

	var score float64
	matchedTerms := 0

	for _, term := range terms {
		// Substring match also covers unsegmented Japanese text.
		if strings.Contains(lower, term) {
			score += 2.0
			matchedTerms++
		}

		for _, word := range words {
			switch {
			case word == term:
				score += 1.5
				matchedTerms++
			case strings.HasPrefix(word, term) || strings.HasSuffix(word, term):
				score += 1.0
				matchedTerms++
			case strings.Contains(word, term):
				score += 0.5
				matchedTerms++
			}
		}
	}

	if len(terms) > 1 && matchedTerms > 1 {
		score *= 1.0 + float64(matchedTerms)/float64(len(terms))
	}

	if len(words) > 0 {
		tf := float64(matchedTerms) / float64(len(words))
		score *= 1.0 + math.Log(1.0+tf)
	}

	return score * weight
}

// tokenize breaks text into lowercase searchable terms
func tokenize(text string) []string {
	var terms []string
	current := strings.Builder{}

	flush := func() {
		if current.Len() == 0 {
			return
		}
		// Single ASCII letters carry no signal; a single kanji does.
		if term := current.String(); len([]rune(term)) > 1 || term[0] >= 0x80 {
			terms = append(terms, term)
		}
		current.Reset()
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			current.WriteRune(unicode.ToLower(r))
		} else {
			flush()
		}
	}
	flush()

	return terms
}

// truncate limits text to maxLen runes with an ellipsis
func truncate(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen-1]) + "…"
}

// recencyBoost gives up to 10% to articles seen in the last week.
func recencyBoost(article *storage.Article, now time.Time) float64 {
	ts := article.Published
	if ts.IsZero() {
		ts = article.LastSeen
	}
	if ts.IsZero() {
		return 0
	}
	age := now.Sub(ts)
	week := 7 * 24 * time.Hour
	if age < 0 {
		age = 0
	}
	if age >= week {
		return 0
	}
	return 0.1 * (1 - float64(age)/float64(week))
}
