package news

// Tier boundaries: one headline, two sub stories, six others.
const (
	HeadlineCount = 1
	SubCount      = 2
	OtherCount    = 6

	// DisplayCap is how many articles can be displayed at most; the rest are dropped.
	DisplayCap = HeadlineCount + SubCount + OtherCount
)

// Tiers splits an ordered article list into display groups. Each tier is a
// sub-slice of the input, so order is kept and nothing is copied.
type Tiers struct {
	Headline []Article
	Sub      []Article
	Other    []Article
}

// Partition returns headline [0,1), sub [1,3) and other [3,9).
func Partition(articles []Article) Tiers {
	return Tiers{
		Headline: window(articles, 0, HeadlineCount),
		Sub:      window(articles, HeadlineCount, HeadlineCount+SubCount),
		Other:    window(articles, HeadlineCount+SubCount, DisplayCap),
	}
}

// Len is the number of articles across all tiers.
func (t Tiers) Len() int {
	return len(t.Headline) + len(t.Sub) + len(t.Other)
}

// Empty reports whether no tier has content.
func (t Tiers) Empty() bool { return t.Len() == 0 }

// All returns the displayed articles in order.
func (t Tiers) All() []Article {
	out := make([]Article, 0, t.Len())
	out = append(out, t.Headline...)
	out = append(out, t.Sub...)
	return append(out, t.Other...)
}

func window(articles []Article, from, to int) []Article {
	if from >= len(articles) {
		return nil
	}
	if to > len(articles) {
		to = len(articles)
	}
	return articles[from:to:to]
}
