package news

import "fmt"

// ViewKind is the single view chosen for a fetch state.
type ViewKind int

const (
	ViewLoading ViewKind = iota
	ViewError
	ViewArticles
	ViewEmpty
)

func (k ViewKind) String() string {
	switch k {
	case ViewLoading:
		return "loading"
	case ViewError:
		return "error"
	case ViewArticles:
		return "articles"
	case ViewEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// TitleKind says which rule produced the title line.
type TitleKind int

const (
	TitleTop TitleKind = iota
	TitleCategory
	TitleSearch
)

type Title struct {
	Kind TitleKind
	Text string
}

// Labels used by the render layer.
const (
	LoadingLabel   = "Loading news…"
	NoResultsLabel = "No articles matched."
	TopNewsLabel   = "Top news"
	RetryLabel     = "Press r to retry"
)

// Selection is everything the render layer needs for one frame.
type Selection struct {
	Kind  ViewKind
	Title Title
	Tiers Tiers
	Err   string
	// CanRetry is set for the error view; retry re-runs the current query.
	CanRetry bool
}

// Select picks exactly one view for s.
func Select(s State) Selection {
	sel := Selection{Title: TitleFor(s.Query)}
	switch s.Phase {
	case PhaseFailed:
		sel.Kind = ViewError
		sel.Err = s.Err
		if sel.Err == "" {
			sel.Err = FallbackErrorMessage
		}
		sel.CanRetry = true
	case PhaseLoaded:
		sel.Tiers = Partition(s.Articles)
		if sel.Tiers.Empty() {
			sel.Kind = ViewEmpty
		} else {
			sel.Kind = ViewArticles
		}
	default:
		sel.Kind = ViewLoading
	}
	return sel
}

// TitleFor chooses the heading: search results win over a category, which
// wins over the default top news label.
func TitleFor(q Query) Title {
	if t := q.Trimmed(); t != "" {
		return Title{Kind: TitleSearch, Text: fmt.Sprintf("Search results for %q", t)}
	}
	if q.Category != "" {
		return Title{Kind: TitleCategory, Text: "Category: " + q.Category}
	}
	return Title{Kind: TitleTop, Text: TopNewsLabel}
}
