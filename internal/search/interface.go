package search

import "github.com/pders01/newsdesk/internal/storage"

// Searcher defines the minimal search API used by the TUI.
type Searcher interface {
	Search(query string, limit int) ([]*Result, error)
}

// ArticleSource is the part of the history store the engines read from.
type ArticleSource interface {
	GetArticles(limit int) ([]*storage.Article, error)
	GetArticle(id string) (*storage.Article, error)
}

// UpdateListener can be implemented by search engines that maintain
// an external index and want to be notified about data changes.
type UpdateListener interface {
	OnArticlesSaved(articles []*storage.Article)
}

// DebugStatser provides lightweight stats for visibility/debugging.
// Implemented by engines that can report index doc counts, etc.
type DebugStatser interface {
	DocCount() (int, error)
}
