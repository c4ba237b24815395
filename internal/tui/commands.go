package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/newsdesk/internal/debuglog"
	"github.com/pders01/newsdesk/internal/news"
	"github.com/pders01/newsdesk/internal/search"
	"github.com/pders01/newsdesk/internal/storage"
)

// fetchCmd runs req off the event loop. The outcome comes back as a
// fetchDoneMsg carrying req's sequence token.
func (a *App) fetchCmd(req news.Request) tea.Cmd {
	ctrl := a.controller
	return func() tea.Msg {
		return fetchDoneMsg{outcome: ctrl.Execute(context.Background(), req)}
	}
}

// persistCmd records a committed result: articles, the search index and the
// query itself.
func (a *App) persistCmd(q news.Query, articles []news.Article) tea.Cmd {
	if a.history == nil {
		return nil
	}
	history := a.history
	searcher := a.searcher
	return func() tea.Msg {
		var records []*storage.Article
		err := retryOperation(func() error {
			var saveErr error
			records, saveErr = history.SaveArticles(articles)
			return saveErr
		})
		if err != nil {
			return historySavedMsg{err: wrapErr("saving history", err)}
		}

		if l, ok := searcher.(search.UpdateListener); ok {
			l.OnArticlesSaved(records)
		}
		docCount := -1
		if s, ok := searcher.(search.DebugStatser); ok {
			if n, err := s.DocCount(); err == nil {
				docCount = n
			}
		}

		if err := history.RecordQuery(q); err != nil {
			debuglog.Warnf("recording query failed: %v", err)
		}
		recent, err := history.RecentQueries()
		if err != nil {
			debuglog.Warnf("reading recent queries failed: %v", err)
		}
		return historySavedMsg{records: records, recent: recent, docCount: docCount}
	}
}

func (a *App) loadRecentQueries() tea.Cmd {
	if a.history == nil {
		return nil
	}
	history := a.history
	return func() tea.Msg {
		recent, err := history.RecentQueries()
		if err != nil {
			return errorMsg{err: wrapErr("loading recent queries", err)}
		}
		return recentQueriesMsg{recent: recent}
	}
}

// renderArticle formats art as markdown and renders it with r.
func renderArticle(r articleRenderer, art news.Article) tea.Cmd {
	return func() tea.Msg {
		var content strings.Builder
		content.WriteString(fmt.Sprintf("# %s\n\n", art.Title))

		var meta []string
		if src := art.SourceName(); src != "" {
			meta = append(meta, src)
		}
		if ts, ok := art.Published(); ok {
			meta = append(meta, ts.Local().Format(time.RFC1123))
		}
		if topic := art.TopicLabel(); topic != "" {
			meta = append(meta, news.CategoryLabel(topic))
		}
		if len(meta) > 0 {
			content.WriteString(fmt.Sprintf("*%s*\n\n", strings.Join(meta, " • ")))
		}

		if link := art.Link(); link != "" {
			content.WriteString(fmt.Sprintf("[Read Online](%s)\n\n", link))
		}
		if img := art.ImageURL(); img != "" {
			content.WriteString(fmt.Sprintf("**Image:** %s\n\n", img))
		}

		content.WriteString("---\n\n")
		if desc := art.DescriptionText(); desc != "" {
			content.WriteString(desc)
		} else {
			content.WriteString("_No summary available._")
		}

		if r == nil {
			return articleRenderedMsg{content: content.String()}
		}
		rendered, err := r.Render(content.String())
		if err != nil {
			return articleRenderedMsg{content: fmt.Sprintf("# Error\n\nFailed to render article: %s\n\nPress Escape to go back.", err.Error())}
		}
		return articleRenderedMsg{content: rendered}
	}
}

// articleRenderer is the part of glamour.TermRenderer used by the reader.
type articleRenderer interface {
	Render(in string) (string, error)
}

func (a *App) markRead(art news.Article) tea.Cmd {
	id := storage.ArticleID(art)
	a.read[id] = true
	if a.history == nil {
		return nil
	}
	history := a.history
	return func() tea.Msg {
		err := history.MarkArticleRead(id, true)
		if err != nil && !errors.Is(err, storage.ErrArticleNotFound) {
			return errorMsg{err: wrapErr("marking read", err)}
		}
		return nil
	}
}

func (a *App) toggleStar(art news.Article) tea.Cmd {
	if a.history == nil {
		return a.setStatus(MsgNoHistory, StatusWarn, statusTTL)
	}
	history := a.history
	id := storage.ArticleID(art)
	return func() tea.Msg {
		starred, err := history.ToggleStarred(id)
		if err != nil {
			return starToggledMsg{id: id, err: wrapErr("starring", err)}
		}
		return starToggledMsg{id: id, starred: starred}
	}
}

func (a *App) openPage(art news.Article) tea.Cmd {
	link := art.Link()
	if link == "" {
		return a.setStatus(MsgNoLink, StatusWarn, statusTTL)
	}
	opener := a.opener
	return tea.Batch(
		a.setStatus(MsgOpening, StatusInfo, 0),
		func() tea.Msg {
			if err := opener.OpenPage(link); err != nil {
				return openedMsg{err: wrapErr("opening page", err)}
			}
			return openedMsg{status: "Opened " + truncateMiddle(link, 60)}
		},
	)
}

func (a *App) openImage(art news.Article) tea.Cmd {
	img := art.ImageURL()
	if img == "" {
		return a.setStatus(MsgNoImage, StatusWarn, statusTTL)
	}
	opener := a.opener
	return tea.Batch(
		a.setStatus(MsgOpeningImage, StatusInfo, 0),
		func() tea.Msg {
			if err := opener.OpenImage(img); err != nil {
				return openedMsg{err: wrapErr("opening image", err)}
			}
			return openedMsg{status: "Opened " + truncateMiddle(img, 60)}
		},
	)
}

func (a *App) performSearch(query string, seq int) tea.Cmd {
	searcher := a.searcher
	query = strings.TrimSpace(query)
	if searcher == nil || query == "" {
		return nil
	}
	return func() tea.Msg {
		results, err := searcher.Search(query, 20)
		if err != nil {
			return errorMsg{err: wrapErr("search", err)}
		}
		return searchResultsMsg{seq: seq, results: results}
	}
}

// retryOperation retries a database operation up to 3 times with exponential backoff
func retryOperation(operation func() error) error {
	maxRetries := 3
	baseDelay := 100 * time.Millisecond

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		if err := operation(); err != nil {
			lastErr = err
			if i < maxRetries-1 {
				time.Sleep(baseDelay * time.Duration(1<<i))
				continue
			}
		} else {
			return nil
		}
	}
	return lastErr
}

type resultItem struct {
	result *search.Result
}

func (i resultItem) Title() string {
	art := i.result.Article
	prefix := "📄 "
	if art.Starred {
		prefix = "★ "
	}
	if art.Read {
		return ReadItemStyle.Render(prefix + art.Title)
	}
	return ItemStyle.Render(prefix + art.Title)
}

func (i resultItem) Description() string {
	art := i.result.Article
	parts := []string{}
	if len(i.result.Matches) > 0 {
		parts = append(parts, singleLine(i.result.Matches[0].Text))
	} else if art.Description != "" {
		parts = append(parts, truncateEnd(singleLine(art.Description), 50))
	}
	if art.Source != "" {
		parts = append(parts, "from "+art.Source)
	}
	if !art.Published.IsZero() {
		parts = append(parts, art.Published.Local().Format("Jan 2"))
	}
	return renderMuted(strings.Join(parts, " • "))
}

func (i resultItem) FilterValue() string {
	return i.result.Article.Title + " " + i.result.Article.Description
}

type queryItem struct {
	record storage.QueryRecord
}

func (i queryItem) Title() string {
	text := i.record.Text
	if text == "" {
		text = news.TopNewsLabel
	}
	return HeaderStyle.Render("↻ " + text)
}

func (i queryItem) Description() string {
	parts := []string{}
	if i.record.Category != "" {
		parts = append(parts, news.CategoryLabel(i.record.Category))
	}
	if !i.record.At.IsZero() {
		parts = append(parts, i.record.At.Local().Format("Jan 2, 15:04"))
	}
	return renderMuted(strings.Join(parts, " • "))
}

func (i queryItem) FilterValue() string { return i.record.Text }

func queryItems(records []storage.QueryRecord) []list.Item {
	items := make([]list.Item, len(records))
	for i, r := range records {
		items[i] = queryItem{record: r}
	}
	return items
}

func joinHelp(commands []string) string {
	return strings.Join(commands, " • ")
}
