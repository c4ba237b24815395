package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/newsdesk/internal/news"
	"github.com/pders01/newsdesk/internal/storage"
)

// Tier section labels.
const (
	HeadlineHeader = "Headline"
	SubHeader      = "Top stories"
	OtherHeader    = "More news"
)

// renderNews draws the title line, category tabs and exactly one of the
// loading, error, empty or article views.
func (a *App) renderNews(height int) string {
	sel := a.selection()

	subtitle := ""
	if sel.Kind == news.ViewArticles {
		subtitle = fmt.Sprintf("%d articles", sel.Tiers.Len())
	}
	top := []string{
		renderHeader(sel.Title.Text, subtitle, a.width),
		renderTabs(a.category, a.width),
		renderSeparator(a.width - 1),
	}
	head := lipgloss.JoinVertical(lipgloss.Top, top...)
	bodyHeight := height - lipgloss.Height(head)
	if bodyHeight < 1 {
		bodyHeight = 1
	}

	var body string
	switch sel.Kind {
	case news.ViewLoading:
		body = renderCentered(a.width, bodyHeight, a.spinner.View()+" "+news.LoadingLabel)
	case news.ViewError:
		body = renderCentered(a.width, bodyHeight, lipgloss.JoinVertical(
			lipgloss.Center,
			ErrorMessageStyle.Render("✗ "+sel.Err),
			"",
			renderHelp(a.retryHint()),
		))
	case news.ViewEmpty:
		body = renderCentered(a.width, bodyHeight, renderMuted(news.NoResultsLabel))
	case news.ViewArticles:
		lines, cursorLine := a.renderTiers(sel.Tiers)
		body = strings.Join(clipToCursor(lines, cursorLine, bodyHeight), "\n")
	}

	return lipgloss.JoinVertical(lipgloss.Top, head, body)
}

func (a *App) retryHint() string {
	key := a.config.Keys.Bindings.Reload
	if key == "" || key == "r" {
		return news.RetryLabel
	}
	return "Press " + key + " to retry"
}

// renderTiers lays out the three tiers and returns the rendered lines plus
// the line on which the selected article starts. Empty tiers get no header.
func (a *App) renderTiers(t news.Tiers) ([]string, int) {
	var lines []string
	cursorLine := 0
	index := 0

	section := func(header string, arts []news.Article, render func(news.Article, bool) []string) {
		if len(arts) == 0 {
			return
		}
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, TierHeaderStyle.Render(header))
		for _, art := range arts {
			selected := index == a.cursor
			if selected {
				cursorLine = len(lines)
			}
			lines = append(lines, render(art, selected)...)
			index++
		}
	}

	section(HeadlineHeader, t.Headline, a.renderHeadline)
	section(SubHeader, t.Sub, a.renderSub)
	section(OtherHeader, t.Other, a.renderOther)
	return lines, cursorLine
}

func (a *App) renderHeadline(art news.Article, selected bool) []string {
	width := a.width - 4
	if width < 20 {
		width = 20
	}
	title := lipgloss.NewStyle().Width(width).Render(singleLine(art.Title))
	style := HeadlineStyle
	if selected {
		style = SelectedItemStyle
	}
	out := prefixLines(style.Render(title), selected)
	if meta := a.metaLine(art); meta != "" {
		out = append(out, "  "+meta)
	}
	if desc := singleLine(art.DescriptionText()); desc != "" {
		desc = truncateEnd(desc, a.config.UI.Article.MaxDescriptionLength)
		wrapped := lipgloss.NewStyle().Width(width).Foreground(TextColor).Render(desc)
		for _, l := range strings.Split(wrapped, "\n") {
			out = append(out, "  "+l)
		}
	}
	return out
}

func (a *App) renderSub(art news.Article, selected bool) []string {
	width := a.width - 4
	out := []string{a.itemTitle(art, selected, width)}
	if meta := a.metaLine(art); meta != "" {
		out = append(out, "  "+meta)
	}
	if desc := singleLine(art.DescriptionText()); desc != "" {
		out = append(out, "  "+renderMuted(truncateEnd(desc, width)))
	}
	return out
}

func (a *App) renderOther(art news.Article, selected bool) []string {
	line := a.itemTitle(art, selected, a.width-4-sourceWidth(art))
	if src := art.SourceName(); src != "" {
		line += TimeStyle.Render(" — " + src)
	}
	return []string{line}
}

func sourceWidth(art news.Article) int {
	if src := art.SourceName(); src != "" {
		return lipgloss.Width(" — " + src)
	}
	return 0
}

func (a *App) itemTitle(art news.Article, selected bool, width int) string {
	title := truncateEnd(singleLine(art.Title), width)
	id := storage.ArticleID(art)
	style := ItemStyle
	switch {
	case selected:
		style = SelectedItemStyle
	case a.read[id]:
		style = ReadItemStyle
	}
	marker := "  "
	if selected {
		marker = "› "
	}
	return marker + style.Render(title)
}

// metaLine renders source, publication time and flags for an article.
func (a *App) metaLine(art news.Article) string {
	var parts []string
	if src := art.SourceName(); src != "" {
		parts = append(parts, src)
	}
	if ts, ok := art.Published(); ok {
		parts = append(parts, ts.Local().Format("01/02 15:04"))
	}
	if art.ImageURL() != "" {
		parts = append(parts, "img")
	}
	meta := TimeStyle.Render(strings.Join(parts, " • "))
	if a.starred[storage.ArticleID(art)] {
		meta = StarStyle.Render("★ ") + meta
	}
	return meta
}

func prefixLines(block string, selected bool) []string {
	marker := "  "
	if selected {
		marker = "› "
	}
	lines := strings.Split(block, "\n")
	for i := range lines {
		if i == 0 {
			lines[i] = marker + lines[i]
		} else {
			lines[i] = "  " + lines[i]
		}
	}
	return lines
}

// clipToCursor returns at most height lines, scrolled so that cursorLine is
// visible. The tier header above the cursor is kept when there is room.
func clipToCursor(lines []string, cursorLine, height int) []string {
	if height <= 0 || len(lines) <= height {
		return lines
	}
	start := 0
	if cursorLine >= height-1 {
		start = cursorLine - height/2
	}
	if start < 0 {
		start = 0
	}
	if start > len(lines)-height {
		start = len(lines) - height
	}
	return lines[start : start+height]
}
