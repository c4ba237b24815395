package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/newsdesk/internal/news"
)

// renderHeader returns a consistently styled header with an optional muted subtitle.
func renderHeader(title, subtitle string, width int) string {
	title = truncateEnd(title, width-2)
	subtitle = truncateEnd(subtitle, width-2)
	rows := []string{HeaderStyle.Render(title)}
	if subtitle != "" {
		rows = append(rows, renderMuted(subtitle))
	}
	return lipgloss.JoinVertical(lipgloss.Top, rows...)
}

// renderInputFrame draws a rounded bordered container around a rendered input view.
func renderInputFrame(inputView string, focused bool, contentWidth int) string {
	borderColor := MutedColor
	if focused {
		borderColor = AccentColor
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(contentWidth + 4).
		Render(inputView)
}

// renderCentered centers the provided content within the given width/height box.
func renderCentered(width, height int, content string) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

func renderMuted(text string) string {
	return lipgloss.NewStyle().Foreground(MutedColor).Render(text)
}

func renderHelp(text string) string {
	return HelpStyle.Render(text)
}

// renderTabs draws the category strip with the active category highlighted.
// Tabs that do not fit in width are dropped from the right.
func renderTabs(active, width int) string {
	var tabs []string
	used := 0
	for i, c := range news.Categories {
		style := TabStyle
		if i == active {
			style = ActiveTabStyle
		}
		tab := style.Render(c.Label)
		w := lipgloss.Width(tab)
		if width > 0 && used+w > width && i > active {
			break
		}
		tabs = append(tabs, tab)
		used += w
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// renderSeparator draws a horizontal rule across width cells.
func renderSeparator(width int) string {
	if width < 1 {
		width = 1
	}
	return SeparatorStyle.Render(strings.Repeat("─", width))
}
