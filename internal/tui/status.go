package tui

import (
	"fmt"
	"strings"
)

// Canonical short status messages used across the app.
const (
	MsgOpening       = "Opening…"
	MsgOpeningImage  = "Opening image…"
	MsgNoImage       = "This article has no image"
	MsgNoLink        = "This article has no link"
	MsgNoResults     = "No results"
	MsgStarred       = "Starred"
	MsgUnstarred     = "Unstarred"
	MsgNoHistory     = "History is disabled"
	MsgSearchHistory = "Type to search saved articles"
)

func MsgResultsCount(n int) string {
	if n == 1 {
		return "1 result"
	}
	return fmt.Sprintf("%d results", n)
}

// MsgHistorySummary reports what a commit added to the local history.
func MsgHistorySummary(saved, docCount int) string {
	base := fmt.Sprintf("Saved %d articles", saved)
	if docCount >= 0 {
		base += fmt.Sprintf(" • idx: %d docs", docCount)
	}
	return base
}

// MsgQueryApplied describes the query that was just started.
func MsgQueryApplied(text, category string) string {
	parts := []string{}
	if t := strings.TrimSpace(text); t != "" {
		parts = append(parts, fmt.Sprintf("q=%q", t))
	}
	if category != "" {
		parts = append(parts, "category="+category)
	}
	if len(parts) == 0 {
		return "Showing top news"
	}
	return "Searching " + strings.Join(parts, " ")
}
