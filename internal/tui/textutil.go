package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// truncateEnd shortens s to at most limit terminal cells, appending an
// ellipsis if truncation occurs. Wide (CJK) characters count as two cells.
func truncateEnd(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= limit {
		return s
	}
	if limit <= 1 {
		return "…"
	}
	return runewidth.Truncate(s, limit, "…")
}

// truncateMiddle shortens s to at most limit cells by keeping both ends
// around a single ellipsis. Used for URLs where the host and the tail
// both carry meaning.
func truncateMiddle(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= limit {
		return s
	}
	if limit <= 1 {
		return "…"
	}
	keep := limit - 1
	left := keep / 2
	right := keep - left

	head := runewidth.Truncate(s, left, "")
	r := []rune(s)
	tail := ""
	for i := len(r) - 1; i >= 0; i-- {
		next := string(r[i]) + tail
		if runewidth.StringWidth(next) > right {
			break
		}
		tail = next
	}
	return head + "…" + tail
}

// singleLine collapses runs of whitespace, including newlines, to one space.
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
