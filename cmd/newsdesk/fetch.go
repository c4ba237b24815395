package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pders01/newsdesk/internal/debuglog"
	"github.com/pders01/newsdesk/internal/news"
	"github.com/pders01/newsdesk/internal/tui"
)

var (
	fetchJSON bool
	fetchAll  bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch news once and print it",
	Long: "Runs a single fetch with the given keyword and category and prints the " +
		"headline, top stories and more news. Exits non-zero when the fetch fails.",
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().BoolVar(&fetchJSON, "json", false, "print articles as JSON")
	fetchCmd.Flags().BoolVar(&fetchAll, "all", false, "print every returned article instead of the displayed ones")
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer debuglog.Close()

	q, err := resolveQuery()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ctrl := news.NewController(newFetcher(cfg), cfg.API.Timeout)
	state := ctrl.Load(ctx, q)
	sel := news.Select(state)

	if state.Failed() {
		return errors.New(sel.Err)
	}

	out := cmd.OutOrStdout()
	if fetchJSON {
		articles := sel.Tiers.All()
		if fetchAll {
			articles = state.Articles
		}
		return writeArticlesJSON(out, q, articles)
	}
	writeSelection(out, sel, state.Articles)
	return nil
}

type fetchResult struct {
	Query    string         `json:"q"`
	Category string         `json:"category"`
	Articles []news.Article `json:"articles"`
}

func writeArticlesJSON(w io.Writer, q news.Query, articles []news.Article) error {
	if articles == nil {
		articles = []news.Article{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(fetchResult{Query: q.Trimmed(), Category: q.Category, Articles: articles})
}

// writeSelection prints the title and the non-empty tiers as plain text.
func writeSelection(w io.Writer, sel news.Selection, all []news.Article) {
	fmt.Fprintln(w, sel.Title.Text)
	if sel.Kind == news.ViewEmpty {
		fmt.Fprintln(w, news.NoResultsLabel)
		return
	}

	section := func(header string, arts []news.Article) {
		if len(arts) == 0 {
			return
		}
		fmt.Fprintf(w, "\n%s\n", header)
		for _, art := range arts {
			line := "  " + singleLine(art.Title)
			if src := art.SourceName(); src != "" {
				line += " (" + src + ")"
			}
			fmt.Fprintln(w, line)
			if link := art.Link(); link != "" {
				fmt.Fprintln(w, "    "+link)
			}
		}
	}
	section(tui.HeadlineHeader, sel.Tiers.Headline)
	section(tui.SubHeader, sel.Tiers.Sub)
	section(tui.OtherHeader, sel.Tiers.Other)

	if fetchAll && len(all) > sel.Tiers.Len() {
		section("Not displayed", all[sel.Tiers.Len():])
	}
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
