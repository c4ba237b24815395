package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/pders01/newsdesk/internal/debuglog"
	"github.com/pders01/newsdesk/internal/feed"
	"github.com/pders01/newsdesk/internal/news"
	"github.com/pders01/newsdesk/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the news aggregation endpoint",
	Long: "Serves GET " + server.NewsPath + " backed by the RSS feeds configured under " +
		"[server.feeds]. Point api.endpoint (or --endpoint) at it.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		defer debuglog.Close()

		addr := cfg.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}

		agg := feed.NewAggregator(cfg)
		srv, err := server.Listen(addr, server.NewHandler(agg, cfg.Server.HTTPTimeout))
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(cmd.OutOrStdout(), "Serving %d topics at %s\n", len(agg.Topics()), srv.URL())
		return srv.Serve(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the categories accepted by --category",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), categoryTable())
	},
}

func categoryTable() string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "LABEL", "TOPIC")
	for _, c := range news.Categories {
		id := c.ID
		if id == "" {
			id = "(none)"
		}
		topic, ok := news.TopicFor(c.ID)
		if !ok {
			topic = "-"
		}
		t.Row(id, c.Label, topic)
	}
	return t.Render()
}
