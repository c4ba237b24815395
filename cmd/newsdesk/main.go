package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pders01/newsdesk/internal/config"
	"github.com/pders01/newsdesk/internal/debuglog"
	"github.com/pders01/newsdesk/internal/feed"
	"github.com/pders01/newsdesk/internal/news"
	"github.com/pders01/newsdesk/internal/search"
	"github.com/pders01/newsdesk/internal/storage"
	"github.com/pders01/newsdesk/internal/tui"
)

// Version is the version of the application, set at build time
var Version = "dev"

var (
	flagConfig   string
	flagEndpoint string
	flagLocal    bool
	flagLogLevel string
	flagQuery    string
	flagCategory string
	flagURL      string
	flagDB       string
	flagQuiet    bool
)

var rootCmd = &cobra.Command{
	Use:   "newsdesk",
	Short: "Terminal reader for Japanese news",
	Long: "newsdesk shows Japanese news from an aggregation endpoint, grouped into a headline, " +
		"top stories and more news, with keyword search and category filters.",
	SilenceUsage: true,
	RunE:         runTUI,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "path to config file")
	pf.StringVar(&flagEndpoint, "endpoint", "", "news endpoint URL (overrides config)")
	pf.BoolVar(&flagLocal, "local", false, "aggregate the configured feeds in-process instead of calling the endpoint")
	pf.StringVar(&flagLogLevel, "log-level", "", "debug, info, warn, error or off (overrides config)")
	pf.StringVarP(&flagQuery, "query", "q", "", "search keyword")
	pf.StringVarP(&flagCategory, "category", "c", "", "category id, see 'newsdesk categories'")
	pf.StringVar(&flagURL, "url", "", "page URL or query string carrying q and category parameters")

	rootCmd.Flags().StringVar(&flagDB, "db", "", "path to history database (overrides config)")
	rootCmd.Flags().BoolVar(&flagQuiet, "quiet", false, "skip startup banner")

	configCmd.AddCommand(configGenCmd)
	rootCmd.AddCommand(versionCmd, fetchCmd, serveCmd, categoriesCmd, configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s %s\n", tui.AppName, Version)
		fmt.Println("Japanese news reader")
		fmt.Println("github.com/pders01/newsdesk")
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configGenCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write the default configuration to ~/.config/newsdesk/config.toml",
	Run: func(cmd *cobra.Command, args []string) {
		home, _ := os.UserHomeDir()
		configFile := filepath.Join(home, ".config", "newsdesk", "config.toml")

		if err := config.GenerateDefaultConfig(configFile); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Generated default configuration at: %s\n", configFile)
	},
}

// loadConfig reads the config file and applies the global flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if flagEndpoint != "" {
		cfg.API.Endpoint = flagEndpoint
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	if err := debuglog.Setup(debuglog.ParseLogLevel(cfg.Log.Level), cfg.Log.File); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveQuery combines --url with --query and --category; the explicit
// flags win over parameters found in the URL.
func resolveQuery() (news.Query, error) {
	q, err := news.ParseQuery(flagURL)
	if err != nil {
		return news.Query{}, fmt.Errorf("parsing --url: %w", err)
	}
	if flagQuery != "" {
		q.Text = flagQuery
	}
	if flagCategory != "" {
		q.Category = flagCategory
	}
	if q.Category != "" {
		if _, ok := news.TopicFor(q.Category); !ok {
			debuglog.Warnf("unknown category %q, showing all topics", q.Category)
		}
	}
	return q, nil
}

// newFetcher returns the HTTP client for the configured endpoint, or the
// in-process aggregator with --local.
func newFetcher(cfg *config.Config) news.Fetcher {
	if flagLocal {
		return feed.NewAggregator(cfg)
	}
	return news.NewClient(cfg.API.Endpoint, cfg.API.Timeout, cfg.API.UserAgent)
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer debuglog.Close()

	if flagDB != "" {
		cfg.Database.Path = flagDB
	}

	q, err := resolveQuery()
	if err != nil {
		return err
	}

	if !flagQuiet {
		tui.ShowBanner(Version)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	store, err := storage.NewStoreWithTimeout(cfg.Database.Path, cfg.Database.Timeout)
	if err != nil {
		return err
	}
	defer store.Close()

	var searcher search.Searcher
	if cfg.Database.SearchIndex != "" {
		be, err := search.NewBleveEngine(store, cfg.Database.SearchIndex)
		if err != nil {
			debuglog.Warnf("search index unavailable, using in-memory search: %v", err)
		} else {
			defer be.Close()
			searcher = be
		}
	}

	app := tui.NewApp(cfg, tui.Options{
		Fetcher:  newFetcher(cfg),
		History:  store,
		Searcher: searcher,
		Query:    q,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running UI: %w", err)
	}
	return nil
}
