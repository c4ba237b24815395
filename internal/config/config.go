package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/pders01/newsdesk/internal/validation"
)

type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	UI       UIConfig       `mapstructure:"ui"`
	Media    MediaConfig    `mapstructure:"media"`
	Keys     KeyConfig      `mapstructure:"keys"`
	Log      LogConfig      `mapstructure:"log"`
}

type APIConfig struct {
	Endpoint  string        `mapstructure:"endpoint"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

type DatabaseConfig struct {
	Path        string        `mapstructure:"path"`
	Timeout     time.Duration `mapstructure:"timeout"`
	SearchIndex string        `mapstructure:"search_index"`
}

// ServerConfig drives the development aggregation backend.
type ServerConfig struct {
	Addr        string              `mapstructure:"addr"`
	HTTPTimeout time.Duration       `mapstructure:"http_timeout"`
	CacheTTL    time.Duration       `mapstructure:"cache_ttl"`
	UserAgent   string              `mapstructure:"user_agent"`
	Feeds       map[string][]string `mapstructure:"feeds"`
}

type UIConfig struct {
	Colors  UIColors      `mapstructure:"colors"`
	Article ArticleConfig `mapstructure:"article"`
}

type UIColors struct {
	Primary    string `mapstructure:"primary"`
	Secondary  string `mapstructure:"secondary"`
	Accent     string `mapstructure:"accent"`
	Background string `mapstructure:"background"`
	Surface    string `mapstructure:"surface"`
	Text       string `mapstructure:"text"`
	Muted      string `mapstructure:"muted"`
	Error      string `mapstructure:"error"`
	Success    string `mapstructure:"success"`
}

type ArticleConfig struct {
	MaxDescriptionLength int `mapstructure:"max_description_length"`
	WordWrapMaxWidth     int `mapstructure:"word_wrap_max_width"`
	WordWrapMinWidth     int `mapstructure:"word_wrap_min_width"`
}

type MediaConfig struct {
	Darwin        Openers `mapstructure:"darwin"`
	Linux         Openers `mapstructure:"linux"`
	Windows       Openers `mapstructure:"windows"`
	DefaultOpener string  `mapstructure:"default_opener"`
}

// Openers lists candidate commands in order of preference.
type Openers struct {
	Browser []string `mapstructure:"browser"`
	Image   []string `mapstructure:"image"`
}

type KeyConfig struct {
	Modifier string      `mapstructure:"modifier"`
	Bindings KeyBindings `mapstructure:"bindings"`
}

type KeyBindings struct {
	Quit         string `mapstructure:"quit"`
	EditQuery    string `mapstructure:"edit_query"`
	NextCategory string `mapstructure:"next_category"`
	PrevCategory string `mapstructure:"prev_category"`
	Reload       string `mapstructure:"reload"`
	Open         string `mapstructure:"open"`
	OpenImage    string `mapstructure:"open_image"`
	Star         string `mapstructure:"star"`
	History      string `mapstructure:"history"`
	Back         string `mapstructure:"back"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".newsdesk")

	return &Config{
		API: APIConfig{
			Endpoint:  "http://localhost:3000/api/news",
			Timeout:   10 * time.Second,
			UserAgent: "newsdesk/1.0 (https://github.com/pders01/newsdesk)",
		},
		Database: DatabaseConfig{
			Path:        filepath.Join(dataDir, "history.db"),
			Timeout:     1 * time.Second,
			SearchIndex: filepath.Join(dataDir, "index.bleve"),
		},
		Server: ServerConfig{
			Addr:        ":3000",
			HTTPTimeout: 15 * time.Second,
			CacheTTL:    2 * time.Minute,
			UserAgent:   "newsdesk-server/1.0 (https://github.com/pders01/newsdesk)",
			Feeds:       defaultFeeds(),
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary:    "#FF6B6B",
				Secondary:  "#4ECDC4",
				Accent:     "#95E1D3",
				Background: "#1A1A2E",
				Surface:    "#16213E",
				Text:       "#EAEAEA",
				Muted:      "#94A3B8",
				Error:      "#F87171",
				Success:    "#4ADE80",
			},
			Article: ArticleConfig{
				MaxDescriptionLength: 160,
				WordWrapMaxWidth:     120,
				WordWrapMinWidth:     40,
			},
		},
		Media: MediaConfig{
			Darwin: Openers{
				Browser: []string{"open"},
				Image:   []string{"open"},
			},
			Linux: Openers{
				Browser: []string{"xdg-open", "sensible-browser", "firefox"},
				Image:   []string{"sxiv", "feh", "eog", "xdg-open"},
			},
			Windows: Openers{
				Browser: []string{"start"},
				Image:   []string{"start"},
			},
			DefaultOpener: getDefaultOpener(),
		},
		Keys: KeyConfig{
			Modifier: "ctrl",
			Bindings: KeyBindings{
				Quit:         "q",
				EditQuery:    "/",
				NextCategory: "tab",
				PrevCategory: "shift+tab",
				Reload:       "r",
				Open:         "o",
				OpenImage:    "i",
				Star:         "s",
				History:      "h",
				Back:         "esc",
			},
		},
		Log: LogConfig{
			Level: "off",
			File:  filepath.Join(dataDir, "newsdesk.log"),
		},
	}
}

// defaultFeeds are Google News RSS searches per topic for the development
// backend. "top" is used when no topic is requested.
func defaultFeeds() map[string][]string {
	const base = "https://news.google.com/rss/headlines/section/topic/"
	const locale = "?hl=ja&gl=JP&ceid=JP:ja"
	feeds := map[string][]string{
		"top": {"https://news.google.com/rss" + locale},
	}
	for _, topic := range []string{"world", "nation", "business", "technology", "entertainment", "sports", "science", "health"} {
		feeds[topic] = []string{base + strings.ToUpper(topic) + locale}
	}
	return feeds
}

func getDefaultOpener() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "linux":
		return "xdg-open"
	case "windows":
		return "start"
	default:
		return "open"
	}
}

// Load reads config.toml (from configPath, ~/.config/newsdesk or the working
// directory), then NEWSDESK_* environment variables. A .env file in the
// working directory is loaded into the environment first.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	cfg := defaultConfig()
	setLeafDefaults(v, cfg)
	v.SetDefault("ui", cfg.UI)
	v.SetDefault("media", cfg.Media)
	v.SetDefault("keys", cfg.Keys)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		homeDir, _ := os.UserHomeDir()
		configDir := filepath.Join(homeDir, ".config", "newsdesk")

		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("NEWSDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	expandPaths(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// setLeafDefaults registers scalar keys one by one so NEWSDESK_API_ENDPOINT
// and friends are visible to AutomaticEnv.
func setLeafDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("api.endpoint", cfg.API.Endpoint)
	v.SetDefault("api.timeout", cfg.API.Timeout)
	v.SetDefault("api.user_agent", cfg.API.UserAgent)

	v.SetDefault("database.path", cfg.Database.Path)
	v.SetDefault("database.timeout", cfg.Database.Timeout)
	v.SetDefault("database.search_index", cfg.Database.SearchIndex)

	v.SetDefault("server.addr", cfg.Server.Addr)
	v.SetDefault("server.http_timeout", cfg.Server.HTTPTimeout)
	v.SetDefault("server.cache_ttl", cfg.Server.CacheTTL)
	v.SetDefault("server.user_agent", cfg.Server.UserAgent)
	v.SetDefault("server.feeds", cfg.Server.Feeds)

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.file", cfg.Log.File)
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	endpoint, err := validation.NewEndpointValidator().ValidateAndNormalize(c.API.Endpoint)
	if err != nil {
		return fmt.Errorf("api.endpoint: %w", err)
	}
	c.API.Endpoint = endpoint

	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout)
	}
	return nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" || path == ":memory:" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

// expandPaths expands all paths in the config
func expandPaths(cfg *Config) {
	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.Database.SearchIndex = expandPath(cfg.Database.SearchIndex)
	cfg.Log.File = expandPath(cfg.Log.File)
}

func Save(config *Config, path string) error {
	v := viper.New()

	// Convert durations to strings for TOML readability
	apiCfg := map[string]interface{}{
		"endpoint":   config.API.Endpoint,
		"timeout":    config.API.Timeout.String(),
		"user_agent": config.API.UserAgent,
	}

	dbCfg := map[string]interface{}{
		"path":         config.Database.Path,
		"timeout":      config.Database.Timeout.String(),
		"search_index": config.Database.SearchIndex,
	}

	serverCfg := map[string]interface{}{
		"addr":         config.Server.Addr,
		"http_timeout": config.Server.HTTPTimeout.String(),
		"cache_ttl":    config.Server.CacheTTL.String(),
		"user_agent":   config.Server.UserAgent,
		"feeds":        config.Server.Feeds,
	}

	v.Set("api", apiCfg)
	v.Set("database", dbCfg)
	v.Set("server", serverCfg)
	v.Set("ui", config.UI)
	v.Set("media", config.Media)
	v.Set("keys", config.Keys)
	v.Set("log", config.Log)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
