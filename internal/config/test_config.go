package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	def := defaultConfig()
	return &Config{
		API: APIConfig{
			Endpoint:  "http://localhost:3000/api/news",
			Timeout:   10 * time.Second,
			UserAgent: "newsdesk-test/1.0",
		},
		Database: DatabaseConfig{
			Path:    ":memory:", // Use in-memory database for tests
			Timeout: 1 * time.Second,
		},
		Server: ServerConfig{
			Addr:        "127.0.0.1:0",
			HTTPTimeout: 5 * time.Second,
			CacheTTL:    0,
			UserAgent:   "newsdesk-server-test/1.0",
			Feeds:       map[string][]string{},
		},
		UI:    def.UI,
		Media: def.Media,
		Keys:  def.Keys,
		Log:   LogConfig{Level: "off"},
	}
}
