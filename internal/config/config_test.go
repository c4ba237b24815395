package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestGetDefaultOpener(t *testing.T) {
	expected := map[string]string{
		"darwin":  "open",
		"linux":   "xdg-open",
		"windows": "start",
	}

	opener := getDefaultOpener()

	if expectedOpener, ok := expected[runtime.GOOS]; ok {
		if opener != expectedOpener {
			t.Errorf("getDefaultOpener() = %s, want %s for %s", opener, expectedOpener, runtime.GOOS)
		}
	} else if opener != "open" {
		t.Errorf("getDefaultOpener() = %s, want 'open' for unknown OS", opener)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.API.Endpoint != "http://localhost:3000/api/news" {
		t.Errorf("API.Endpoint = %s, want local backend", cfg.API.Endpoint)
	}
	if cfg.API.Timeout != 10*time.Second {
		t.Errorf("API.Timeout = %v, want 10s", cfg.API.Timeout)
	}
	if cfg.API.UserAgent == "" {
		t.Error("API.UserAgent should not be empty")
	}

	if cfg.Database.Timeout != 1*time.Second {
		t.Errorf("Database.Timeout = %v, want 1s", cfg.Database.Timeout)
	}

	if cfg.Server.Addr != ":3000" {
		t.Errorf("Server.Addr = %s, want ':3000'", cfg.Server.Addr)
	}
	if _, ok := cfg.Server.Feeds["top"]; !ok {
		t.Error("Server.Feeds should contain a 'top' entry")
	}
	for _, topic := range []string{"world", "technology", "health"} {
		if len(cfg.Server.Feeds[topic]) == 0 {
			t.Errorf("Server.Feeds[%q] is empty", topic)
		}
	}

	if cfg.UI.Article.MaxDescriptionLength != 160 {
		t.Errorf("UI.Article.MaxDescriptionLength = %d, want 160", cfg.UI.Article.MaxDescriptionLength)
	}

	if cfg.Media.DefaultOpener == "" {
		t.Error("Media.DefaultOpener should not be empty")
	}

	if cfg.Keys.Bindings.Quit != "q" {
		t.Errorf("Keys.Bindings.Quit = %s, want 'q'", cfg.Keys.Bindings.Quit)
	}
	if cfg.Keys.Bindings.EditQuery != "/" {
		t.Errorf("Keys.Bindings.EditQuery = %s, want '/'", cfg.Keys.Bindings.EditQuery)
	}

	if cfg.Log.Level != "off" {
		t.Errorf("Log.Level = %s, want 'off'", cfg.Log.Level)
	}
}

func TestLoad_DefaultConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg == nil {
		t.Fatal("Load() returned nil config")
	}

	if cfg.API.Timeout != 10*time.Second {
		t.Errorf("API.Timeout = %v, want 10s", cfg.API.Timeout)
	}
	if cfg.API.UserAgent == "" {
		t.Error("API.UserAgent lost its default")
	}
}

func TestLoad_FromFile(t *testing.T) {
	tmpDir := t.TempDir()

	configPath := filepath.Join(tmpDir, "test-config.toml")
	configContent := `
[api]
endpoint = "https://news.example.com/api/news"
timeout = "3s"

[database]
path = "/tmp/test.db"
timeout = "10s"

[server]
addr = ":8080"

[server.feeds]
top = ["https://example.com/rss"]

[ui.colors]
primary = "#FF0000"
`

	if writeErr := os.WriteFile(configPath, []byte(configContent), 0o644); writeErr != nil {
		t.Fatal(writeErr)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.Endpoint != "https://news.example.com/api/news" {
		t.Errorf("API.Endpoint = %s", cfg.API.Endpoint)
	}
	if cfg.API.Timeout != 3*time.Second {
		t.Errorf("API.Timeout = %v, want 3s", cfg.API.Timeout)
	}
	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %s, want '/tmp/test.db'", cfg.Database.Path)
	}
	if cfg.Database.Timeout != 10*time.Second {
		t.Errorf("Database.Timeout = %v, want 10s", cfg.Database.Timeout)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %s, want ':8080'", cfg.Server.Addr)
	}
	if got := cfg.Server.Feeds["top"]; len(got) != 1 || got[0] != "https://example.com/rss" {
		t.Errorf("Server.Feeds[top] = %v", got)
	}
	if cfg.UI.Colors.Primary != "#FF0000" {
		t.Errorf("UI.Colors.Primary = %s, want '#FF0000'", cfg.UI.Colors.Primary)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("NEWSDESK_API_ENDPOINT", "http://127.0.0.1:9999/api/news")
	t.Setenv("NEWSDESK_LOG_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.API.Endpoint != "http://127.0.0.1:9999/api/news" {
		t.Errorf("API.Endpoint = %s, want env override", cfg.API.Endpoint)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %s, want 'debug'", cfg.Log.Level)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("NEWSDESK_SERVER_ADDR=:4123\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	// godotenv sets the variable process-wide; register it for cleanup.
	t.Setenv("NEWSDESK_SERVER_ADDR", "")
	if err := os.Unsetenv("NEWSDESK_SERVER_ADDR"); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != ":4123" {
		t.Errorf("Server.Addr = %s, want value from .env", cfg.Server.Addr)
	}
}

func TestLoad_InvalidEndpoint(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bad.toml")
	content := "[api]\nendpoint = \"ftp://example.com/news\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() should reject a non-http endpoint")
	}
	if !strings.Contains(err.Error(), "api.endpoint") {
		t.Errorf("error %q should name the offending key", err)
	}
}

func TestValidate_Timeout(t *testing.T) {
	cfg := TestConfig()
	cfg.API.Timeout = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should reject a zero timeout")
	}
}

func TestSave(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := TestConfig()
	cfg.API.Endpoint = "https://news.example.com/api/news"
	cfg.API.Timeout = 7 * time.Second
	cfg.Database.Path = "/test/path.db"
	cfg.Server.Addr = ":9090"
	cfg.Keys.Modifier = "alt"

	savePath := filepath.Join(tmpDir, "saved-config.toml")
	if saveErr := Save(cfg, savePath); saveErr != nil {
		t.Fatalf("Save() error = %v", saveErr)
	}

	if _, statErr := os.Stat(savePath); os.IsNotExist(statErr) {
		t.Fatal("Save() did not create config file")
	}

	loaded, err := Load(savePath)
	if err != nil {
		t.Fatalf("Failed to load saved config: %v", err)
	}

	if loaded.API.Endpoint != cfg.API.Endpoint {
		t.Errorf("Loaded API.Endpoint = %s, want %s", loaded.API.Endpoint, cfg.API.Endpoint)
	}
	if loaded.API.Timeout != cfg.API.Timeout {
		t.Errorf("Loaded API.Timeout = %v, want %v", loaded.API.Timeout, cfg.API.Timeout)
	}
	if loaded.Database.Path != cfg.Database.Path {
		t.Errorf("Loaded Database.Path = %s, want %s", loaded.Database.Path, cfg.Database.Path)
	}
	if loaded.Server.Addr != cfg.Server.Addr {
		t.Errorf("Loaded Server.Addr = %s, want %s", loaded.Server.Addr, cfg.Server.Addr)
	}
	if loaded.Keys.Modifier != cfg.Keys.Modifier {
		t.Errorf("Loaded Keys.Modifier = %s, want %s", loaded.Keys.Modifier, cfg.Keys.Modifier)
	}
}

func TestGenerateDefaultConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "generated.toml")
	if genErr := GenerateDefaultConfig(configPath); genErr != nil {
		t.Fatalf("GenerateDefaultConfig() error = %v", genErr)
	}

	if _, statErr := os.Stat(configPath); os.IsNotExist(statErr) {
		t.Fatal("GenerateDefaultConfig() did not create file")
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load generated config: %v", err)
	}

	if cfg.Keys.Modifier != "ctrl" {
		t.Errorf("Generated config has Keys.Modifier = %s, want 'ctrl'", cfg.Keys.Modifier)
	}
	if cfg.API.Endpoint != "http://localhost:3000/api/news" {
		t.Errorf("Generated config has API.Endpoint = %s", cfg.API.Endpoint)
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()
	if got := expandPath("~/x.db"); got != filepath.Join(home, "x.db") {
		t.Errorf("expandPath(~/x.db) = %s", got)
	}
	if got := expandPath(":memory:"); got != ":memory:" {
		t.Errorf("expandPath(:memory:) = %s", got)
	}
	if got := expandPath(""); got != "" {
		t.Errorf("expandPath(\"\") = %s", got)
	}
}

func TestTestConfig(t *testing.T) {
	cfg := TestConfig()

	if cfg == nil {
		t.Fatal("TestConfig() returned nil")
	}

	if cfg.Database.Path != ":memory:" {
		t.Errorf("TestConfig Database.Path = %s, want ':memory:'", cfg.Database.Path)
	}
	if cfg.API.Timeout != 10*time.Second {
		t.Errorf("TestConfig API.Timeout = %v, want 10s", cfg.API.Timeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("TestConfig should validate: %v", err)
	}
}
