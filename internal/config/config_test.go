package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(portEnv, "")
	t.Setenv(emailAPIKeyEnv, "")
	t.Setenv(emailAPIKeyAlias, "")

	cfg := Load("")

	if cfg.Server.Port != "10000" {
		t.Fatalf("unexpected port: %s", cfg.Server.Port)
	}
	if len(cfg.Articles) != 6 || len(cfg.Videos) != 5 || len(cfg.Keywords) != 16 {
		t.Fatalf("unexpected default sources: %d articles, %d videos, %d keywords",
			len(cfg.Articles), len(cfg.Videos), len(cfg.Keywords))
	}
	if cfg.History.Window != 50 || cfg.History.Capacity != 100 {
		t.Fatalf("unexpected history bounds: %+v", cfg.History)
	}
	if cfg.Fetch.MinDelay != time.Second || cfg.Fetch.MaxDelay != 4*time.Second {
		t.Fatalf("unexpected delays: %v-%v", cfg.Fetch.MinDelay, cfg.Fetch.MaxDelay)
	}
	if cfg.EmailEnabled() {
		t.Fatalf("email must be disabled without an api key")
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "curatd.yaml")
	raw := `
server:
  port: "8081"
  verboseErrors: true
history:
  backend: sqlite
  path: /var/lib/curatd/history.db
  window: 500
fetch:
  minDelay: 2s
  maxDelay: 1s
email:
  senderEmail: news@example.org
keywords: [sleep, focus]
articles:
  - name: example
    url: https://example.org/blog
videos:
  - name: chan
    url: https://www.youtube.com/@chan/videos
    options:
      channel_id: UC123
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(portEnv, "9090")
	t.Setenv(emailAPIKeyEnv, "")
	t.Setenv(emailAPIKeyAlias, "secret")

	cfg := Load(path)

	if cfg.Server.Port != "9090" {
		t.Fatalf("env should override port, got %s", cfg.Server.Port)
	}
	if !cfg.Server.VerboseErrors {
		t.Fatalf("verboseErrors not merged")
	}
	if cfg.History.Backend != BackendSQLite || cfg.History.Path != "/var/lib/curatd/history.db" {
		t.Fatalf("history not merged: %+v", cfg.History)
	}
	if cfg.History.Window != cfg.History.Capacity {
		t.Fatalf("window must be clamped to capacity: %+v", cfg.History)
	}
	if cfg.Fetch.MaxDelay != 2*time.Second {
		t.Fatalf("max delay must not be below min delay, got %v", cfg.Fetch.MaxDelay)
	}
	if !cfg.EmailEnabled() {
		t.Fatalf("email should be enabled via alias env")
	}
	if len(cfg.Keywords) != 2 {
		t.Fatalf("keywords not merged: %v", cfg.Keywords)
	}
	if len(cfg.Articles) != 1 || cfg.Articles[0].Scanner != ScannerPage {
		t.Fatalf("article scanner default not applied: %+v", cfg.Articles)
	}
	if len(cfg.Videos) != 1 || cfg.Videos[0].Scanner != ScannerYouTube || cfg.Videos[0].Options["channel_id"] != "UC123" {
		t.Fatalf("video source not merged: %+v", cfg.Videos)
	}
}

func TestLoadBrokenFileFallsBack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.yaml")
	if err := os.WriteFile(path, []byte("server: [unterminated"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(portEnv, "")

	cfg := Load(path)
	if cfg.Server.Port != "10000" {
		t.Fatalf("expected defaults, got port %s", cfg.Server.Port)
	}
}

func TestSanitizeUnknownBackend(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.History.Backend = "redis"
	cfg.sanitize()
	if cfg.History.Backend != BackendJSON {
		t.Fatalf("expected json fallback, got %s", cfg.History.Backend)
	}
}
