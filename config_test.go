package pubsite

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "site.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
title: Notes
url: https://example.com/
author:
  name: Jane
  email: jane@example.com
content:
  exclude_urls: ["/", "/ru/"]
locales:
  - code: en-US
    prefix: /
  - code: ru-RU
    prefix: ru
    title: Заметки
    feed:
      content_source: description
      limit: 10
copyright:
  since: 2019
server:
  post_cache_ttl: 30s
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.URL != "https://example.com" {
		t.Errorf("URL = %q, want trailing slash trimmed", cfg.URL)
	}
	if cfg.Content.Dir != "content" || cfg.OutputDir != "dist" {
		t.Errorf("dirs = %q, %q, want defaults", cfg.Content.Dir, cfg.OutputDir)
	}
	if !cfg.Content.CleanURLs {
		t.Error("CleanURLs should default to true")
	}
	if len(cfg.Content.ExcludeURLs) != 2 {
		t.Errorf("ExcludeURLs = %v, want 2 entries", cfg.Content.ExcludeURLs)
	}
	if cfg.Server.PostCacheTTL != 30*time.Second {
		t.Errorf("PostCacheTTL = %v, want 30s", cfg.Server.PostCacheTTL)
	}
	if cfg.Copyright.Holder != "Jane" {
		t.Errorf("Copyright.Holder = %q, want author name", cfg.Copyright.Holder)
	}

	ru, ok := cfg.Locale("ru-ru")
	if !ok {
		t.Fatal("ru-RU locale not found")
	}
	if ru.Prefix != "/ru/" {
		t.Errorf("Prefix = %q, want %q", ru.Prefix, "/ru/")
	}
	if ru.Feed.Path != "ru/feed.xml" {
		t.Errorf("Feed.Path = %q, want %q", ru.Feed.Path, "ru/feed.xml")
	}
	if ru.Feed.ID != "https://example.com/ru/feed.xml" {
		t.Errorf("Feed.ID = %q", ru.Feed.ID)
	}
	if ru.Feed.ContentSource != ContentSourceDescription || ru.Feed.Limit != 10 {
		t.Errorf("Feed = %+v, want description source and limit 10", ru.Feed)
	}

	en, _ := cfg.Locale("en-US")
	if en.Title != "Notes" {
		t.Errorf("en Title = %q, want site title", en.Title)
	}
	if en.Feed.ContentSource != ContentSourceHTML {
		t.Errorf("en ContentSource = %q, want %q", en.Feed.ContentSource, ContentSourceHTML)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	path := writeConfig(t, "url: https://example.com\n")
	t.Setenv("PUBSITE_URL", "https://staging.example.com")
	t.Setenv("PUBSITE_OUTPUT_DIR", "public")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.URL != "https://staging.example.com" {
		t.Errorf("URL = %q, want env override", cfg.URL)
	}
	if cfg.OutputDir != "public" {
		t.Errorf("OutputDir = %q, want env override", cfg.OutputDir)
	}
	if cfg.IndexPath != "public/.index/posts.db" {
		t.Errorf("IndexPath = %q, want it below the output dir", cfg.IndexPath)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("LoadConfig should fail for a missing file")
	}
}

func TestSetDefaultsSingleLocale(t *testing.T) {
	var cfg SiteConfig
	cfg.setDefaults()

	if len(cfg.Locales) != 1 {
		t.Fatalf("len(Locales) = %d, want 1", len(cfg.Locales))
	}
	l := cfg.Locales[0]
	if l.Code != "en-US" || l.Prefix != "/" || l.Feed.Path != "feed.xml" {
		t.Errorf("default locale = %+v", l)
	}
	if cfg.Server.Addr != ":3000" {
		t.Errorf("Addr = %q, want %q", cfg.Server.Addr, ":3000")
	}
}

func TestCopyrightLine(t *testing.T) {
	tests := []struct {
		cfg  CopyrightConfig
		year int
		want string
	}{
		{CopyrightConfig{Holder: "Jane", Since: 2019}, 2026, "Copyright © 2019-2026 Jane"},
		{CopyrightConfig{Holder: "Jane", Since: 2026}, 2026, "Copyright © 2026 Jane"},
		{CopyrightConfig{Holder: "Jane"}, 2026, "Copyright © 2026 Jane"},
		{CopyrightConfig{}, 2026, "Copyright © 2026"},
	}
	for _, tt := range tests {
		if got := tt.cfg.CopyrightLine(tt.year); got != tt.want {
			t.Errorf("CopyrightLine(%d) = %q, want %q", tt.year, got, tt.want)
		}
	}
}
