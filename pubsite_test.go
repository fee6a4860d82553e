package pubsite

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testContent() fstest.MapFS {
	return fstest.MapFS{
		"index.md": {Data: []byte("---\ntitle: Home\n---\nWelcome\n")},
		"about.md": {Data: []byte("---\ntitle: About me\n---\nI write about Go.\n")},
		"posts/first.md": {Data: []byte("---\ntitle: First\ndescription: The first one\n" +
			"date: \"2024-01-10\"\ntags: [go, web]\n---\nIntro text.\n\n---\n\nRest of the post.\n")},
		"posts/second.md": {Data: []byte("---\ntitle: Second\ndescription: The second one\n" +
			"date: \"2024-03-05\"\ntags: [go, tools]\n---\nSecond body.\n")},
		"posts/draft.md":     {Data: []byte("---\ntitle: Draft\ndate: \"2024-04-01\"\ndraft: true\n---\nWIP\n")},
		"posts/nodate.md":    {Data: []byte("---\ntitle: Undated\n---\nNo date here.\n")},
		"ru/posts/privet.md": {Data: []byte("---\ntitle: Привет\ndate: \"2024-02-01\"\ntags: [go]\n---\nТекст заметки.\n")},
	}
}

func testConfig(t *testing.T) SiteConfig {
	t.Helper()
	return SiteConfig{
		Title:       "Notes",
		Description: "Notes about Go",
		URL:         "https://example.com/",
		Author:      AuthorConfig{Name: "Jane", Email: "jane@example.com"},
		Content:     ContentConfig{CleanURLs: true},
		OutputDir:   t.TempDir(),
		Locales: []LocaleConfig{
			{Code: "en-US", Prefix: "/"},
			{Code: "ru-RU", Prefix: "ru", Title: "Заметки"},
		},
		Copyright: CopyrightConfig{Since: 2020},
	}
}

func newTestSite(t *testing.T) *Site {
	t.Helper()
	return New(testConfig(t), WithContentFS(testContent()), WithClock(func() time.Time { return testNow }))
}

func buildTestSite(t *testing.T) (*Site, BuildReport) {
	t.Helper()
	s := newTestSite(t)
	report, err := s.Build(context.Background())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return s, report
}

func readOutput(t *testing.T, s *Site, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(s.Config.OutputDir, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("read %s: %v", rel, err)
	}
	return string(data)
}

func TestBuildReport(t *testing.T) {
	_, report := buildTestSite(t)

	if report.Records != 7 {
		t.Errorf("Records = %d, want 7", report.Records)
	}
	if len(report.Locales) != 2 {
		t.Fatalf("len(Locales) = %d, want 2", len(report.Locales))
	}
	en, ru := report.Locales[0], report.Locales[1]
	if en.Code != "en-US" || en.Posts != 2 || en.Tags != 3 {
		t.Errorf("en report = %+v, want 2 posts and 3 tags", en)
	}
	if ru.Code != "ru-RU" || ru.Posts != 1 || ru.Tags != 1 {
		t.Errorf("ru report = %+v, want 1 post and 1 tag", ru)
	}
	if ru.Feed != "ru/feed.xml" {
		t.Errorf("ru feed = %q, want %q", ru.Feed, "ru/feed.xml")
	}
	if report.Snapshot.Len() != 7 {
		t.Errorf("Snapshot.Len() = %d, want 7", report.Snapshot.Len())
	}
}

func TestBuildWritesFiles(t *testing.T) {
	s, report := buildTestSite(t)

	want := []string{
		"index.html",
		"posts/first.html",
		"posts/second.html",
		"tags/go/index.html",
		"tags/web/index.html",
		"tags/tools/index.html",
		"ru/index.html",
		"ru/posts/privet.html",
		"ru/tags/go/index.html",
		"about.html",
		"posts/nodate.html",
		"404.html",
		"feed.xml",
		"ru/feed.xml",
		"sitemap.xml",
		"robots.txt",
		"assets/style.css",
	}
	files := make(map[string]bool, len(report.Files))
	for _, f := range report.Files {
		files[f] = true
	}
	for _, rel := range want {
		if !files[rel] {
			t.Errorf("report is missing %s", rel)
		}
		if _, err := os.Stat(filepath.Join(s.Config.OutputDir, filepath.FromSlash(rel))); err != nil {
			t.Errorf("stat %s: %v", rel, err)
		}
	}
	if _, err := os.Stat(filepath.Join(s.Config.OutputDir, "posts", "draft.html")); !os.IsNotExist(err) {
		t.Errorf("draft page was written (err = %v)", err)
	}
	if _, err := os.Stat(s.Config.IndexPath); err != nil {
		t.Errorf("index not written: %v", err)
	}
}

func TestBuildPostListOrder(t *testing.T) {
	s, _ := buildTestSite(t)
	home := readOutput(t, s, "index.html")

	second := strings.Index(home, "Second")
	first := strings.Index(home, "First")
	if second < 0 || first < 0 || second > first {
		t.Errorf("home should list Second before First (second=%d first=%d)", second, first)
	}
	if strings.Contains(home, "Привет") {
		t.Error("home lists a post of another locale")
	}
	if !strings.Contains(home, `<html lang="en-US">`) {
		t.Error("home is missing its lang attribute")
	}
	if !strings.Contains(home, "Copyright © 2020-2026 Jane") {
		t.Error("home is missing the copyright line")
	}
}

func TestBuildRussianPages(t *testing.T) {
	s, _ := buildTestSite(t)
	page := readOutput(t, s, "ru/posts/privet.html")

	if !strings.Contains(page, `<html lang="ru-RU">`) {
		t.Error("russian page is missing its lang attribute")
	}
	if !strings.Contains(page, "Привет | Заметки") {
		t.Error("russian page is missing its title")
	}
	if !strings.Contains(page, "2024 г.") || strings.Contains(page, "February") {
		t.Error("russian page date is not localized")
	}
}

func TestBuildTagPage(t *testing.T) {
	s, _ := buildTestSite(t)
	page := readOutput(t, s, "tags/web/index.html")

	if !strings.Contains(page, "First") {
		t.Error("web tag page is missing First")
	}
	if strings.Contains(page, "Second") {
		t.Error("web tag page lists a post without the tag")
	}
}

func TestBuildFailsOnBadContent(t *testing.T) {
	fsys := testContent()
	fsys["posts/broken.md"] = &fstest.MapFile{Data: []byte("---\ntitle: [unclosed\n---\nBody\n")}
	s := New(testConfig(t), WithContentFS(fsys))

	if _, err := s.Build(context.Background()); err == nil {
		t.Fatal("Build should fail on malformed front matter")
	}
}

func TestBuildHonorsCancelledContext(t *testing.T) {
	s := newTestSite(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Build(ctx); err == nil {
		t.Fatal("Build should fail with a cancelled context")
	}
}

func TestOutputFile(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"/", "index.html"},
		{"/ru/", "ru/index.html"},
		{"/posts/first", "posts/first.html"},
		{"/posts/first.html", "posts/first.html"},
		{"/tags/go/", "tags/go/index.html"},
	}
	for _, tt := range tests {
		got := outputFile("out", tt.url)
		want := filepath.Join("out", filepath.FromSlash(tt.want))
		if got != want {
			t.Errorf("outputFile(%q) = %q, want %q", tt.url, got, want)
		}
	}
}

func TestLocaleName(t *testing.T) {
	if got := localeName("not a tag!"); got != "not a tag!" {
		t.Errorf("localeName(invalid) = %q, want input back", got)
	}
	if got := localeName("ru-RU"); got == "" || got == "ru-RU" {
		t.Errorf("localeName(ru-RU) = %q, want the language's own name", got)
	}
}

func TestBuildCustomAssets(t *testing.T) {
	assets := fstest.MapFS{"theme.css": {Data: []byte("body{}")}}
	s := New(testConfig(t), WithContentFS(testContent()), WithAssetsFS(assets))
	if _, err := s.Build(context.Background()); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if got := readOutput(t, s, "assets/theme.css"); got != "body{}" {
		t.Errorf("theme.css = %q, want %q", got, "body{}")
	}
}

func TestBuildTagPagesStayInOutputDir(t *testing.T) {
	fsys := testContent()
	fsys["posts/odd.md"] = &fstest.MapFile{Data: []byte("---\ntitle: Odd\ndate: \"2024-05-01\"\n" +
		"tags: [\"..\", \"a/b\", \"../../escaped\"]\n---\nBody\n")}
	s := New(testConfig(t), WithContentFS(fsys))
	if _, err := s.Build(context.Background()); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	for _, rel := range []string{"tags/2e2e/index.html", "tags/a-b/index.html", "tags/escaped/index.html"} {
		if page := readOutput(t, s, rel); !strings.Contains(page, "Odd") {
			t.Errorf("%s does not list the tagged post", rel)
		}
	}
	if home := readOutput(t, s, "index.html"); !strings.Contains(home, "<h1>All posts</h1>") {
		t.Error("a tag page overwrote the home page")
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(s.Config.OutputDir), "escaped")); !os.IsNotExist(err) {
		t.Errorf("tag page escaped the output directory (err = %v)", err)
	}
}

func TestBuildFoldsTagCase(t *testing.T) {
	fsys := testContent()
	fsys["posts/first.md"] = &fstest.MapFile{Data: []byte("---\ntitle: First\ndate: \"2024-01-10\"\ntags: [Go]\n---\nOne\n")}
	fsys["posts/second.md"] = &fstest.MapFile{Data: []byte("---\ntitle: Second\ndate: \"2024-03-05\"\ntags: [go]\n---\nTwo\n")}
	s := New(testConfig(t), WithContentFS(fsys))
	report, err := s.Build(context.Background())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if got := report.Locales[0].Tags; got != 1 {
		t.Errorf("en tags = %d, want 1", got)
	}
	page := readOutput(t, s, "tags/go/index.html")
	if !strings.Contains(page, "First") || !strings.Contains(page, "Second") {
		t.Error("go tag page should list both spellings")
	}
}

func TestBuildPostIcon(t *testing.T) {
	fsys := testContent()
	fsys["posts/pic/index.md"] = &fstest.MapFile{Data: []byte("---\ntitle: Pictured\ndate: \"2024-06-01\"\n---\nBody\n")}
	fsys["posts/pic/logo.jpg"] = &fstest.MapFile{Data: []byte("JPEG")}
	cfg := testConfig(t)
	cfg.Content.FallbackIcon = "/not_found.jpg"
	s := New(cfg, WithContentFS(fsys))
	report, err := s.Build(context.Background())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if got := readOutput(t, s, "posts/pic/logo.jpg"); got != "JPEG" {
		t.Errorf("logo.jpg = %q, want the source bytes", got)
	}
	found := false
	for _, f := range report.Files {
		found = found || f == "posts/pic/logo.jpg"
	}
	if !found {
		t.Error("report is missing posts/pic/logo.jpg")
	}
	home := readOutput(t, s, "index.html")
	if !strings.Contains(home, `src="/posts/pic/logo.jpg"`) {
		t.Error("home card is missing the post icon")
	}
	if !strings.Contains(home, `src="/not_found.jpg"`) {
		t.Error("posts without a logo should use the fallback icon")
	}
}
