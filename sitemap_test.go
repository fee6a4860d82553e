package pubsite

import (
	"encoding/xml"
	"strings"
	"testing"
)

func TestSitemapListsHomesAndPosts(t *testing.T) {
	s, _ := buildTestSite(t)
	data := readOutput(t, s, "sitemap.xml")

	var set sitemapURLSet
	if err := xml.Unmarshal([]byte(data), &set); err != nil {
		t.Fatalf("unmarshal sitemap: %v", err)
	}
	var locs []string
	for _, u := range set.URLs {
		locs = append(locs, u.Loc)
	}
	want := []string{
		"https://example.com/",
		"https://example.com/posts/second",
		"https://example.com/posts/first",
		"https://example.com/ru/",
		"https://example.com/ru/posts/privet",
	}
	if got := strings.Join(locs, " "); got != strings.Join(want, " ") {
		t.Errorf("sitemap locs = %v, want %v", locs, want)
	}
	if set.URLs[1].LastMod != "2024-03-05" {
		t.Errorf("LastMod = %q, want %q", set.URLs[1].LastMod, "2024-03-05")
	}
	if set.URLs[0].LastMod != "2024-03-05" {
		t.Errorf("home LastMod = %q, want the newest post date", set.URLs[0].LastMod)
	}
}

func TestRobots(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		disallow []string
		want     string
	}{
		{
			name: "default",
			base: "https://example.com/",
			want: "User-agent: *\nAllow: /\n\nSitemap: https://example.com/sitemap.xml\n",
		},
		{
			name:     "disallow",
			base:     "https://example.com",
			disallow: []string{"/drafts/", " ", "/tmp/"},
			want:     "User-agent: *\nAllow: /\nDisallow: /drafts/\nDisallow: /tmp/\n\nSitemap: https://example.com/sitemap.xml\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Robots(tt.base, tt.disallow); got != tt.want {
				t.Errorf("Robots() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRobotsDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Robots.Disabled = true
	s := New(cfg, WithContentFS(testContent()))
	report, err := s.Build(t.Context())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	for _, f := range report.Files {
		if f == "robots.txt" {
			t.Fatal("robots.txt written although disabled")
		}
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base     string
		segments []string
		want     string
	}{
		{"https://example.com", nil, "https://example.com"},
		{"https://example.com", []string{"/"}, "https://example.com/"},
		{"https://example.com", []string{"/ru/"}, "https://example.com/ru/"},
		{"https://example.com/blog", []string{"tags", "go"}, "https://example.com/blog/tags/go/"},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.base, tt.segments...); got != tt.want {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tt.base, tt.segments, got, tt.want)
		}
	}
}

func TestAbsoluteURL(t *testing.T) {
	tests := []struct {
		base, rel, want string
	}{
		{"https://example.com", "/posts/a", "https://example.com/posts/a"},
		{"https://example.com/", "ru/", "https://example.com/ru/"},
		{"https://example.com", "https://cdn.example.com/x.png", "https://cdn.example.com/x.png"},
	}
	for _, tt := range tests {
		if got := AbsoluteURL(tt.base, tt.rel); got != tt.want {
			t.Errorf("AbsoluteURL(%q, %q) = %q, want %q", tt.base, tt.rel, got, tt.want)
		}
	}
}
