package pubsite

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/eringen/pubsite/posts"
)

func feedPosts() []posts.Post {
	return []posts.Post{
		{
			Title:       "Second",
			URL:         "/posts/second",
			Date:        time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
			Description: "The second one",
			Excerpt:     "<p>Short</p>",
			HTML:        "<p>Full <b>body</b></p>",
			Tags:        posts.NewTagSet("go", "tools"),
		},
		{
			Title:       "First",
			URL:         "/posts/first",
			Date:        time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
			Description: "The first one",
			HTML:        "<p>First body</p>",
			Tags:        posts.NewTagSet("go"),
		},
	}
}

func parseFeed(t *testing.T, data []byte) *gofeed.Feed {
	t.Helper()
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("parse feed: %v\n%s", err, data)
	}
	return feed
}

func TestBuildRSSChannel(t *testing.T) {
	s := newTestSite(t)
	loc, _ := s.Config.Locale("ru-RU")

	data, err := s.buildRSS(loc, feedPosts())
	if err != nil {
		t.Fatalf("buildRSS failed: %v", err)
	}
	feed := parseFeed(t, data)

	if feed.FeedType != "rss" || feed.FeedVersion != "2.0" {
		t.Errorf("feed type = %s %s, want rss 2.0", feed.FeedType, feed.FeedVersion)
	}
	if feed.Title != "Заметки" {
		t.Errorf("Title = %q, want %q", feed.Title, "Заметки")
	}
	if feed.Link != "https://example.com/ru/" {
		t.Errorf("Link = %q, want %q", feed.Link, "https://example.com/ru/")
	}
	if feed.Language != "ru-RU" {
		t.Errorf("Language = %q, want %q", feed.Language, "ru-RU")
	}
	if feed.Copyright != "Copyright © 2020-2026 Jane" {
		t.Errorf("Copyright = %q", feed.Copyright)
	}
	if !bytes.Contains(data, []byte(`<atom:link href="https://example.com/ru/feed.xml" rel="self"`)) {
		t.Errorf("feed is missing its self link:\n%s", data)
	}
}

func TestBuildRSSItems(t *testing.T) {
	s := newTestSite(t)
	loc, _ := s.Config.Locale("en-US")

	data, err := s.buildRSS(loc, feedPosts())
	if err != nil {
		t.Fatalf("buildRSS failed: %v", err)
	}
	feed := parseFeed(t, data)
	if len(feed.Items) != 2 {
		t.Fatalf("len(Items) = %d, want 2", len(feed.Items))
	}

	item := feed.Items[0]
	if item.Title != "Second" {
		t.Errorf("Title = %q, want %q", item.Title, "Second")
	}
	if item.Link != "https://example.com/posts/second" {
		t.Errorf("Link = %q, want %q", item.Link, "https://example.com/posts/second")
	}
	if item.GUID != item.Link {
		t.Errorf("GUID = %q, want the link", item.GUID)
	}
	if item.Description != "<p>Short</p>" {
		t.Errorf("Description = %q, want the excerpt", item.Description)
	}
	if item.Content != "<p>Full <b>body</b></p>" {
		t.Errorf("Content = %q, want the rendered HTML", item.Content)
	}
	if item.PublishedParsed == nil || !item.PublishedParsed.Equal(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("PublishedParsed = %v, want 2024-03-05", item.PublishedParsed)
	}
	if strings.Join(item.Categories, ",") != "go,tools" {
		t.Errorf("Categories = %v, want [go tools]", item.Categories)
	}
	if len(item.Authors) == 0 || item.Authors[0].Name != "Jane" {
		t.Errorf("Authors = %+v, want Jane", item.Authors)
	}

	// No excerpt falls back to the description.
	if feed.Items[1].Description != "The first one" {
		t.Errorf("Description = %q, want %q", feed.Items[1].Description, "The first one")
	}
}

func TestBuildRSSDescriptionContentSource(t *testing.T) {
	s := newTestSite(t)
	loc, _ := s.Config.Locale("en-US")
	loc.Feed.ContentSource = ContentSourceDescription

	data, err := s.buildRSS(loc, feedPosts())
	if err != nil {
		t.Fatalf("buildRSS failed: %v", err)
	}
	feed := parseFeed(t, data)
	if feed.Items[0].Content != "The second one" {
		t.Errorf("Content = %q, want the front-matter description", feed.Items[0].Content)
	}
}

func TestBuildRSSLimit(t *testing.T) {
	s := newTestSite(t)
	loc, _ := s.Config.Locale("en-US")
	loc.Feed.Limit = 1

	data, err := s.buildRSS(loc, feedPosts())
	if err != nil {
		t.Fatalf("buildRSS failed: %v", err)
	}
	feed := parseFeed(t, data)
	if len(feed.Items) != 1 || feed.Items[0].Title != "Second" {
		t.Errorf("Items = %d, want only the newest post", len(feed.Items))
	}
}

func TestBuildRSSEmpty(t *testing.T) {
	s := newTestSite(t)
	loc, _ := s.Config.Locale("en-US")

	data, err := s.buildRSS(loc, nil)
	if err != nil {
		t.Fatalf("buildRSS failed: %v", err)
	}
	if feed := parseFeed(t, data); len(feed.Items) != 0 {
		t.Errorf("len(Items) = %d, want 0", len(feed.Items))
	}
}

func TestBuildRSSImageFallsBackToFavicon(t *testing.T) {
	s := newTestSite(t)
	loc, _ := s.Config.Locale("en-US")
	loc.Feed.Favicon = "/favicon.png"

	data, err := s.buildRSS(loc, nil)
	if err != nil {
		t.Fatalf("buildRSS failed: %v", err)
	}
	feed := parseFeed(t, data)
	if feed.Image == nil || feed.Image.URL != "https://example.com/favicon.png" {
		t.Errorf("Image = %+v, want the absolute favicon URL", feed.Image)
	}
}

func TestFeedWrittenByBuild(t *testing.T) {
	s, _ := buildTestSite(t)
	feed := parseFeed(t, []byte(readOutput(t, s, "feed.xml")))

	var titles []string
	for _, item := range feed.Items {
		titles = append(titles, item.Title)
	}
	if got := strings.Join(titles, ","); got != "Second,First" {
		t.Errorf("item titles = %q, want %q", got, "Second,First")
	}
	if strings.TrimSpace(feed.Items[1].Description) != "<p>Intro text.</p>" {
		t.Errorf("Description = %q, want the rendered excerpt", feed.Items[1].Description)
	}
}
