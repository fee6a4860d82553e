package pubsite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mmcdole/gofeed"
)

// FeedCheck is the result of validating one written feed.
type FeedCheck struct {
	Locale   string
	Path     string
	Title    string
	Items    int
	Problems []string
}

// OK reports whether the feed passed every check.
func (fc FeedCheck) OK() bool { return len(fc.Problems) == 0 }

// CheckFeeds parses the feed of every locale back from the output directory
// and reports items that readers would reject or misorder. A missing or
// unparseable feed is an error.
func (s *Site) CheckFeeds(ctx context.Context) ([]FeedCheck, error) {
	parser := gofeed.NewParser()
	checks := make([]FeedCheck, 0, len(s.Config.Locales))
	for _, loc := range s.Config.Locales {
		if err := ctx.Err(); err != nil {
			return checks, err
		}
		path := filepath.Join(s.Config.OutputDir, filepath.FromSlash(loc.Feed.Path))
		f, err := os.Open(path)
		if err != nil {
			return checks, fmt.Errorf("pubsite: open feed %s: %w", loc.Code, err)
		}
		feed, err := parser.Parse(f)
		f.Close()
		if err != nil {
			return checks, fmt.Errorf("pubsite: parse feed %s: %w", path, err)
		}
		checks = append(checks, s.checkFeed(loc, path, feed))
	}
	return checks, nil
}

func (s *Site) checkFeed(loc LocaleConfig, path string, feed *gofeed.Feed) FeedCheck {
	fc := FeedCheck{Locale: loc.Code, Path: path, Title: feed.Title, Items: len(feed.Items)}
	problemf := func(format string, args ...any) {
		fc.Problems = append(fc.Problems, fmt.Sprintf(format, args...))
	}
	if feed.FeedType != "rss" || feed.FeedVersion != "2.0" {
		problemf("feed type %s %s, want rss 2.0", feed.FeedType, feed.FeedVersion)
	}
	if feed.Language != "" && !strings.EqualFold(feed.Language, loc.Code) {
		problemf("language %q, want %q", feed.Language, loc.Code)
	}
	seen := make(map[string]struct{}, len(feed.Items))
	for i, item := range feed.Items {
		if item.Title == "" {
			problemf("item %d has no title", i)
		}
		if !strings.HasPrefix(item.Link, s.Config.URL+"/") {
			problemf("item %q link %q is not under %s", item.Title, item.Link, s.Config.URL)
		}
		if _, dup := seen[item.Link]; dup {
			problemf("item %q duplicates link %q", item.Title, item.Link)
		}
		seen[item.Link] = struct{}{}
		if item.PublishedParsed == nil {
			problemf("item %q has no parseable pubDate", item.Title)
			continue
		}
		if i > 0 {
			prev := feed.Items[i-1].PublishedParsed
			if prev != nil && item.PublishedParsed.After(*prev) {
				problemf("item %q is newer than the item before it", item.Title)
			}
		}
	}
	return fc
}
