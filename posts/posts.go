// Package posts turns loaded content records into the published post list of
// a locale: drafts and undated entries are dropped, tags are normalized,
// dates are parsed and localized, and the list is ordered newest first.
package posts

import (
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/eringen/pubsite/content"
)

// Post is a published post. It is built once per build and never mutated.
type Post struct {
	Title       string
	URL         string
	Lang        string
	DateSource  string
	Date        time.Time
	DisplayDate string
	Description string
	Excerpt     string
	Icon        string // card image URL, empty when the post has none
	Tags        TagSet
	HTML        string
	Path        string
	Modified    time.Time
}

// Query selects and shapes the posts returned by Aggregate.
type Query struct {
	// Locale restricts results to posts in this locale. Empty means DefaultLocale.
	Locale string
	// AllLocales disables locale filtering.
	AllLocales bool
	// FallbackLocale is assigned to posts that name no locale, neither in front
	// matter nor through their directory. Empty means DefaultLocale.
	FallbackLocale string
	// ExcludeURLs lists doublestar patterns of URLs that are never published.
	ExcludeURLs []string
	// DateLayout overrides the locale's display date layout.
	DateLayout string
	// FallbackIcon is the card image of posts without their own.
	FallbackIcon string
}

// Skip records why a record was left out.
type Skip struct {
	Path   string
	Reason string
}

// Skip reasons.
const (
	ReasonDraft    = "draft"
	ReasonIgnored  = "ignored"
	ReasonNoDate   = "missing or malformed date"
	ReasonExcluded = "excluded url"
	ReasonLocale   = "other locale"
)

// Result is the aggregated post list and its tag vocabulary.
type Result struct {
	Posts   []Post
	Tags    TagSet
	Skipped []Skip
}

// Aggregate filters, normalizes and sorts records.
func Aggregate(records []content.Record, q Query) Result {
	want := q.Locale
	if strings.TrimSpace(want) == "" {
		want = DefaultLocale
	}
	fallback := q.FallbackLocale
	if strings.TrimSpace(fallback) == "" {
		fallback = DefaultLocale
	}

	var res Result
	for _, rec := range records {
		fm := rec.FrontMatter
		skip := func(reason string) {
			res.Skipped = append(res.Skipped, Skip{Path: rec.Path, Reason: reason})
		}
		if fm.Draft {
			skip(ReasonDraft)
			continue
		}
		if fm.Ignore {
			skip(ReasonIgnored)
			continue
		}
		if matchesAny(rec.URL, q.ExcludeURLs) {
			skip(ReasonExcluded)
			continue
		}
		date, ok := ParseDate(fm.Date)
		if !ok {
			skip(ReasonNoDate)
			continue
		}
		lang := firstNonEmpty(fm.Lang, rec.Locale, fallback)
		if !q.AllLocales && !SameLocale(lang, want) {
			skip(ReasonLocale)
			continue
		}
		res.Posts = append(res.Posts, Post{
			Title:       strings.TrimSpace(fm.Title),
			URL:         rec.URL,
			Lang:        CanonicalLocale(lang),
			DateSource:  dateSource(fm.Date, date),
			Date:        date,
			DisplayDate: FormatDateLayout(date, lang, q.DateLayout),
			Description: strings.TrimSpace(fm.Description),
			Excerpt:     rec.Excerpt,
			Icon:        firstNonEmpty(rec.Icon, q.FallbackIcon),
			Tags:        NormalizeTags(fm.Tags),
			HTML:        rec.HTML,
			Path:        rec.Path,
			Modified:    rec.Modified,
		})
	}

	sort.SliceStable(res.Posts, func(i, j int) bool {
		return res.Posts[i].Date.After(res.Posts[j].Date)
	})
	res.Tags = Vocabulary(res.Posts)
	return res
}

// Vocabulary returns the union of all post tags in first-seen order.
func Vocabulary(posts []Post) TagSet {
	var all TagSet
	for _, p := range posts {
		all = all.Union(p.Tags)
	}
	return all
}

// NoLimit makes Filter keep every matching post.
const NoLimit = -1

// Filter returns the posts carrying at least one of tags, in order, cut to
// limit entries. No tags means every post. A limit of zero returns nothing;
// a negative limit, such as NoLimit, returns every match.
func Filter(posts []Post, tags []string, limit int) []Post {
	wanted := NewTagSet(tags...)
	var out []Post
	for _, p := range posts {
		if limit >= 0 && len(out) >= limit {
			break
		}
		if len(wanted) > 0 && !hasAny(p.Tags, wanted) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func hasAny(have, wanted TagSet) bool {
	for _, t := range wanted {
		if have.Contains(t) {
			return true
		}
	}
	return false
}

func matchesAny(url string, patterns []string) bool {
	for _, p := range patterns {
		if p == url {
			return true
		}
		if ok, err := doublestar.Match(p, url); err == nil && ok {
			return true
		}
	}
	return false
}

func dateSource(raw any, parsed time.Time) string {
	if s, ok := raw.(string); ok {
		return strings.TrimSpace(s)
	}
	return parsed.Format(time.RFC3339)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
