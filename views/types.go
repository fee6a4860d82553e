package views

import "github.com/eringen/pubsite/content"

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.960 generate

// Site carries the per-locale chrome every page needs: head assets,
// navigation, social links and the footer line. Nothing in the templates is
// hardcoded.
type Site struct {
	Title            string
	Description      string
	URL              string // canonical base URL without trailing slash
	Lang             string // BCP 47 tag of the page language
	Home             string // locale home path, e.g. "/ru/"
	FeedURL          string
	Nav              []Link
	Social           []Link
	Locales          []Link // language switcher
	Stylesheets      []string
	Fonts            []string
	AnalyticsSnippet string
	Copyright        string
	Sidebar          []content.SidebarItem
	Labels           Labels
}

// Link is a navigation, social or locale-switcher entry.
type Link struct {
	Text string
	Link string
	Icon string
}

// Labels are the UI strings of a locale.
type Labels struct {
	AllPosts    string
	TaggedWith  string
	Related     string
	NoPosts     string
	ReadMore    string
	NotFound    string
	BackToHome  string
	Subscribe   string
	PublishedOn string
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	JSONLD      string
}
