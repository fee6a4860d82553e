package pubsite

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/eringen/pubsite/posts"
)

const (
	nsContent = "http://purl.org/rss/1.0/modules/content/"
	nsDC      = "http://purl.org/dc/elements/1.1/"
	nsAtom    = "http://www.w3.org/2005/Atom"
)

type rssXML struct {
	XMLName      xml.Name   `xml:"rss"`
	Version      string     `xml:"version,attr"`
	XMLNSContent string     `xml:"xmlns:content,attr"`
	XMLNSDC      string     `xml:"xmlns:dc,attr"`
	XMLNSAtom    string     `xml:"xmlns:atom,attr"`
	Channel      rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string      `xml:"title"`
	Link          string      `xml:"link"`
	Description   string      `xml:"description"`
	Language      string      `xml:"language,omitempty"`
	Copyright     string      `xml:"copyright,omitempty"`
	LastBuildDate string      `xml:"lastBuildDate"`
	Generator     string      `xml:"generator"`
	AtomLink      rssAtomLink `xml:"atom:link"`
	Image         *rssImage   `xml:"image,omitempty"`
	Items         []rssItem   `xml:"item"`
}

type rssAtomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssImage struct {
	URL   string `xml:"url"`
	Title string `xml:"title"`
	Link  string `xml:"link"`
}

type rssItem struct {
	Title       string      `xml:"title"`
	Link        string      `xml:"link"`
	GUID        rssGUID     `xml:"guid"`
	Description string      `xml:"description"`
	Content     *rssContent `xml:"content:encoded,omitempty"`
	Author      string      `xml:"author,omitempty"`
	Creator     string      `xml:"dc:creator,omitempty"`
	PubDate     string      `xml:"pubDate"`
	Categories  []string    `xml:"category"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type rssContent struct {
	Value string `xml:",cdata"`
}

// buildRSS renders the RSS 2.0 document of one locale.
func (s *Site) buildRSS(locale LocaleConfig, list []posts.Post) ([]byte, error) {
	cfg := s.Config
	limit := posts.NoLimit
	if locale.Feed.Limit > 0 {
		limit = locale.Feed.Limit
	}
	list = posts.Filter(list, nil, limit)
	items := make([]rssItem, 0, len(list))
	for _, p := range list {
		link := AbsoluteURL(cfg.URL, p.URL)
		item := rssItem{
			Title:       p.Title,
			Link:        link,
			GUID:        rssGUID{IsPermaLink: true, Value: link},
			Description: p.Excerpt,
			Creator:     cfg.Author.Name,
			PubDate:     p.Date.Format(time.RFC1123Z),
			Categories:  p.Tags,
		}
		if item.Description == "" {
			item.Description = p.Description
		}
		if body := feedContent(locale.Feed.ContentSource, p); body != "" {
			item.Content = &rssContent{Value: body}
		}
		if cfg.Author.Email != "" {
			item.Author = fmt.Sprintf("%s (%s)", cfg.Author.Email, cfg.Author.Name)
		}
		items = append(items, item)
	}

	home := AbsoluteURL(cfg.URL, locale.Prefix)
	channel := rssChannel{
		Title:         locale.Title,
		Link:          home,
		Description:   locale.Description,
		Language:      locale.Code,
		Copyright:     cfg.Copyright.CopyrightLine(s.now().Year()),
		LastBuildDate: s.now().UTC().Format(time.RFC1123Z),
		Generator:     "pubsite",
		AtomLink: rssAtomLink{
			Href: locale.Feed.ID,
			Rel:  "self",
			Type: "application/rss+xml",
		},
		Items: items,
	}
	if img := firstNonBlank(locale.Feed.Image, locale.Feed.Favicon); img != "" {
		channel.Image = &rssImage{URL: AbsoluteURL(cfg.URL, img), Title: locale.Title, Link: home}
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(rssXML{
		Version:      "2.0",
		XMLNSContent: nsContent,
		XMLNSDC:      nsDC,
		XMLNSAtom:    nsAtom,
		Channel:      channel,
	}); err != nil {
		return nil, fmt.Errorf("encode feed %s: %w", locale.Code, err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// feedContent picks the item body. Older setups published the front-matter
// description instead of the rendered post, so both are supported.
func feedContent(source string, p posts.Post) string {
	if source == ContentSourceDescription {
		return p.Description
	}
	return p.HTML
}

// writeFeed renders and writes the feed of one locale, returning its path.
func (s *Site) writeFeed(locale LocaleConfig, list []posts.Post) (string, error) {
	data, err := s.buildRSS(locale, list)
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.Config.OutputDir, filepath.FromSlash(locale.Feed.Path))
	if err := writeFile(path, data); err != nil {
		return "", err
	}
	return path, nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func firstNonBlank(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
