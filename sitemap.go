package pubsite

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/eringen/pubsite/posts"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// localePosts is the published list of one locale.
type localePosts struct {
	Locale LocaleConfig
	Posts  []posts.Post
}

// buildSitemap lists every locale home followed by its published posts.
func (s *Site) buildSitemap(all []localePosts) ([]byte, error) {
	base := s.Config.URL
	var urls []sitemapURL
	for _, lp := range all {
		home := sitemapURL{Loc: BuildURL(base, lp.Locale.Prefix)}
		if len(lp.Posts) > 0 {
			home.LastMod = lp.Posts[0].Date.Format("2006-01-02")
		}
		urls = append(urls, home)
		for _, p := range lp.Posts {
			urls = append(urls, sitemapURL{
				Loc:     AbsoluteURL(base, p.URL),
				LastMod: p.Date.Format("2006-01-02"),
			})
		}
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}); err != nil {
		return nil, fmt.Errorf("encode sitemap: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *Site) writeSitemap(all []localePosts) (string, error) {
	data, err := s.buildSitemap(all)
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.Config.OutputDir, "sitemap.xml")
	return path, writeFile(path, data)
}

// Robots renders robots.txt: everything is allowed except the configured
// paths, and the sitemap is referenced by its absolute URL.
func Robots(baseURL string, disallow []string) string {
	var b strings.Builder
	b.WriteString("User-agent: *\nAllow: /\n")
	for _, d := range FilterEmpty(disallow) {
		fmt.Fprintf(&b, "Disallow: %s\n", d)
	}
	fmt.Fprintf(&b, "\nSitemap: %s/sitemap.xml\n", strings.TrimRight(baseURL, "/"))
	return b.String()
}

func (s *Site) writeRobots() (string, error) {
	path := filepath.Join(s.Config.OutputDir, "robots.txt")
	return path, writeFile(path, []byte(Robots(s.Config.URL, s.Config.Robots.Disallow)))
}
