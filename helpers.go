package pubsite

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// AbsoluteURL prefixes a site-relative URL with the canonical host. The
// relative path is kept as is, trailing slash included.
func AbsoluteURL(base, rel string) string {
	if strings.HasPrefix(rel, "http://") || strings.HasPrefix(rel, "https://") {
		return rel
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(rel, "/")
}

// FilterEmpty removes empty/whitespace-only strings from a slice.
func FilterEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// outputFile maps a site URL to the file that serves it below dir.
// "/a/" -> a/index.html, "/a/b" -> a/b.html, "/a/b.html" -> a/b.html.
func outputFile(dir, siteURL string) string {
	rel := strings.TrimPrefix(siteURL, "/")
	switch {
	case rel == "" || strings.HasSuffix(rel, "/"):
		rel += "index.html"
	case path.Ext(rel) == "":
		rel += ".html"
	}
	return filepath.Join(dir, filepath.FromSlash(rel))
}
