package views

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/eringen/pubsite/posts"
)

// buildURL joins path segments onto a base URL, ensuring a trailing slash.
func buildURL(base string, pathSegments ...string) string {
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

// TagPath is the unescaped path of a tag page under a locale home. It is
// also the page's location below the output directory.
func TagPath(home, tag string) string {
	return strings.TrimRight(home, "/") + "/tags/" + posts.TagSlug(tag) + "/"
}

// TagURL is TagPath escaped for use in links.
func TagURL(home, tag string) string {
	u := url.URL{Path: TagPath(home, tag)}
	return u.EscapedPath()
}

// FilterRelatedPosts returns posts that share at least one tag with the current post.
func FilterRelatedPosts(current posts.Post, all []posts.Post) []posts.Post {
	var related []posts.Post
	for _, p := range all {
		if p.URL == current.URL {
			continue
		}
		for _, t := range p.Tags {
			if current.Tags.Contains(t) {
				related = append(related, p)
				break
			}
		}
	}
	return related
}

func pageTitle(site Site, meta PageMeta) string {
	if meta.Title != "" && meta.Title != site.Title {
		return meta.Title + " | " + site.Title
	}
	return site.Title
}

func pageDescription(site Site, meta PageMeta) string {
	if meta.Description != "" {
		return meta.Description
	}
	return site.Description
}

func ogType(meta PageMeta) string {
	if meta.OGType == "" {
		return "website"
	}
	return meta.OGType
}

func listHeading(site Site, activeTag string) string {
	if activeTag == "" {
		return site.Labels.AllPosts
	}
	return site.Labels.TaggedWith + " “" + activeTag + "”"
}

// sameTag reports whether t and active land on the same tag page.
func sameTag(t, active string) bool {
	return active != "" && posts.TagSlug(t) == posts.TagSlug(active)
}

// TagClass returns CSS classes for a tag pill, with active variant.
func TagClass(active bool) string {
	if active {
		return "tag tag-active"
	}
	return "tag"
}

// JoinTags formats a tag slice as a comma-separated string.
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

// WebsiteJsonLD produces a Schema.org WebSite JSON-LD block.
func WebsiteJsonLD(site Site, author string) string {
	data := map[string]interface{}{
		"@context":   "https://schema.org",
		"@type":      "WebSite",
		"name":       site.Title,
		"url":        buildURL(site.URL),
		"inLanguage": site.Lang,
	}
	if site.Description != "" {
		data["description"] = site.Description
	}
	if author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  author,
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// BlogPostingJsonLD produces a Schema.org BlogPosting JSON-LD block for a post.
func BlogPostingJsonLD(site Site, post posts.Post, author string) string {
	postURL := strings.TrimRight(site.URL, "/") + post.URL
	data := map[string]interface{}{
		"@context":      "https://schema.org",
		"@type":         "BlogPosting",
		"headline":      post.Title,
		"description":   post.Description,
		"datePublished": post.Date.Format(time.RFC3339),
		"inLanguage":    post.Lang,
		"url":           postURL,
		"publisher": map[string]string{
			"@type": "Organization",
			"name":  site.Title,
		},
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  author,
		}
	}
	if len(post.Tags) > 0 {
		data["keywords"] = JoinTags(post.Tags)
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
