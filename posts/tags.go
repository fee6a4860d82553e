package posts

import (
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"
)

// TagSet is an ordered set of tags: no duplicates, first-seen order kept.
// Tags differing only in case are the same tag; the first spelling wins.
type TagSet []string

// NewTagSet builds a TagSet from vals, trimming whitespace and dropping
// empty values and repeats.
func NewTagSet(vals ...string) TagSet {
	var out TagSet
	seen := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := normalizeTag(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

// NormalizeTags accepts the raw front-matter tags value, which may be
// absent, a single scalar or a list, and returns the canonical TagSet.
func NormalizeTags(raw any) TagSet {
	switch v := raw.(type) {
	case nil:
		return nil
	case string:
		return NewTagSet(v)
	case []string:
		return NewTagSet(v...)
	case []any:
		vals := make([]string, 0, len(v))
		for _, item := range v {
			if item == nil {
				continue
			}
			vals = append(vals, scalarString(item))
		}
		return NewTagSet(vals...)
	default:
		return NewTagSet(scalarString(v))
	}
}

func scalarString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Contains reports whether tag is in the set, ignoring case.
func (s TagSet) Contains(tag string) bool {
	want := normalizeTag(tag)
	for _, t := range s {
		if normalizeTag(t) == want {
			return true
		}
	}
	return false
}

// Union appends the tags of other that are not already present.
func (s TagSet) Union(other TagSet) TagSet {
	out := make([]string, 0, len(s)+len(other))
	out = append(out, s...)
	out = append(out, other...)
	return NewTagSet(out...)
}

func normalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

// TagSlug is the path segment of a tag page. Letters and digits of any
// script are kept lowercased and every other run becomes one dash, so a tag
// can never name a parent directory or a nested path. A tag with no letter
// or digit at all is hex-encoded instead.
func TagSlug(tag string) string {
	t := normalizeTag(tag)
	var b strings.Builder
	dash := false
	for _, r := range t {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	if slug := strings.TrimRight(b.String(), "-"); slug != "" {
		return slug
	}
	return hex.EncodeToString([]byte(t))
}

// BySlug returns the tags of s whose slug is slug, in order.
func (s TagSet) BySlug(slug string) TagSet {
	var out TagSet
	for _, t := range s {
		if TagSlug(t) == slug {
			out = append(out, t)
		}
	}
	return out
}

// Slugs returns the distinct tag slugs of s in first-seen order.
func (s TagSet) Slugs() []string {
	var out []string
	seen := make(map[string]struct{}, len(s))
	for _, t := range s {
		slug := TagSlug(t)
		if _, ok := seen[slug]; ok {
			continue
		}
		seen[slug] = struct{}{}
		out = append(out, slug)
	}
	return out
}
