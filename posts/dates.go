package posts

import (
	"strings"
	"time"

	"github.com/goodsign/monday"
	"golang.org/x/text/language"
)

// DefaultLocale is used when neither the query nor the post names a locale.
const DefaultLocale = "en-US"

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02",
}

// ParseDate interprets a front-matter date. YAML decoders hand over either a
// string or a time.Time. Date-only values are taken as UTC midnight.
func ParseDate(raw any) (time.Time, bool) {
	switch v := raw.(type) {
	case time.Time:
		return v, !v.IsZero()
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

type dateStyle struct {
	tag    language.Tag
	layout string
	locale monday.Locale
}

// The first entry is the fallback for unsupported locales.
var dateStyles = []dateStyle{
	{language.AmericanEnglish, "January 2, 2006", monday.LocaleEnUS},
	{language.BritishEnglish, "2 January 2006", monday.LocaleEnGB},
	{language.Russian, "2 January 2006 г.", monday.LocaleRuRU},
	{language.German, "2. January 2006", monday.LocaleDeDE},
	{language.French, "2 January 2006", monday.LocaleFrFR},
}

var dateMatcher = func() language.Matcher {
	tags := make([]language.Tag, len(dateStyles))
	for i, s := range dateStyles {
		tags[i] = s.tag
	}
	return language.NewMatcher(tags)
}()

func styleFor(locale string) dateStyle {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		return dateStyles[0]
	}
	_, idx, conf := dateMatcher.Match(tag)
	if conf == language.No {
		return dateStyles[0]
	}
	return dateStyles[idx]
}

// FormatDate renders t as a long, human-readable date for locale, with month
// names in that locale's language.
func FormatDate(t time.Time, locale string) string {
	return FormatDateLayout(t, locale, "")
}

// FormatDateLayout is FormatDate with a custom Go layout. An empty layout
// selects the locale's default.
func FormatDateLayout(t time.Time, locale, layout string) string {
	style := styleFor(locale)
	if layout == "" {
		layout = style.layout
	}
	return monday.Format(t, layout, style.locale)
}

// CanonicalLocale normalizes a BCP 47 tag ("en-us" -> "en-US"). Unparseable
// input is returned trimmed.
func CanonicalLocale(locale string) string {
	locale = strings.TrimSpace(locale)
	tag, err := language.Parse(locale)
	if err != nil {
		return locale
	}
	return tag.String()
}

// SameLocale reports whether a and b name the same locale.
func SameLocale(a, b string) bool {
	return strings.EqualFold(CanonicalLocale(a), CanonicalLocale(b))
}
