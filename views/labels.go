package views

import "strings"

var labelsByLanguage = map[string]Labels{
	"en": {
		AllPosts:    "All posts",
		TaggedWith:  "Tagged with",
		Related:     "Related posts",
		NoPosts:     "No posts yet.",
		ReadMore:    "Read more",
		NotFound:    "Page not found",
		BackToHome:  "Back to home",
		Subscribe:   "RSS",
		PublishedOn: "Published",
	},
	"ru": {
		AllPosts:    "Все статьи",
		TaggedWith:  "Статьи с тегом",
		Related:     "Похожие статьи",
		NoPosts:     "Статей пока нет.",
		ReadMore:    "Читать далее",
		NotFound:    "Страница не найдена",
		BackToHome:  "На главную",
		Subscribe:   "RSS",
		PublishedOn: "Опубликовано",
	},
}

// LabelsFor returns the UI strings for a locale, falling back to English.
func LabelsFor(locale string) Labels {
	lang := strings.ToLower(strings.TrimSpace(locale))
	if i := strings.IndexAny(lang, "-_"); i >= 0 {
		lang = lang[:i]
	}
	if l, ok := labelsByLanguage[lang]; ok {
		return l
	}
	return labelsByLanguage["en"]
}
