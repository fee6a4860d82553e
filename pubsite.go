// Package pubsite builds a static, multi-locale blog from markdown files and
// serves the result for preview.
//
// A build loads the content tree once into an immutable snapshot, aggregates
// the published posts of every configured locale, and writes HTML pages, tag
// pages, one RSS feed per locale, a sitemap, robots.txt and a SQLite index of
// the posts into the output directory.
package pubsite

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/a-h/templ"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/eringen/pubsite/content"
	"github.com/eringen/pubsite/markdown"
	"github.com/eringen/pubsite/posts"
	"github.com/eringen/pubsite/views"
)

// Site builds one configured site.
type Site struct {
	Config SiteConfig

	log       *zap.Logger
	now       func() time.Time
	renderer  *markdown.Renderer
	contentFS fs.FS
	assetsFS  fs.FS
}

// New creates a Site. Defaults are applied to cfg.
func New(cfg SiteConfig, opts ...Option) *Site {
	cfg.setDefaults()

	s := &Site{
		Config:   cfg,
		log:      zap.NewNop(),
		now:      time.Now,
		renderer: markdown.NewRenderer(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.contentFS == nil {
		s.contentFS = os.DirFS(cfg.Content.Dir)
	}
	if s.assetsFS == nil {
		sub, err := fs.Sub(EmbeddedAssets, "embedded")
		if err != nil {
			panic(err)
		}
		s.assetsFS = sub
	}
	return s
}

// Load reads the content tree into a snapshot.
func (s *Site) Load(ctx context.Context) (content.Snapshot, error) {
	prefixes := make([]content.LocalePrefix, 0, len(s.Config.Locales))
	for _, l := range s.Config.Locales {
		prefixes = append(prefixes, content.LocalePrefix{Code: l.Code, Prefix: l.Prefix})
	}
	loader := content.NewLoader(s.contentFS, content.LoaderConfig{
		Patterns:         s.Config.Content.Patterns,
		ExcerptSeparator: s.Config.Content.ExcerptSeparator,
		CleanURLs:        s.Config.Content.CleanURLs,
		Locales:          prefixes,
	}, s.renderer, s.log)
	snap, err := loader.Load(ctx)
	if err != nil {
		return content.Snapshot{}, fmt.Errorf("pubsite: load content: %w", err)
	}
	s.log.Debug("content loaded",
		zap.Int("records", snap.Len()),
		zap.Time("at", snap.LoadedAt()))
	return snap, nil
}

// Aggregate returns the published posts of one locale.
func (s *Site) Aggregate(snap content.Snapshot, locale LocaleConfig) posts.Result {
	return posts.Aggregate(snap.Records(), posts.Query{
		Locale:         locale.Code,
		FallbackLocale: s.Config.DefaultLocale,
		ExcludeURLs:    s.Config.Content.ExcludeURLs,
		DateLayout:     locale.DateFormat,
		FallbackIcon:   s.Config.Content.FallbackIcon,
	})
}

// LocaleReport summarizes the build of one locale.
type LocaleReport struct {
	Code    string
	Posts   int
	Tags    int
	Skipped int
	Feed    string
}

// BuildReport summarizes a build.
type BuildReport struct {
	Records  int
	Snapshot content.Snapshot
	Locales  []LocaleReport
	Pages    int
	Files    []string // relative to the output directory
	Duration time.Duration
}

// Build writes the whole site into the output directory and refreshes the
// post index. Any failure aborts the build.
func (s *Site) Build(ctx context.Context) (BuildReport, error) {
	start := time.Now()
	var report BuildReport

	snap, err := s.Load(ctx)
	if err != nil {
		return report, err
	}
	records := snap.Records()
	report.Records = len(records)
	report.Snapshot = snap

	if err := os.MkdirAll(s.Config.OutputDir, 0o755); err != nil {
		return report, fmt.Errorf("pubsite: create output dir: %w", err)
	}

	var all []localePosts
	published := make(map[string]struct{})
	for _, loc := range s.Config.Locales {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		res := s.Aggregate(snap, loc)
		skipped := 0
		for _, sk := range res.Skipped {
			if sk.Reason == posts.ReasonLocale {
				continue
			}
			skipped++
			s.log.Debug("post skipped",
				zap.String("locale", loc.Code),
				zap.String("path", sk.Path),
				zap.String("reason", sk.Reason))
		}

		site := s.pageSite(loc, records)
		for _, p := range res.Posts {
			published[p.Path] = struct{}{}
			if err := s.writePost(ctx, &report, site, p, res.Posts); err != nil {
				return report, err
			}
			if err := s.writeIcon(&report, p); err != nil {
				return report, err
			}
		}
		if err := s.writeList(ctx, &report, site, loc.Prefix, res.Posts, res.Tags, ""); err != nil {
			return report, err
		}
		for _, slug := range res.Tags.Slugs() {
			// Tags sharing a slug share one page.
			group := res.Tags.BySlug(slug)
			tagged := posts.Filter(res.Posts, group, posts.NoLimit)
			if err := s.writeList(ctx, &report, site, views.TagPath(loc.Prefix, group[0]), tagged, res.Tags, group[0]); err != nil {
				return report, err
			}
		}
		feed, err := s.writeFeed(loc, res.Posts)
		if err != nil {
			return report, fmt.Errorf("pubsite: feed %s: %w", loc.Code, err)
		}
		report.addFile(s.Config.OutputDir, feed)

		all = append(all, localePosts{Locale: loc, Posts: res.Posts})
		report.Locales = append(report.Locales, LocaleReport{
			Code:    loc.Code,
			Posts:   len(res.Posts),
			Tags:    len(res.Tags),
			Skipped: skipped,
			Feed:    loc.Feed.Path,
		})
		s.log.Info("locale built",
			zap.String("locale", loc.Code),
			zap.Int("posts", len(res.Posts)),
			zap.Int("tags", len(res.Tags)))
	}

	if err := s.writePages(ctx, &report, records, published); err != nil {
		return report, err
	}

	sitemap, err := s.writeSitemap(all)
	if err != nil {
		return report, fmt.Errorf("pubsite: %w", err)
	}
	report.addFile(s.Config.OutputDir, sitemap)
	if !s.Config.Robots.Disabled {
		robots, err := s.writeRobots()
		if err != nil {
			return report, fmt.Errorf("pubsite: %w", err)
		}
		report.addFile(s.Config.OutputDir, robots)
	}
	if err := s.writeAssets(&report); err != nil {
		return report, err
	}
	if err := s.writeIndex(ctx, all); err != nil {
		return report, err
	}

	report.Duration = time.Since(start)
	s.log.Info("build finished",
		zap.Int("records", report.Records),
		zap.Int("pages", report.Pages),
		zap.Int("files", len(report.Files)),
		zap.Duration("took", report.Duration))
	return report, nil
}

func (r *BuildReport) addFile(root, file string) {
	rel, err := filepath.Rel(root, file)
	if err != nil {
		rel = file
	}
	r.Files = append(r.Files, filepath.ToSlash(rel))
}

func (s *Site) writePost(ctx context.Context, report *BuildReport, site views.Site, p posts.Post, all []posts.Post) error {
	meta := views.PageMeta{
		Title:       p.Title,
		Description: firstNonBlank(p.Description, site.Description),
		URL:         AbsoluteURL(s.Config.URL, p.URL),
		OGType:      "article",
		JSONLD:      views.BlogPostingJsonLD(site, p, s.Config.Author.Name),
	}
	related := views.FilterRelatedPosts(p, all)
	return s.renderPage(ctx, report, outputFile(s.Config.OutputDir, p.URL),
		views.Layout(site, meta, views.PostPage(site, p, related)))
}

// writeIcon copies the logo.jpg of a directory post next to its page.
func (s *Site) writeIcon(report *BuildReport, p posts.Post) error {
	if p.Icon == "" || p.Icon != p.URL+content.IconFile {
		return nil
	}
	src := path.Join(path.Dir(p.Path), content.IconFile)
	data, err := fs.ReadFile(s.contentFS, src)
	if err != nil {
		return fmt.Errorf("pubsite: read icon %s: %w", src, err)
	}
	file := outputFile(s.Config.OutputDir, p.Icon)
	if err := writeFile(file, data); err != nil {
		return fmt.Errorf("pubsite: %w", err)
	}
	report.addFile(s.Config.OutputDir, file)
	return nil
}

func (s *Site) writeList(ctx context.Context, report *BuildReport, site views.Site, url string, list []posts.Post, tags posts.TagSet, active string) error {
	return s.renderPage(ctx, report, outputFile(s.Config.OutputDir, url), s.listPage(site, url, list, tags, active))
}

// listPage is a locale home or, with active set, a tag page.
func (s *Site) listPage(site views.Site, url string, list []posts.Post, tags posts.TagSet, active string) templ.Component {
	meta := views.PageMeta{
		Title:       site.Title,
		Description: site.Description,
		URL:         AbsoluteURL(s.Config.URL, url),
		OGType:      "website",
		JSONLD:      views.WebsiteJsonLD(site, s.Config.Author.Name),
	}
	if active != "" {
		meta.Title = site.Labels.TaggedWith + " " + active
	}
	return views.Layout(site, meta, views.PostList(site, list, tags, active))
}

// writePages renders records that are not published posts, such as about
// pages and section indexes. Locale homes are left to the post list.
func (s *Site) writePages(ctx context.Context, report *BuildReport, records []content.Record, published map[string]struct{}) error {
	homes := make(map[string]struct{}, len(s.Config.Locales))
	for _, l := range s.Config.Locales {
		homes[l.Prefix] = struct{}{}
	}
	sites := make(map[string]views.Site, len(s.Config.Locales))
	for _, rec := range records {
		if _, ok := published[rec.Path]; ok {
			continue
		}
		if _, ok := homes[rec.URL]; ok {
			continue
		}
		fm := rec.FrontMatter
		if fm.Draft || fm.Ignore {
			continue
		}
		// Dated records of another locale or excluded URLs are not pages either.
		if _, dated := posts.ParseDate(fm.Date); dated {
			continue
		}
		loc := s.localeOf(firstNonBlank(fm.Lang, rec.Locale))
		site, ok := sites[loc.Code]
		if !ok {
			site = s.pageSite(loc, records)
			sites[loc.Code] = site
		}
		meta := views.PageMeta{
			Title:       firstNonBlank(fm.Title, site.Title),
			Description: firstNonBlank(fm.Description, site.Description),
			URL:         AbsoluteURL(s.Config.URL, rec.URL),
			OGType:      "website",
		}
		if err := s.renderPage(ctx, report, outputFile(s.Config.OutputDir, rec.URL),
			views.Layout(site, meta, views.ContentPage(fm.Title, rec.HTML))); err != nil {
			return err
		}
	}

	site := s.pageSite(s.defaultLocale(), records)
	return s.renderPage(ctx, report, filepath.Join(s.Config.OutputDir, "404.html"),
		views.Layout(site, views.PageMeta{Title: site.Labels.NotFound}, views.NotFound(site)))
}

func (s *Site) renderPage(ctx context.Context, report *BuildReport, file string, page templ.Component) error {
	var buf bytes.Buffer
	if err := page.Render(ctx, &buf); err != nil {
		return fmt.Errorf("pubsite: render %s: %w", file, err)
	}
	if err := writeFile(file, buf.Bytes()); err != nil {
		return fmt.Errorf("pubsite: %w", err)
	}
	report.Pages++
	report.addFile(s.Config.OutputDir, file)
	return nil
}

func (s *Site) writeAssets(report *BuildReport) error {
	return fs.WalkDir(s.assetsFS, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(s.assetsFS, name)
		if err != nil {
			return fmt.Errorf("pubsite: read asset %s: %w", name, err)
		}
		file := filepath.Join(s.Config.OutputDir, "assets", filepath.FromSlash(name))
		if err := writeFile(file, data); err != nil {
			return fmt.Errorf("pubsite: %w", err)
		}
		report.addFile(s.Config.OutputDir, file)
		return nil
	})
}

func (s *Site) writeIndex(ctx context.Context, all []localePosts) error {
	store, err := NewStore(s.Config.IndexPath)
	if err != nil {
		return fmt.Errorf("pubsite: open index: %w", err)
	}
	defer store.Close()
	for _, lp := range all {
		if err := store.ReplaceLocale(ctx, lp.Locale.Code, lp.Posts); err != nil {
			return fmt.Errorf("pubsite: index %s: %w", lp.Locale.Code, err)
		}
	}
	return nil
}

// pageSite assembles the chrome of pages in one locale.
func (s *Site) pageSite(loc LocaleConfig, records []content.Record) views.Site {
	cfg := s.Config
	site := views.Site{
		Title:            loc.Title,
		Description:      loc.Description,
		URL:              cfg.URL,
		Lang:             loc.Code,
		Home:             loc.Prefix,
		FeedURL:          "/" + loc.Feed.Path,
		Nav:              viewLinks(loc.Nav),
		Social:           viewLinks(cfg.Social),
		Stylesheets:      append([]string{"/assets/style.css"}, cfg.Stylesheets...),
		Fonts:            cfg.Fonts,
		AnalyticsSnippet: cfg.AnalyticsSnippet,
		Copyright:        cfg.Copyright.CopyrightLine(s.now().Year()),
		Labels:           views.LabelsFor(loc.Code),
	}
	if len(cfg.Locales) > 1 {
		for _, l := range cfg.Locales {
			site.Locales = append(site.Locales, views.Link{Text: localeName(l.Code), Link: l.Prefix})
		}
	}
	if cfg.Sidebar.Root != "" {
		site.Sidebar = content.BuildSidebar(records, content.SidebarConfig{
			Root:          path.Join(strings.Trim(loc.Prefix, "/"), cfg.Sidebar.Root),
			Exclude:       cfg.Sidebar.Exclude,
			CollapseDepth: cfg.Sidebar.CollapseDepth,
		})
	}
	return site
}

func (s *Site) defaultLocale() LocaleConfig {
	if l, ok := s.Config.Locale(s.Config.DefaultLocale); ok {
		return l
	}
	return s.Config.Locales[0]
}

// localeOf returns the configured locale matching code, or the default one.
func (s *Site) localeOf(code string) LocaleConfig {
	for _, l := range s.Config.Locales {
		if posts.SameLocale(l.Code, code) {
			return l
		}
	}
	return s.defaultLocale()
}

// localeName is the language's own name, e.g. "русский" for ru-RU.
func localeName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	base, _ := tag.Base()
	if name := display.Self.Name(base); name != "" {
		return name
	}
	return code
}

func viewLinks(links []Link) []views.Link {
	out := make([]views.Link, 0, len(links))
	for _, l := range links {
		out = append(out, views.Link{Text: l.Text, Link: l.Link, Icon: l.Icon})
	}
	return out
}
