// Package content discovers markdown posts on disk and turns them into
// immutable records for the aggregator.
package content

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/eringen/pubsite/markdown"
)

// DefaultPattern matches every markdown file below the content root.
const DefaultPattern = "**/*.md"

// IconFile is the card image looked up beside an index.md post.
const IconFile = "logo.jpg"

const loadWorkers = 8

// Record is one markdown file after front matter parsing and rendering.
type Record struct {
	Path        string // slash-separated, relative to the content root
	URL         string // site-relative URL, always starting with "/"
	Locale      string // locale inferred from the path prefix, empty when none matched
	FrontMatter FrontMatter
	HTML        string
	Excerpt     string // rendered HTML of the excerpt, empty when the post has none
	Icon        string // URL of the IconFile beside an index.md post, empty when there is none
	Modified    time.Time
}

// LocalePrefix maps a locale to the directory its posts live under.
type LocalePrefix struct {
	Code   string
	Prefix string
}

// LoaderConfig configures discovery.
type LoaderConfig struct {
	Patterns         []string // doublestar globs relative to the root, defaults to DefaultPattern
	ExcerptSeparator string
	CleanURLs        bool
	Locales          []LocalePrefix
}

// Loader reads posts from a filesystem.
type Loader struct {
	fs       fs.FS
	cfg      LoaderConfig
	renderer *markdown.Renderer
	log      *zap.Logger
}

// NewLoader creates a Loader reading from fsys.
func NewLoader(fsys fs.FS, cfg LoaderConfig, renderer *markdown.Renderer, log *zap.Logger) *Loader {
	if len(cfg.Patterns) == 0 {
		cfg.Patterns = []string{DefaultPattern}
	}
	if renderer == nil {
		renderer = markdown.NewRenderer()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{fs: fsys, cfg: cfg, renderer: renderer, log: log}
}

// Load discovers and parses every matching file. Any read, parse or render
// failure aborts the whole load.
func (l *Loader) Load(ctx context.Context) (Snapshot, error) {
	paths, err := l.discover()
	if err != nil {
		return Snapshot{}, err
	}
	l.log.Debug("content discovered", zap.Int("files", len(paths)))

	records := make([]Record, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(loadWorkers)
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := l.LoadFile(p)
			if err != nil {
				return err
			}
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return NewSnapshot(records), nil
}

func (l *Loader) discover() ([]string, error) {
	seen := make(map[string]struct{})
	var paths []string
	for _, pattern := range l.cfg.Patterns {
		matches, err := doublestar.Glob(l.fs, pattern)
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			paths = append(paths, m)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// LoadFile reads and renders a single file.
func (l *Loader) LoadFile(name string) (Record, error) {
	data, err := fs.ReadFile(l.fs, name)
	if err != nil {
		return Record{}, fmt.Errorf("read %s: %w", name, err)
	}
	info, err := fs.Stat(l.fs, name)
	if err != nil {
		return Record{}, fmt.Errorf("stat %s: %w", name, err)
	}
	fm, body, err := ParseFrontMatter(data)
	if err != nil {
		return Record{}, fmt.Errorf("%s: %w", name, err)
	}
	html, err := l.renderer.Render(body)
	if err != nil {
		return Record{}, fmt.Errorf("%s: %w", name, err)
	}
	var excerpt string
	if raw, ok := markdown.SplitExcerpt(body, l.cfg.ExcerptSeparator); ok && len(raw) > 0 {
		excerpt, err = l.renderer.Render(raw)
		if err != nil {
			return Record{}, fmt.Errorf("%s excerpt: %w", name, err)
		}
	}
	url := PathToURL(name, l.cfg.CleanURLs)
	return Record{
		Path:        name,
		URL:         url,
		Locale:      l.localeFor(name),
		FrontMatter: fm,
		HTML:        html,
		Excerpt:     excerpt,
		Icon:        l.iconFor(name, url),
		Modified:    info.ModTime(),
	}, nil
}

// iconFor returns the URL of the IconFile sitting in the directory of an
// index.md post.
func (l *Loader) iconFor(name, url string) string {
	if !strings.HasSuffix(url, "/") {
		return ""
	}
	info, err := fs.Stat(l.fs, path.Join(path.Dir(name), IconFile))
	if err != nil || info.IsDir() {
		return ""
	}
	return url + IconFile
}

// localeFor returns the locale whose prefix is the longest match for name.
func (l *Loader) localeFor(name string) string {
	best, bestLen := "", -1
	for _, lp := range l.cfg.Locales {
		prefix := strings.Trim(lp.Prefix, "/")
		if prefix == "" {
			continue
		}
		if (name == prefix || strings.HasPrefix(name, prefix+"/")) && len(prefix) > bestLen {
			best, bestLen = lp.Code, len(prefix)
		}
	}
	return best
}

// PathToURL converts a content-relative file path into a site URL.
// "index.md" files map to their directory.
func PathToURL(name string, clean bool) string {
	name = path.Clean("/" + strings.TrimSuffix(name, path.Ext(name)))
	if path.Base(name) == "index" {
		dir := path.Dir(name)
		if dir == "/" {
			return "/"
		}
		return dir + "/"
	}
	if clean {
		return name
	}
	return name + ".html"
}

// Snapshot is the immutable result of one load.
type Snapshot struct {
	records []Record
	loaded  time.Time
}

// NewSnapshot wraps records, sorted by path.
func NewSnapshot(records []Record) Snapshot {
	cp := slices.Clone(records)
	sort.SliceStable(cp, func(i, j int) bool { return cp[i].Path < cp[j].Path })
	return Snapshot{records: cp, loaded: time.Now()}
}

// Records returns a copy of the loaded records.
func (s Snapshot) Records() []Record {
	return slices.Clone(s.records)
}

// Len reports the number of records.
func (s Snapshot) Len() int { return len(s.records) }

// LoadedAt reports when the snapshot was taken.
func (s Snapshot) LoadedAt() time.Time { return s.loaded }
