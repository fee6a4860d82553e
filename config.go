package pubsite

import (
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/eringen/pubsite/logger"
)

// Feed content sources.
const (
	ContentSourceHTML        = "html"
	ContentSourceDescription = "description"
)

// SiteConfig holds all configuration for a pubsite site.
type SiteConfig struct {
	Title       string `mapstructure:"title"`       // Site name (default "Blog")
	Description string `mapstructure:"description"` // Fallback feed and meta description
	URL         string `mapstructure:"url"`         // Canonical URL (default "http://localhost:3000")

	Author  AuthorConfig  `mapstructure:"author"`
	Content ContentConfig `mapstructure:"content"`

	OutputDir     string         `mapstructure:"output_dir"`     // default "dist"
	DefaultLocale string         `mapstructure:"default_locale"` // default "en-US"
	Locales       []LocaleConfig `mapstructure:"locales"`

	Sidebar   SidebarConfig   `mapstructure:"sidebar"`
	Social    []Link          `mapstructure:"social"`
	Copyright CopyrightConfig `mapstructure:"copyright"`
	Robots    RobotsConfig    `mapstructure:"robots"`

	AnalyticsSnippet string   `mapstructure:"analytics_snippet"` // raw HTML injected into <head>
	Stylesheets      []string `mapstructure:"stylesheets"`
	Fonts            []string `mapstructure:"fonts"`

	Server    ServerConfig   `mapstructure:"server"`
	IndexPath string         `mapstructure:"index_path"` // SQLite post index (default "<output_dir>/.index/posts.db")
	Log       logger.Options `mapstructure:"log"`
}

// AuthorConfig is the single author credited on every feed item.
type AuthorConfig struct {
	Name  string `mapstructure:"name"`
	Email string `mapstructure:"email"`
	Link  string `mapstructure:"link"`
}

// ContentConfig controls content discovery.
type ContentConfig struct {
	Dir              string   `mapstructure:"dir"`      // default "content"
	Patterns         []string `mapstructure:"patterns"` // default ["**/*.md"]
	ExcludeURLs      []string `mapstructure:"exclude_urls"`
	ExcerptSeparator string   `mapstructure:"excerpt_separator"` // default "---"
	CleanURLs        bool     `mapstructure:"clean_urls"`
	FallbackIcon     string   `mapstructure:"fallback_icon"` // card image of posts without a logo.jpg, e.g. "/not_found.jpg"
}

// LocaleConfig describes one site language.
type LocaleConfig struct {
	Code        string     `mapstructure:"code"`   // BCP 47, e.g. "ru-RU"
	Prefix      string     `mapstructure:"prefix"` // URL and content prefix, e.g. "/ru/"
	Title       string     `mapstructure:"title"`
	Description string     `mapstructure:"description"`
	DateFormat  string     `mapstructure:"date_format"` // Go layout, empty for the locale default
	Nav         []Link     `mapstructure:"nav"`
	Feed        FeedConfig `mapstructure:"feed"`
}

// FeedConfig is the per-locale RSS channel configuration.
type FeedConfig struct {
	Path          string `mapstructure:"path"` // relative to output_dir, default "<prefix>feed.xml"
	ID            string `mapstructure:"id"`   // feed's own URL, written as atom:link rel="self"
	Image         string `mapstructure:"image"`
	Favicon       string `mapstructure:"favicon"`
	ContentSource string `mapstructure:"content_source"` // "html" (default) or "description"
	Limit         int    `mapstructure:"limit"`          // 0 keeps every post
}

// SidebarConfig mirrors content.SidebarConfig.
type SidebarConfig struct {
	Root          string   `mapstructure:"root"`
	Exclude       []string `mapstructure:"exclude"`
	CollapseDepth int      `mapstructure:"collapse_depth"`
}

// Link is a navigation or social entry.
type Link struct {
	Text string `mapstructure:"text"`
	Link string `mapstructure:"link"`
	Icon string `mapstructure:"icon"`
}

// CopyrightConfig produces the footer line.
type CopyrightConfig struct {
	Holder string `mapstructure:"holder"`
	Since  int    `mapstructure:"since"`
}

// RobotsConfig controls robots.txt generation.
type RobotsConfig struct {
	Disabled bool     `mapstructure:"disabled"`
	Disallow []string `mapstructure:"disallow"`
}

// ServerConfig configures the preview server.
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`           // default ":3000"
	PostCacheTTL time.Duration `mapstructure:"post_cache_ttl"` // default 5m
}

func (c *SiteConfig) setDefaults() {
	if c.Title == "" {
		c.Title = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimRight(c.URL, "/")
	if c.Content.Dir == "" {
		c.Content.Dir = "content"
	}
	if c.Content.ExcerptSeparator == "" {
		c.Content.ExcerptSeparator = "---"
	}
	if c.OutputDir == "" {
		c.OutputDir = "dist"
	}
	if c.DefaultLocale == "" {
		c.DefaultLocale = "en-US"
	}
	if len(c.Locales) == 0 {
		c.Locales = []LocaleConfig{{Code: c.DefaultLocale, Prefix: "/"}}
	}
	for i := range c.Locales {
		l := &c.Locales[i]
		if l.Prefix == "" {
			l.Prefix = "/"
		}
		l.Prefix = "/" + strings.Trim(l.Prefix, "/") + "/"
		if l.Prefix == "//" {
			l.Prefix = "/"
		}
		if l.Title == "" {
			l.Title = c.Title
		}
		if l.Description == "" {
			l.Description = c.Description
		}
		if l.Feed.Path == "" {
			l.Feed.Path = strings.TrimPrefix(l.Prefix, "/") + "feed.xml"
		}
		if l.Feed.ID == "" {
			l.Feed.ID = c.URL + "/" + l.Feed.Path
		}
		if l.Feed.ContentSource == "" {
			l.Feed.ContentSource = ContentSourceHTML
		}
	}
	if c.Copyright.Holder == "" {
		c.Copyright.Holder = c.Author.Name
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":3000"
	}
	if c.Server.PostCacheTTL == 0 {
		c.Server.PostCacheTTL = 5 * time.Minute
	}
	if c.IndexPath == "" {
		c.IndexPath = c.OutputDir + "/.index/posts.db"
	}
}

// Locale returns the configuration for code.
func (c SiteConfig) Locale(code string) (LocaleConfig, bool) {
	for _, l := range c.Locales {
		if strings.EqualFold(l.Code, code) {
			return l, true
		}
	}
	return LocaleConfig{}, false
}

// CopyrightLine renders the footer copyright for the given year.
func (c CopyrightConfig) CopyrightLine(year int) string {
	span := fmt.Sprintf("%d", year)
	if c.Since > 0 && c.Since < year {
		span = fmt.Sprintf("%d-%d", c.Since, year)
	}
	if c.Holder == "" {
		return "Copyright © " + span
	}
	return "Copyright © " + span + " " + c.Holder
}

// LoadConfig reads a YAML config file. Every key can be overridden through a
// PUBSITE_ environment variable, e.g. PUBSITE_URL or PUBSITE_SERVER_ADDR.
func LoadConfig(path string) (SiteConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("PUBSITE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("title", "Blog")
	v.SetDefault("url", "http://localhost:3000")
	v.SetDefault("output_dir", "dist")
	v.SetDefault("default_locale", "en-US")
	v.SetDefault("content.dir", "content")
	v.SetDefault("content.patterns", []string{"**/*.md"})
	v.SetDefault("content.excerpt_separator", "---")
	v.SetDefault("content.clean_urls", true)
	v.SetDefault("server.addr", ":3000")
	v.SetDefault("server.post_cache_ttl", "5m")
	v.SetDefault("log.mode", "release")

	if err := v.ReadInConfig(); err != nil {
		return SiteConfig{}, fmt.Errorf("pubsite: read config %s: %w", path, err)
	}
	var cfg SiteConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("pubsite: decode config: %w", err)
	}
	cfg.setDefaults()
	return cfg, nil
}

// Option configures additional Site behavior.
type Option func(*Site)

// WithLogger sets the logger (default: no-op).
func WithLogger(log *zap.Logger) Option {
	return func(s *Site) {
		s.log = log
	}
}

// WithClock overrides time.Now, used for lastBuildDate and the copyright year.
func WithClock(now func() time.Time) Option {
	return func(s *Site) {
		s.now = now
	}
}

// WithContentFS reads content from fsys instead of os.DirFS(content.dir).
func WithContentFS(fsys fs.FS) Option {
	return func(s *Site) {
		s.contentFS = fsys
	}
}

// WithAssetsFS replaces the embedded stylesheet directory.
func WithAssetsFS(fsys fs.FS) Option {
	return func(s *Site) {
		s.assetsFS = fsys
	}
}
