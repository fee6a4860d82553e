package pubsite

import (
	"errors"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/pubsite/posts"
	"github.com/eringen/pubsite/views"
)

// APIPost is a post as returned by GET /api/posts and GET /api/post. HTML
// is only filled for a single post.
type APIPost struct {
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Date        string   `json:"date"`
	DisplayDate string   `json:"displayDate"`
	Description string   `json:"description,omitempty"`
	Excerpt     string   `json:"excerpt,omitempty"`
	Icon        string   `json:"icon,omitempty"`
	Tags        []string `json:"tags"`
	HTML        string   `json:"html,omitempty"`
}

// APIPostsResponse is the body of GET /api/posts.
type APIPostsResponse struct {
	Locale string    `json:"locale"`
	Posts  []APIPost `json:"posts"`
	Tags   []string  `json:"tags"`
}

// APITagsResponse is the body of GET /api/tags.
type APITagsResponse struct {
	Locale string   `json:"locale"`
	Tags   []string `json:"tags"`
}

// APILocalesResponse is the body of GET /api/locales.
type APILocalesResponse struct {
	Locales []string `json:"locales"`
}

func apiPost(p posts.Post) APIPost {
	return APIPost{
		Title:       p.Title,
		URL:         p.URL,
		Date:        p.Date.Format("2006-01-02"),
		DisplayDate: p.DisplayDate,
		Description: p.Description,
		Excerpt:     p.Excerpt,
		Icon:        p.Icon,
		Tags:        nonNil(p.Tags),
	}
}

// handleAPIPosts answers ?locale=ru-RU&tag=go&tag=web&limit=5. Repeated or
// comma-separated tags are ORed. Without limit every post is returned.
func (srv *Server) handleAPIPosts(c echo.Context) error {
	loc, err := srv.queryLocale(c)
	if err != nil {
		return err
	}
	limit := posts.NoLimit
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a non-negative integer")
		}
	}
	var tags []string
	for _, v := range c.QueryParams()["tag"] {
		tags = append(tags, strings.Split(v, ",")...)
	}

	ctx := c.Request().Context()
	list, err := srv.Cache.ListPosts(ctx, loc.Code, FilterEmpty(tags), limit)
	if err != nil {
		return err
	}
	vocabulary, err := srv.Cache.ListTags(ctx, loc.Code)
	if err != nil {
		return err
	}
	resp := APIPostsResponse{Locale: loc.Code, Posts: make([]APIPost, 0, len(list)), Tags: nonNil(vocabulary)}
	for _, p := range list {
		resp.Posts = append(resp.Posts, apiPost(p))
	}
	return c.JSON(http.StatusOK, resp)
}

// handleAPIPost answers ?locale=ru-RU&url=/ru/posts/privet with one post and
// its rendered body.
func (srv *Server) handleAPIPost(c echo.Context) error {
	loc, err := srv.queryLocale(c)
	if err != nil {
		return err
	}
	u := c.QueryParam("url")
	if u == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "url is required")
	}
	p, err := srv.Cache.GetPost(c.Request().Context(), loc.Code, u)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "no post at "+u)
	}
	if err != nil {
		return err
	}
	resp := apiPost(p)
	resp.HTML = p.HTML
	return c.JSON(http.StatusOK, resp)
}

// handleAPILocales lists the locales that have posts in the index.
func (srv *Server) handleAPILocales(c echo.Context) error {
	locales, err := srv.store.Locales(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, APILocalesResponse{Locales: nonNil(locales)})
}

func (srv *Server) handleAPITags(c echo.Context) error {
	loc, err := srv.queryLocale(c)
	if err != nil {
		return err
	}
	tags, err := srv.Cache.ListTags(c.Request().Context(), loc.Code)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, APITagsResponse{Locale: loc.Code, Tags: nonNil(tags)})
}

func (srv *Server) queryLocale(c echo.Context) (LocaleConfig, error) {
	code := c.QueryParam("locale")
	if code == "" {
		code = srv.site.Config.DefaultLocale
	}
	for _, l := range srv.site.Config.Locales {
		if posts.SameLocale(l.Code, code) {
			return l, nil
		}
	}
	return LocaleConfig{}, echo.NewHTTPError(http.StatusBadRequest, "unknown locale "+code)
}

// handleTag renders a tag page from the index. The last segment is a tag
// slug; every tag of the vocabulary with that slug is listed. Paths whose
// first segment is not a locale prefix fall through to the static files.
func (srv *Server) handleTag(c echo.Context) error {
	prefix := "/"
	if seg := c.Param("locale"); seg != "" {
		prefix = "/" + seg + "/"
	}
	var loc LocaleConfig
	found := false
	for _, l := range srv.site.Config.Locales {
		if l.Prefix == prefix {
			loc, found = l, true
			break
		}
	}
	if !found {
		return srv.handleStatic(c)
	}
	slug, err := url.PathUnescape(c.Param("tag"))
	if err != nil {
		return echo.ErrNotFound
	}

	ctx := c.Request().Context()
	tags, err := srv.Cache.ListTags(ctx, loc.Code)
	if err != nil {
		return err
	}
	group := tags.BySlug(slug)
	if len(group) == 0 {
		return echo.ErrNotFound
	}
	list, err := srv.Cache.ListPosts(ctx, loc.Code, group, posts.NoLimit)
	if err != nil {
		return err
	}
	site := srv.site.pageSite(loc, srv.snapshotRecords())
	return srv.render(c, http.StatusOK, srv.site.listPage(site, views.TagPath(loc.Prefix, group[0]), list, tags, group[0]))
}

// handleStatic serves the output directory, resolving clean URLs to their
// .html files and directories to index.html.
func (srv *Server) handleStatic(c echo.Context) error {
	urlPath := path.Clean("/" + c.Request().URL.Path)
	if c.Request().URL.Path != "/" && strings.HasSuffix(c.Request().URL.Path, "/") {
		urlPath += "/"
	}
	if hiddenPath(urlPath) {
		return echo.ErrNotFound
	}
	dir := srv.site.Config.OutputDir
	candidates := []string{outputFile(dir, urlPath)}
	if !strings.HasSuffix(urlPath, "/") {
		candidates = append([]string{filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(urlPath, "/")))}, candidates...)
	}
	for _, file := range candidates {
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			return c.File(file)
		}
	}
	return echo.ErrNotFound
}

// hiddenPath reports whether any segment starts with a dot, such as the
// .index directory holding the post database.
func hiddenPath(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}

func (srv *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound && !strings.HasPrefix(c.Request().URL.Path, "/api/") {
		site := srv.site.pageSite(srv.site.defaultLocale(), srv.snapshotRecords())
		if rerr := srv.render(c, http.StatusNotFound,
			views.Layout(site, views.PageMeta{Title: site.Labels.NotFound}, views.NotFound(site))); rerr == nil {
			return
		}
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		srv.log.Error("server error", zap.String("uri", c.Request().RequestURI), zap.Error(err))
	}
	srv.Echo.DefaultHTTPErrorHandler(err, c)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
