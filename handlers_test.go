package pubsite

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"github.com/eringen/pubsite/content"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	site, report := buildTestSite(t)
	store, err := NewStore(site.Config.IndexPath)
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewServer(site, store, report.Snapshot)
}

func serve(srv *Server, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	srv.Echo.ServeHTTP(rec, req)
	return rec
}

func decodePosts(t *testing.T, rec *httptest.ResponseRecorder) APIPostsResponse {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp APIPostsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp
}

func postTitles(resp APIPostsResponse) string {
	var titles []string
	for _, p := range resp.Posts {
		titles = append(titles, p.Title)
	}
	return strings.Join(titles, ",")
}

func TestAPIPostsDefaultLocale(t *testing.T) {
	srv := newTestServer(t)
	resp := decodePosts(t, serve(srv, "/api/posts"))

	if resp.Locale != "en-US" {
		t.Errorf("Locale = %q, want %q", resp.Locale, "en-US")
	}
	if got := postTitles(resp); got != "Second,First" {
		t.Errorf("titles = %q, want %q", got, "Second,First")
	}
	if got := strings.Join(resp.Tags, ","); got != "go,tools,web" {
		t.Errorf("tags = %q, want %q", got, "go,tools,web")
	}
	if resp.Posts[0].Date != "2024-03-05" {
		t.Errorf("Date = %q, want %q", resp.Posts[0].Date, "2024-03-05")
	}
}

func TestAPIPostsFilters(t *testing.T) {
	srv := newTestServer(t)
	tests := []struct {
		target string
		want   string
	}{
		{"/api/posts?tag=web", "First"},
		{"/api/posts?tag=WEB", "First"},
		{"/api/posts?tag=web&tag=tools", "Second,First"},
		{"/api/posts?tag=web,tools", "Second,First"},
		{"/api/posts?tag=rust", ""},
		{"/api/posts?limit=1", "Second"},
		{"/api/posts?limit=0", ""},
		{"/api/posts?locale=ru-RU", "Привет"},
		{"/api/posts?locale=ru-ru&tag=go", "Привет"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			resp := decodePosts(t, serve(srv, tt.target))
			if got := postTitles(resp); got != tt.want {
				t.Errorf("titles = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAPIPostsBadRequests(t *testing.T) {
	srv := newTestServer(t)
	for _, target := range []string{"/api/posts?locale=de-DE", "/api/posts?limit=-1", "/api/posts?limit=x"} {
		if rec := serve(srv, target); rec.Code != http.StatusBadRequest {
			t.Errorf("GET %s status = %d, want 400", target, rec.Code)
		}
	}
}

func TestAPITags(t *testing.T) {
	srv := newTestServer(t)
	rec := serve(srv, "/api/tags?locale=ru-RU")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp APITagsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if strings.Join(resp.Tags, ",") != "go" {
		t.Errorf("tags = %v, want [go]", resp.Tags)
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q, want %q", got, "no-store")
	}
}

func TestTagPageRenderedLive(t *testing.T) {
	srv := newTestServer(t)

	rec := serve(srv, "/ru/tags/go/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, "Привет") || !strings.Contains(body, `lang="ru-RU"`) {
		t.Errorf("ru tag page is missing the russian post:\n%s", body)
	}

	rec = serve(srv, "/tags/web/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, "First") || strings.Contains(body, "Second") {
		t.Error("web tag page lists the wrong posts")
	}
}

func TestTagPageUnknownTag(t *testing.T) {
	srv := newTestServer(t)
	rec := serve(srv, "/tags/rust/")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "not-found") {
		t.Error("404 should render the not-found page")
	}
}

func TestStaticFiles(t *testing.T) {
	srv := newTestServer(t)
	tests := []struct {
		target string
		code   int
		want   string
	}{
		{"/", http.StatusOK, "Second"},
		{"/posts/first", http.StatusOK, "Rest of the post."},
		{"/ru/", http.StatusOK, "Привет"},
		{"/about", http.StatusOK, "I write about Go."},
		{"/feed.xml", http.StatusOK, "<rss"},
		{"/robots.txt", http.StatusOK, "Sitemap: https://example.com/sitemap.xml"},
		{"/assets/style.css", http.StatusOK, ".tag-active"},
		{"/missing", http.StatusNotFound, ""},
		{"/.index/posts.db", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := serve(srv, tt.target)
			if rec.Code != tt.code {
				t.Fatalf("status = %d, want %d", rec.Code, tt.code)
			}
			if tt.want != "" && !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("body is missing %q", tt.want)
			}
		})
	}
}

func TestServerReload(t *testing.T) {
	srv := newTestServer(t)
	srv.Reload(content.NewSnapshot(nil))
	if len(srv.snapshotRecords()) != 0 {
		t.Error("Reload should swap the records")
	}
}

func TestAPIPost(t *testing.T) {
	srv := newTestServer(t)

	rec := serve(srv, "/api/post?url=/posts/first")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var p APIPost
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Title != "First" || !strings.Contains(p.HTML, "Rest of the post.") {
		t.Errorf("post = %+v, want First with its body", p)
	}

	rec = serve(srv, "/api/post?locale=ru-RU&url=/ru/posts/privet")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Привет") {
		t.Errorf("ru post: status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestAPIPostErrors(t *testing.T) {
	srv := newTestServer(t)
	tests := []struct {
		target string
		code   int
	}{
		{"/api/post", http.StatusBadRequest},
		{"/api/post?url=/posts/missing", http.StatusNotFound},
		{"/api/post?url=/ru/posts/privet", http.StatusNotFound},
		{"/api/post?locale=de-DE&url=/posts/first", http.StatusBadRequest},
	}
	for _, tt := range tests {
		if rec := serve(srv, tt.target); rec.Code != tt.code {
			t.Errorf("GET %s status = %d, want %d", tt.target, rec.Code, tt.code)
		}
	}
}

func TestAPILocales(t *testing.T) {
	srv := newTestServer(t)
	rec := serve(srv, "/api/locales")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp APILocalesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := strings.Join(resp.Locales, ","); got != "en-US,ru-RU" {
		t.Errorf("locales = %q, want %q", got, "en-US,ru-RU")
	}
}

func TestTagPageBySlug(t *testing.T) {
	srv := newTestServer(t)
	tests := []struct {
		target string
		code   int
	}{
		{"/tags/go/", http.StatusOK},
		{"/tags/GO/", http.StatusNotFound},
		{"/tags/..%2F..%2Fetc/", http.StatusNotFound},
	}
	for _, tt := range tests {
		rec := serve(srv, tt.target)
		if rec.Code != tt.code {
			t.Errorf("GET %s status = %d, want %d", tt.target, rec.Code, tt.code)
		}
	}
}

func TestRenderFailureWritesNothing(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/broken", nil)
	rec := httptest.NewRecorder()
	c := srv.Echo.NewContext(req, rec)

	failing := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		io.WriteString(w, "<p>partial")
		return errors.New("boom")
	})
	if err := srv.render(c, http.StatusOK, failing); err == nil {
		t.Fatal("render should return the component error")
	}
	if c.Response().Committed || rec.Body.Len() != 0 {
		t.Errorf("failed render wrote %q", rec.Body.String())
	}
}
