package pubsite

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/pubsite/content"
)

const shutdownTimeout = 10 * time.Second

// Server previews a built site: it serves the output directory and answers
// post queries from the index written by the last build.
type Server struct {
	Echo  *echo.Echo
	Cache *PostCache

	site    *Site
	store   *Store
	log     *zap.Logger
	mu      sync.RWMutex
	records []content.Record
}

// NewServer creates a preview server over store. snap feeds the sidebar of
// pages rendered on request.
func NewServer(site *Site, store *Store, snap content.Snapshot) *Server {
	srv := &Server{
		Echo:    echo.New(),
		Cache:   NewPostCache(store, site.Config.Server.PostCacheTTL),
		site:    site,
		store:   store,
		log:     site.log,
		records: snap.Records(),
	}
	srv.Echo.HideBanner = true
	srv.Echo.HidePort = true
	srv.setupMiddleware()
	srv.setupRoutes()
	return srv
}

func (srv *Server) setupRoutes() {
	e := srv.Echo

	e.GET("/api/posts", srv.handleAPIPosts)
	e.GET("/api/post", srv.handleAPIPost)
	e.GET("/api/tags", srv.handleAPITags)
	e.GET("/api/locales", srv.handleAPILocales)
	e.GET("/tags/:tag/", srv.handleTag)
	e.GET("/:locale/tags/:tag/", srv.handleTag)
	e.GET("/*", srv.handleStatic)
}

// Reload swaps in the result of a rebuild.
func (srv *Server) Reload(snap content.Snapshot) {
	srv.mu.Lock()
	srv.records = snap.Records()
	srv.mu.Unlock()
	srv.Cache.Invalidate()
}

func (srv *Server) snapshotRecords() []content.Record {
	srv.mu.RLock()
	defer srv.mu.RUnlock()
	return srv.records
}

// Start listens on the configured address until ctx is cancelled, then shuts
// the server down gracefully.
func (srv *Server) Start(ctx context.Context) error {
	addr := srv.site.Config.Server.Addr
	errCh := make(chan error, 1)
	go func() {
		srv.log.Info("preview server started", zap.String("addr", addr))
		if err := srv.Echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	srv.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
