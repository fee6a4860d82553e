package pubsite

import (
	"bytes"
	"fmt"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// render writes a page built on request from the post index. The page is
// rendered into memory first so a template failure becomes an error response
// instead of a truncated page.
func (srv *Server) render(c echo.Context, code int, page templ.Component) error {
	var buf bytes.Buffer
	if err := page.Render(c.Request().Context(), &buf); err != nil {
		srv.log.Error("render failed",
			zap.String("uri", c.Request().RequestURI),
			zap.Int("status", code),
			zap.Error(err))
		return fmt.Errorf("render %s: %w", c.Request().URL.Path, err)
	}
	return c.HTMLBlob(code, buf.Bytes())
}
