// Package markdown renders post bodies and excerpts to HTML with goldmark.
package markdown

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// DefaultExcerptSeparator splits the excerpt from the rest of a post body.
const DefaultExcerptSeparator = "---"

// Renderer converts markdown to HTML. It holds no per-call state and is safe
// for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer returns a Renderer with GFM tables, strikethrough, task lists,
// autolinks and heading anchors enabled. Raw HTML in posts is passed through.
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Footnote),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

// Render returns the HTML for src.
func (r *Renderer) Render(src []byte) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("markdown render: %w", err)
	}
	return buf.String(), nil
}

// SplitExcerpt returns the part of body before the first line equal to sep.
// ok is false when the separator does not occur.
func SplitExcerpt(body []byte, sep string) (excerpt []byte, ok bool) {
	if sep == "" {
		sep = DefaultExcerptSeparator
	}
	lines := bytes.SplitAfter(body, []byte("\n"))
	var out bytes.Buffer
	inFence := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(string(line))
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
		}
		if !inFence && trimmed == sep {
			return bytes.TrimSpace(out.Bytes()), true
		}
		out.Write(line)
	}
	return nil, false
}

// Markdown returns a templ.Component that renders content as HTML.
func (r *Renderer) Markdown(content string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		out, err := r.Render([]byte(content))
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	})
}
