// Package scaffold writes a starter site for the pubsite CLI: a config file,
// an English and a Russian post, and an about page per locale.
package scaffold

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"
	"time"
)

// Templates contains all scaffold template files.
// Files use Go text/template syntax and have a .tmpl suffix.
//
//go:embed all:templates
var Templates embed.FS

const root = "templates"

// Data holds the template variables passed to every scaffold template.
type Data struct {
	ProjectName string
	SiteName    string
	URL         string
	Author      string
	Year        int
	Date        string // first post date, 2006-01-02
}

// NewData derives template data from a project name, e.g. "my-blog".
func NewData(name string, now time.Time) Data {
	dirName := path.Base(filepath.ToSlash(name))
	return Data{
		ProjectName: dirName,
		SiteName:    toTitle(dirName),
		URL:         "http://localhost:3000",
		Author:      "Author",
		Year:        now.Year(),
		Date:        now.Format("2006-01-02"),
	}
}

// Generate renders every template into dir, which must not exist yet. It
// returns the created files relative to dir.
func Generate(dir string, data Data) ([]string, error) {
	if _, err := os.Stat(dir); err == nil {
		return nil, fmt.Errorf("directory %q already exists", dir)
	}

	var created []string
	err := fs.WalkDir(Templates, root, func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(name, root), "/")
		outPath := filepath.Join(dir, filepath.FromSlash(strings.TrimSuffix(rel, ".tmpl")))
		if d.IsDir() {
			return os.MkdirAll(outPath, 0o755)
		}

		src, err := Templates.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		tmpl, err := template.New(path.Base(name)).Parse(string(src))
		if err != nil {
			return fmt.Errorf("parse template %s: %w", name, err)
		}
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return err
		}
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create %s: %w", outPath, err)
		}
		defer f.Close()
		if err := tmpl.Execute(f, data); err != nil {
			return fmt.Errorf("execute template %s: %w", name, err)
		}
		created = append(created, strings.TrimSuffix(rel, ".tmpl"))
		return nil
	})
	return created, err
}

// toTitle converts a hyphenated or lowercase name to a title-case string.
// e.g. "my-blog" -> "My Blog", "myblog" -> "Myblog"
func toTitle(s string) string {
	parts := strings.Split(s, "-")
	for i, p := range parts {
		if len(p) > 0 {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}
