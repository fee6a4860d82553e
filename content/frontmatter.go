package content

import (
	"bytes"
	"fmt"

	"github.com/adrg/frontmatter"
)

// FrontMatter is the metadata block at the top of a post. Date and Tags stay
// untyped because authors write them in several shapes; the posts package
// normalizes them.
type FrontMatter struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Date        any    `yaml:"date"`
	Lang        string `yaml:"lang"`
	Tags        any    `yaml:"tags"`
	Draft       bool   `yaml:"draft"`
	Ignore      bool   `yaml:"ignore"`
}

// ParseFrontMatter splits source into its front matter and markdown body.
// A file without front matter yields a zero FrontMatter and the whole source.
func ParseFrontMatter(source []byte) (FrontMatter, []byte, error) {
	var fm FrontMatter
	body, err := frontmatter.Parse(bytes.NewReader(source), &fm)
	if err != nil {
		return FrontMatter{}, nil, fmt.Errorf("parse front matter: %w", err)
	}
	return fm, body, nil
}
