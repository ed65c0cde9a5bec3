package markdown

import (
	"bytes"
	"fmt"

	"github.com/adrg/frontmatter"
)

// FrontMatter is the metadata block accepted at the top of a page file. Title
// and Description override the route's translated head metadata for the page's
// locale.
type FrontMatter struct {
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Template    string         `yaml:"template"`
	Draft       bool           `yaml:"draft"`
	Weight      int            `yaml:"weight"`
	Custom      map[string]any `yaml:",inline"`
}

// ParseFrontMatter splits source into its metadata and Markdown body. Files
// without a front matter block yield an empty FrontMatter and the full source.
func ParseFrontMatter(source []byte) (FrontMatter, []byte, error) {
	var meta FrontMatter
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	if meta.Custom == nil {
		meta.Custom = map[string]any{}
	}
	return meta, body, nil
}
