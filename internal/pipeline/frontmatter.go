package pipeline

import (
	"bytes"
	"fmt"
	"time"

	"github.com/adrg/frontmatter"
	"go.yaml.in/yaml/v3"
)

// FrontMatter is the YAML header optionally prepended to an export.
type FrontMatter struct {
	Title      string    `yaml:"title"`
	ExportedAt time.Time `yaml:"exported_at"`
	Turns      int       `yaml:"turns"`
	Images     int       `yaml:"images"`
}

// WithFrontMatter prepends fm to md as a "---" delimited YAML block.
func WithFrontMatter(md string, fm FrontMatter) (string, error) {
	out, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("marshal front matter: %w", err)
	}
	return "---\n" + string(out) + "---\n\n" + md, nil
}

// SplitFrontMatter separates a leading front matter block from the Markdown
// body. Input without front matter is returned whole with a zero FrontMatter.
func SplitFrontMatter(src []byte) (FrontMatter, []byte, error) {
	var fm FrontMatter
	body, err := frontmatter.Parse(bytes.NewReader(src), &fm)
	if err != nil {
		return FrontMatter{}, nil, fmt.Errorf("parse front matter: %w", err)
	}
	return fm, body, nil
}
