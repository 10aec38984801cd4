// Package render turns exported Markdown into an HTML preview.
package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// Renderer converts Markdown to HTML with GitHub Flavored Markdown enabled.
type Renderer struct {
	md goldmark.Markdown
}

func New() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
	}
}

// Render returns the HTML for src. Raw HTML in src is not passed through.
func (r *Renderer) Render(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return buf.Bytes(), nil
}

// Parse returns the document AST of src.
func (r *Renderer) Parse(src []byte) ast.Node {
	return r.md.Parser().Parse(text.NewReader(src))
}

// Count returns how many nodes of kind k appear in the AST of src.
func (r *Renderer) Count(src []byte, k ast.NodeKind) int {
	n := 0
	ast.Walk(r.Parse(src), func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering && node.Kind() == k {
			n++
		}
		return ast.WalkContinue, nil
	})
	return n
}
