package markdown

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/chatmd/internal/dom"
)

// list renders <ul>/<ol>. Item content is converted one level deeper; lines
// after the first are aligned three spaces past the list indent.
func (c *Converter) list(n *html.Node, ctx Context, images *Images) string {
	ordered := n.Data == "ol"
	indent := strings.Repeat("  ", ctx.ListDepth)
	itemCtx := ctx
	itemCtx.ListDepth++

	var b strings.Builder
	for i, li := range dom.Children(n, dom.Tag("li")) {
		marker := "- "
		if ordered {
			marker = strconv.Itoa(i+1) + ". "
		}
		text := strings.TrimSpace(c.children(li, itemCtx, images))
		lines := strings.Split(text, "\n")
		b.WriteString(indent + marker + lines[0] + "\n")
		for _, line := range lines[1:] {
			b.WriteString(indent + "   " + line + "\n")
		}
	}
	b.WriteString("\n")
	return b.String()
}
