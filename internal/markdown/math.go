package markdown

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/chatmd/internal/dom"
)

// texExtractors recover the TeX source of a rendered math widget,
// tried in order. The rendered text is never used: it repeats the formula
// once per visual representation.
var texExtractors = []func(*html.Node) string{
	annotationTeX,
	mathAltText,
}

func extractTeX(n *html.Node) string {
	for _, extract := range texExtractors {
		if tex := extract(n); tex != "" {
			return tex
		}
	}
	return ""
}

func annotationTeX(n *html.Node) string {
	ann := dom.Find(n, func(c *html.Node) bool {
		return dom.IsElement(c, "annotation") && dom.AttrOr(c, "encoding") == "application/x-tex"
	})
	return dom.TrimmedText(ann)
}

func mathAltText(n *html.Node) string {
	return strings.TrimSpace(dom.AttrOr(dom.Find(n, dom.Tag("math")), "alttext"))
}
