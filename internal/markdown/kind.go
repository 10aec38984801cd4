package markdown

import (
	"golang.org/x/net/html"

	"github.com/dgallion1/chatmd/internal/dom"
)

// kind is the closed set of node variants the converter handles. Anything
// that is not recognised is a container.
type kind int

const (
	kindNone kind = iota
	kindText
	kindDisplayMath
	kindInlineMath
	kindIgnored
	kindLineBreak
	kindRule
	kindHeading
	kindParagraph
	kindStrong
	kindEmphasis
	kindCode
	kindPre
	kindLink
	kindImage
	kindList
	kindListItem
	kindTable
	kindBlockquote
	kindContainer
)

func classify(n *html.Node) kind {
	switch n.Type {
	case html.TextNode:
		return kindText
	case html.ElementNode:
	case html.DocumentNode:
		return kindContainer
	default:
		return kindNone
	}

	if dom.HasClass(n, "katex-display") {
		return kindDisplayMath
	}
	if dom.HasClass(n, "katex") {
		return kindInlineMath
	}

	switch n.Data {
	case "script", "style", "noscript", "template", "button", "svg", "use", "label":
		return kindIgnored
	case "br":
		return kindLineBreak
	case "hr":
		return kindRule
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return kindHeading
	case "p":
		return kindParagraph
	case "strong", "b":
		return kindStrong
	case "em", "i":
		return kindEmphasis
	case "code":
		return kindCode
	case "pre":
		return kindPre
	case "a":
		return kindLink
	case "img":
		return kindImage
	case "ul", "ol":
		return kindList
	case "li":
		return kindListItem
	case "table":
		return kindTable
	case "blockquote":
		return kindBlockquote
	}
	return kindContainer
}

// headingLevel returns 1-6 for h1-h6 and 0 otherwise.
func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

// isBlock reports whether a container tag should be separated from what
// follows it by a blank line.
func isBlock(tag string) bool {
	switch tag {
	case "p", "div", "section", "article", "ul", "ol", "li", "pre", "table", "hr":
		return true
	}
	return headingLevel(tag) > 0
}
