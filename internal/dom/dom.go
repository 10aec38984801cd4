// Package dom provides read-only queries over golang.org/x/net/html trees:
// attribute and class lookups, descendant search, ancestor search and a
// document-order index.
package dom

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Parse reads an HTML document.
func Parse(r io.Reader) (*html.Node, error) {
	return html.Parse(r)
}

// IsElement reports whether n is an element with the given tag. An empty tag
// matches any element.
func IsElement(n *html.Node, tag string) bool {
	return n != nil && n.Type == html.ElementNode && (tag == "" || n.Data == tag)
}

// Attr returns the value of attribute key and whether it is present.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// AttrOr returns the attribute value, or "" when absent.
func AttrOr(n *html.Node, key string) string {
	v, _ := Attr(n, key)
	return v
}

// HasClass reports whether the class attribute contains name as a token.
func HasClass(n *html.Node, name string) bool {
	for _, c := range strings.Fields(AttrOr(n, "class")) {
		if c == name {
			return true
		}
	}
	return false
}

// Text returns the concatenated text of every descendant text node, without
// trimming.
func Text(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	if n != nil {
		extract(n)
	}
	return buf.String()
}

// TrimmedText is Text with surrounding whitespace removed.
func TrimmedText(n *html.Node) string {
	return strings.TrimSpace(Text(n))
}

// Find returns the first descendant of n, in document order, that matches.
// n itself is not considered.
func Find(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n == nil {
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if match(c) {
			return c
		}
		if f := Find(c, match); f != nil {
			return f
		}
	}
	return nil
}

// FindAll returns every descendant of n that matches, in document order.
func FindAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if match(c) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	if n != nil {
		walk(n)
	}
	return out
}

// Closest returns n or its nearest ancestor that matches.
func Closest(n *html.Node, match func(*html.Node) bool) *html.Node {
	for ; n != nil; n = n.Parent {
		if match(n) {
			return n
		}
	}
	return nil
}

// Children returns the direct element children of n that match.
func Children(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && match(c) {
			out = append(out, c)
		}
	}
	return out
}

// Tag matches elements with the given tag name.
func Tag(tag string) func(*html.Node) bool {
	return func(n *html.Node) bool { return IsElement(n, tag) }
}

// Class matches elements carrying the class token.
func Class(name string) func(*html.Node) bool {
	return func(n *html.Node) bool { return IsElement(n, "") && HasClass(n, name) }
}

// HasAttr matches elements carrying the attribute, whatever its value.
func HasAttr(key string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		if !IsElement(n, "") {
			return false
		}
		_, ok := Attr(n, key)
		return ok
	}
}

// AttrEquals matches elements whose attribute key equals val.
func AttrEquals(key, val string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		v, ok := Attr(n, key)
		return ok && IsElement(n, "") && v == val
	}
}

// FindTitle returns the trimmed text of the document's first HTML <title>.
// SVG and MathML titles are skipped.
func FindTitle(doc *html.Node) string {
	isTitle := func(n *html.Node) bool { return IsElement(n, "title") && n.Namespace == "" }
	if t := Find(doc, isTitle); t != nil {
		return TrimmedText(t)
	}
	return ""
}

// FindBody returns the <body> element, or nil.
func FindBody(doc *html.Node) *html.Node {
	if IsElement(doc, "body") {
		return doc
	}
	return Find(doc, Tag("body"))
}

// Order is a document-order index over a subtree. It gives a strict total
// order on the nodes it has seen, consistent with a pre-order traversal.
type Order map[*html.Node]int

// NewOrder indexes root and all of its descendants.
func NewOrder(root *html.Node) Order {
	o := Order{}
	i := 0
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		o[n] = i
		i++
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if root != nil {
		walk(root)
	}
	return o
}

// Compare returns -1 if a precedes b, 1 if it follows, and 0 when they are
// the same node or either is unknown to the index.
func (o Order) Compare(a, b *html.Node) int {
	ia, okA := o[a]
	ib, okB := o[b]
	if !okA || !okB || ia == ib {
		return 0
	}
	if ia < ib {
		return -1
	}
	return 1
}
