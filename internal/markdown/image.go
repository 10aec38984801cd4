package markdown

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/chatmd/internal/dom"
)

// iconSize is the largest declared width and height treated as an icon.
const iconSize = 64

// IsContentImage reports whether an <img> is conversation content rather
// than decorative chrome.
func IsContentImage(img *html.Node) bool {
	if !dom.IsElement(img, "img") {
		return false
	}
	src := dom.AttrOr(img, "src")
	if src == "" || strings.HasPrefix(src, "data:") {
		return false
	}
	if strings.Contains(dom.AttrOr(img, "class"), "icon") {
		return false
	}
	w, h := dimension(img, "width"), dimension(img, "height")
	if w > 0 && w <= iconSize && h > 0 && h <= iconSize {
		return false
	}

	// Uploads (alt "uploaded image") and first-party assets are kept, and so
	// is every other image that survived the exclusions.
	return true
}

func dimension(n *html.Node, key string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(dom.AttrOr(n, key)), 64)
	if err != nil {
		return 0
	}
	return v
}
