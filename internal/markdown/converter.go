// Package markdown converts rendered conversation HTML into Markdown text.
//
// The converter is a recursive transducer over golang.org/x/net/html nodes.
// Its only side channel is an explicit *Images accumulator supplied by the
// caller, which collects the images that will later be bundled.
package markdown

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"

	"github.com/dgallion1/chatmd/internal/dom"
	"github.com/dgallion1/chatmd/internal/textutil"
)

// Context is carried down the recursion by value. A child call may override
// fields; siblings never observe each other's changes.
type Context struct {
	InPreformatted bool
	InInline       bool
	ListDepth      int
}

// Options configures a Converter.
type Options struct {
	// DownloadImages makes image nodes emit placeholder references into
	// ImageFolder instead of their source URL.
	DownloadImages bool
	ImageFolder    string
	// BaseURL, when set, resolves relative image sources.
	BaseURL *url.URL
}

// Converter turns markup subtrees into Markdown.
type Converter struct {
	opts Options
}

// New returns a Converter.
func New(opts Options) *Converter {
	return &Converter{opts: opts}
}

// Convert converts n starting from a fresh context. Code under a <pre>
// ancestor of n is treated as preformatted.
func (c *Converter) Convert(n *html.Node, images *Images) string {
	ctx := Context{InPreformatted: dom.Closest(n, dom.Tag("pre")) != nil}
	return c.ConvertNode(n, ctx, images)
}

// ConvertNode dispatches on the node variant.
func (c *Converter) ConvertNode(n *html.Node, ctx Context, images *Images) string {
	switch classify(n) {
	case kindText:
		if ctx.InPreformatted {
			return n.Data
		}
		return textutil.CollapseSpace(n.Data)
	case kindDisplayMath:
		if tex := extractTeX(n); tex != "" {
			return "\n$$\n" + tex + "\n$$\n\n"
		}
		return c.container(n, ctx, images)
	case kindInlineMath:
		if tex := extractTeX(n); tex != "" {
			return "$" + tex + "$"
		}
		return c.container(n, ctx, images)
	case kindIgnored, kindNone:
		return ""
	case kindLineBreak:
		return "\n"
	case kindRule:
		return "\n---\n\n"
	case kindHeading:
		text := strings.TrimSpace(c.children(n, inline(ctx), images))
		return "\n" + strings.Repeat("#", headingLevel(n.Data)) + " " + text + "\n\n"
	case kindParagraph:
		text := strings.TrimSpace(c.children(n, inline(ctx), images))
		if text == "" {
			return ""
		}
		return text + "\n\n"
	case kindStrong:
		return "**" + c.children(n, inline(ctx), images) + "**"
	case kindEmphasis:
		return "*" + c.children(n, inline(ctx), images) + "*"
	case kindCode:
		if ctx.InPreformatted {
			return dom.Text(n)
		}
		return textutil.InlineCode(dom.TrimmedText(n))
	case kindPre:
		return codeBlock(n)
	case kindLink:
		return c.link(n, ctx, images)
	case kindImage:
		return c.image(n, images)
	case kindList:
		return c.list(n, ctx, images)
	case kindListItem:
		return c.children(n, ctx, images)
	case kindTable:
		return table(n)
	case kindBlockquote:
		return c.blockquote(n, ctx, images)
	}
	return c.container(n, ctx, images)
}

func inline(ctx Context) Context {
	ctx.InInline = true
	return ctx
}

func (c *Converter) children(n *html.Node, ctx Context, images *Images) string {
	var b strings.Builder
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		b.WriteString(c.ConvertNode(ch, ctx, images))
	}
	return b.String()
}

func (c *Converter) container(n *html.Node, ctx Context, images *Images) string {
	out := c.children(n, ctx, images)
	if n.Type == html.ElementNode && isBlock(n.Data) && strings.TrimSpace(out) != "" {
		return out + "\n\n"
	}
	return out
}

var languageClass = regexp.MustCompile(`\blanguage-([a-zA-Z0-9_+-]+)\b`)

func codeBlock(pre *html.Node) string {
	code := dom.Find(pre, dom.Tag("code"))
	lang := ""
	src := pre
	if code != nil {
		if m := languageClass.FindStringSubmatch(dom.AttrOr(code, "class")); m != nil {
			lang = m[1]
		}
		src = code
	}
	raw := strings.TrimSuffix(dom.Text(src), "\n")
	return "\n```" + lang + "\n" + raw + "\n```\n\n"
}

func (c *Converter) link(n *html.Node, ctx Context, images *Images) string {
	href := dom.AttrOr(n, "href")
	text := strings.TrimSpace(c.children(n, inline(ctx), images))
	if text == "" {
		text = href
	}
	if href == "" {
		return text
	}
	return "[" + text + "](" + textutil.LinkDestination(href) + ")"
}

func (c *Converter) image(n *html.Node, images *Images) string {
	if !IsContentImage(n) {
		return ""
	}
	alt := strings.TrimSpace(dom.AttrOr(n, "alt"))
	src := c.resolve(dom.AttrOr(n, "src"))
	if src == "" {
		return ""
	}
	if c.opts.DownloadImages && images != nil {
		ref := images.add(src, alt)
		return "![" + alt + "](" + textutil.LinkDestination(c.opts.ImageFolder+"/"+ref.Key) + ")"
	}
	return "![" + alt + "](" + textutil.LinkDestination(src) + ")"
}

func (c *Converter) resolve(src string) string {
	if c.opts.BaseURL == nil {
		return src
	}
	u, err := url.Parse(src)
	if err != nil {
		return src
	}
	return c.opts.BaseURL.ResolveReference(u).String()
}

func (c *Converter) blockquote(n *html.Node, ctx Context, images *Images) string {
	inner := strings.TrimSpace(c.children(n, ctx, images))
	lines := strings.Split(inner, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRightFunc("> "+l, unicode.IsSpace)
	}
	return strings.Join(lines, "\n") + "\n\n"
}

// ImageRef is an image registered during conversion.
type ImageRef struct {
	SourceURL string
	Key       string
	Alt       string
	Ordinal   int
}

// Images accumulates image references in encounter order.
type Images struct {
	refs []ImageRef
}

func (im *Images) add(src, alt string) ImageRef {
	n := len(im.refs) + 1
	ref := ImageRef{SourceURL: src, Key: ImageKey(n), Alt: alt, Ordinal: n}
	im.refs = append(im.refs, ref)
	return ref
}

// Refs returns the collected references.
func (im *Images) Refs() []ImageRef {
	if im == nil {
		return nil
	}
	return im.refs
}

// Len returns how many images were collected.
func (im *Images) Len() int {
	if im == nil {
		return 0
	}
	return len(im.refs)
}

// ImageKey returns the placeholder key for the n-th image, e.g. image-001.
func ImageKey(n int) string {
	return fmt.Sprintf("image-%03d", n)
}
