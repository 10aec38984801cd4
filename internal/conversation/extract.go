// Package conversation segments a rendered chat page into turns and emits
// one Markdown document for the whole conversation.
package conversation

import (
	"errors"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/chatmd/internal/dom"
	"github.com/dgallion1/chatmd/internal/markdown"
	"github.com/dgallion1/chatmd/internal/textutil"
)

// ReasonNoTurns is the failure reason for pages without conversation turns.
const ReasonNoTurns = "No conversation turns found."

// Failure is a recoverable extraction outcome carrying a human-readable
// reason. It is returned as an error so callers can tell it apart with
// errors.As.
type Failure struct {
	Reason string
}

func (f *Failure) Error() string { return f.Reason }

// IsNotFound reports whether err is an extraction Failure.
func IsNotFound(err error) bool {
	var f *Failure
	return errors.As(err, &f)
}

// Options controls an extraction.
type Options struct {
	DownloadImages bool
	TitleOverride  string
	// BaseURL resolves relative image sources, typically the page URL.
	BaseURL *url.URL
	// Layout overrides DefaultLayout when non-nil.
	Layout *Layout
}

// Image describes one image to bundle with the Markdown.
type Image struct {
	URL      string `json:"url"`
	Key      string `json:"key"`
	Filename string `json:"filename"`
	Alt      string `json:"alt"`
	Index    int    `json:"index"`
}

// Result is an extracted conversation.
type Result struct {
	Title    string  `json:"title"`
	Filename string  `json:"filename"`
	Markdown string  `json:"markdown"`
	Images   []Image `json:"images"`
	Turns    int     `json:"turns"`
}

// AssetFolder is the archive directory holding the images of a title.
func AssetFolder(title string) string {
	return title + "-assets"
}

// ResolveTitle picks the override, then the document title, then the
// default, and sanitizes the result for use as a filename.
func ResolveTitle(override, docTitle string) string {
	title := override
	if title == "" {
		title = docTitle
	}
	if title == "" {
		title = textutil.DefaultTitle
	}
	return textutil.SanitizeFilename(title)
}

// Detect reports whether doc contains at least one conversation turn
// anywhere in the document, not only under the content root.
func Detect(doc *html.Node) bool {
	return dom.Find(doc, DefaultLayout.isTurn) != nil
}

// Extract converts every turn of doc into one Markdown document. The tree
// is only read. A document without turns yields a *Failure.
func Extract(doc *html.Node, opts Options) (*Result, error) {
	layout := DefaultLayout
	if opts.Layout != nil {
		layout = *opts.Layout
	}

	title := ResolveTitle(strings.TrimSpace(opts.TitleOverride), dom.FindTitle(doc))
	folder := AssetFolder(title)

	turns := layout.turns(doc)
	if len(turns) == 0 {
		return nil, &Failure{Reason: ReasonNoTurns}
	}

	e := &extractor{
		layout: layout,
		conv: markdown.New(markdown.Options{
			DownloadImages: opts.DownloadImages,
			ImageFolder:    folder,
			BaseURL:        opts.BaseURL,
		}),
		images: &markdown.Images{},
	}

	var md strings.Builder
	md.WriteString("# " + title + "\n\n")
	emitted := 0
	for _, turn := range turns {
		if e.turn(&md, turn) {
			emitted++
		}
	}

	res := &Result{
		Title:    title,
		Filename: title + ".md",
		Markdown: strings.TrimSpace(md.String()) + "\n",
		Images:   []Image{},
		Turns:    emitted,
	}
	if opts.DownloadImages {
		for i, ref := range e.images.Refs() {
			res.Images = append(res.Images, Image{
				URL:      ref.SourceURL,
				Key:      ref.Key,
				Filename: folder + "/" + ref.Key,
				Alt:      ref.Alt,
				Index:    i + 1,
			})
		}
	}
	return res, nil
}

type extractor struct {
	layout Layout
	conv   *markdown.Converter
	images *markdown.Images
}

// convert runs the transducer on a block and trims the result.
func (e *extractor) convert(n *html.Node) string {
	return strings.TrimSpace(e.conv.Convert(n, e.images))
}

// turn appends the section for one turn container. It reports whether
// anything was written.
func (e *extractor) turn(md *strings.Builder, turn *html.Node) bool {
	messages := dom.FindAll(turn, e.layout.isMessage)
	if len(messages) == 0 {
		return false
	}

	switch dom.AttrOr(turn, e.layout.TurnRoleAttr) {
	case "user":
		return e.userTurn(md, messages)
	case "assistant":
		e.assistantTurn(md, turn, messages)
		return true
	default:
		for _, m := range messages {
			role := dom.AttrOr(m, e.layout.AuthorRoleAttr)
			if role == "" {
				role = "unknown"
			}
			md.WriteString("## " + role + "\n\n" + e.convert(m) + "\n\n")
		}
		return true
	}
}

func (e *extractor) userTurn(md *strings.Builder, messages []*html.Node) bool {
	var users []*html.Node
	for _, m := range messages {
		if dom.AttrOr(m, e.layout.AuthorRoleAttr) == "user" {
			users = append(users, m)
		}
	}
	if len(users) == 0 {
		return false
	}

	md.WriteString("## User\n\n")
	for _, m := range users {
		src := dom.Find(m, dom.Class(e.layout.UserTextClass))
		if src == nil {
			src = m
		}
		if text := dom.TrimmedText(src); text != "" {
			md.WriteString(text + "\n\n")
		}
		for _, img := range dom.FindAll(m, markdown.IsContentImage) {
			if out := e.convert(img); out != "" {
				md.WriteString(out + "\n\n")
			}
		}
	}
	return true
}

func (e *extractor) assistantTurn(md *strings.Builder, turn *html.Node, messages []*html.Node) {
	md.WriteString("## Assistant\n\n")
	for _, b := range e.layout.assistantBlocks(turn, messages) {
		if b.Kind == BlockToolOutput {
			out := dom.TrimmedText(b.Anchor)
			if out == "" {
				continue
			}
			md.WriteString("**Result:**\n\n```text\n" + out + "\n```\n\n")
			continue
		}
		if out := e.convert(b.Anchor); out != "" {
			md.WriteString(out + "\n\n")
		}
	}
}
