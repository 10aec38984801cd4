package conversation

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/chatmd/internal/dom"
)

// Layout names the attributes and classes that identify conversation
// structure in the rendered page.
type Layout struct {
	TurnTag         string // element holding one turn
	TurnAttr        string // attribute identifying a turn container
	TurnPrefix      string // required prefix of TurnAttr
	TurnRoleAttr    string // role of the whole turn
	AuthorRoleAttr  string // role of an authored message inside a turn
	UserTextClass   string // preferred plain-text element of a user message
	MarkdownClass   string // rendered body of an assistant message
	ResultLabelText string // label next to tool output blocks
}

// DefaultLayout matches the ChatGPT web client.
var DefaultLayout = Layout{
	TurnTag:         "article",
	TurnAttr:        "data-testid",
	TurnPrefix:      "conversation-turn-",
	TurnRoleAttr:    "data-turn",
	AuthorRoleAttr:  "data-message-author-role",
	UserTextClass:   "whitespace-pre-wrap",
	MarkdownClass:   "markdown",
	ResultLabelText: "Result",
}

func (l Layout) isTurn(n *html.Node) bool {
	if !dom.IsElement(n, l.TurnTag) {
		return false
	}
	v, ok := dom.Attr(n, l.TurnAttr)
	return ok && strings.HasPrefix(v, l.TurnPrefix)
}

func (l Layout) isMessage(n *html.Node) bool {
	return dom.HasAttr(l.AuthorRoleAttr)(n)
}

// contentRoot picks the main region of the page, falling back to the body
// and then the whole document.
func contentRoot(doc *html.Node) *html.Node {
	if m := dom.Find(doc, dom.Tag("main")); m != nil {
		return m
	}
	if m := dom.Find(doc, dom.AttrEquals("role", "main")); m != nil {
		return m
	}
	if b := dom.FindBody(doc); b != nil {
		return b
	}
	return doc
}

// turns returns every turn container under the content root, in document
// order.
func (l Layout) turns(doc *html.Node) []*html.Node {
	return dom.FindAll(contentRoot(doc), l.isTurn)
}
