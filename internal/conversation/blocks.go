package conversation

import (
	"sort"

	"golang.org/x/net/html"

	"github.com/dgallion1/chatmd/internal/dom"
)

// BlockKind tags a piece of assistant-turn content.
type BlockKind string

const (
	BlockAssistantMessage BlockKind = "assistant_message"
	BlockToolCode         BlockKind = "tool_code"
	BlockToolOutput       BlockKind = "tool_output"
)

// Block is one unit of an assistant turn, anchored at a node of the turn.
type Block struct {
	Kind   BlockKind
	Anchor *html.Node
}

// assistantBlocks collects the message bodies of an assistant turn together
// with tool code and tool output that live outside the message containers.
// The result is ordered by document position and holds each anchor once.
func (l Layout) assistantBlocks(turn *html.Node, messages []*html.Node) []Block {
	var blocks []Block
	for _, m := range messages {
		if dom.AttrOr(m, l.AuthorRoleAttr) != "assistant" {
			continue
		}
		root := dom.Find(m, dom.Class(l.MarkdownClass))
		if root == nil {
			root = m
		}
		blocks = append(blocks, Block{Kind: BlockAssistantMessage, Anchor: root})
	}

	for _, pre := range dom.FindAll(turn, dom.Tag("pre")) {
		if dom.Closest(pre, l.isMessage) != nil {
			continue
		}
		if dom.Find(pre, dom.Tag("code")) != nil {
			blocks = append(blocks, Block{Kind: BlockToolCode, Anchor: pre})
			continue
		}
		if l.nearResultLabel(pre) {
			blocks = append(blocks, Block{Kind: BlockToolOutput, Anchor: pre})
		}
	}

	order := dom.NewOrder(turn)
	sort.SliceStable(blocks, func(i, j int) bool {
		return order.Compare(blocks[i].Anchor, blocks[j].Anchor) < 0
	})

	seen := make(map[*html.Node]bool, len(blocks))
	out := blocks[:0]
	for _, b := range blocks {
		if b.Anchor == nil || seen[b.Anchor] {
			continue
		}
		seen[b.Anchor] = true
		out = append(out, b)
	}
	return out
}

// nearResultLabel reports whether the nearest enclosing div of pre contains
// a div whose whole text is the result label.
func (l Layout) nearResultLabel(pre *html.Node) bool {
	container := dom.Closest(pre, dom.Tag("div"))
	if container == nil {
		return false
	}
	label := dom.Find(container, func(n *html.Node) bool {
		return dom.IsElement(n, "div") && dom.TrimmedText(n) == l.ResultLabelText
	})
	return label != nil
}
