package markdown

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/chatmd/internal/dom"
	"github.com/dgallion1/chatmd/internal/textutil"
)

func isCell(n *html.Node) bool {
	return n.Data == "td" || n.Data == "th"
}

func rowCells(row *html.Node) []string {
	cells := dom.Children(row, isCell)
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = textutil.CleanCell(dom.Text(c))
	}
	return out
}

// table renders a pipe table. Without a <th> in the first row a
// "Column N" header is synthesised. Every row is padded or clipped to the
// widest row.
func table(n *html.Node) string {
	rows := dom.FindAll(n, dom.Tag("tr"))
	if len(rows) == 0 {
		return ""
	}

	first := rowCells(rows[0])
	var header []string
	var body [][]string
	if len(dom.Children(rows[0], dom.Tag("th"))) > 0 {
		header = first
		for _, r := range rows[1:] {
			body = append(body, rowCells(r))
		}
	} else {
		header = make([]string, len(first))
		for i := range first {
			header[i] = "Column " + strconv.Itoa(i+1)
		}
		for _, r := range rows {
			body = append(body, rowCells(r))
		}
	}

	cols := max(len(header), 1)
	for _, r := range body {
		cols = max(cols, len(r))
	}

	sep := make([]string, cols)
	for i := range sep {
		sep[i] = "---"
	}

	lines := []string{tableRow(header, cols), tableRow(sep, cols)}
	for _, r := range body {
		lines = append(lines, tableRow(r, cols))
	}
	return strings.Join(lines, "\n") + "\n\n"
}

func tableRow(cells []string, cols int) string {
	padded := make([]string, cols)
	copy(padded, cells)
	return "| " + strings.Join(padded, " | ") + " |"
}
