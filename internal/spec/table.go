package spec

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	headingsSelector = "thead > tr > th"
	rowsSelector     = "tbody > tr"
	cellSelector     = "td"
)

// Row maps a table heading to the text of the row's cell in that column.
type Row map[string]string

// ParseTableRows returns the body rows of the first table matched by selector
// inside container. A missing table yields no rows. Cells beyond the last
// heading are dropped.
func ParseTableRows(container *goquery.Selection, selector string) []Row {
	table := container.Find(selector).First()
	if table.Length() == 0 {
		return nil
	}
	var headings []string
	table.Find(headingsSelector).Each(func(_ int, th *goquery.Selection) {
		headings = append(headings, strings.TrimSpace(th.Text()))
	})

	var rows []Row
	table.Find(rowsSelector).Each(func(_ int, tr *goquery.Selection) {
		row := Row{}
		tr.Find(cellSelector).Each(func(i int, td *goquery.Selection) {
			if i < len(headings) {
				row[headings[i]] = cellText(td)
			}
		})
		rows = append(rows, row)
	})
	return rows
}

// cellText concatenates the text of s like Selection.Text, but separates
// line breaks and block elements with a space so "<strong>realm</strong><br>
// <em>required</em>" reads "realm required". Runs of spaces inside a text
// node are kept: the type grammar depends on them.
func cellText(s *goquery.Selection) string {
	var b strings.Builder
	for _, n := range s.Nodes {
		writeText(&b, n)
	}
	return strings.TrimSpace(b.String())
}

var blockElements = map[string]bool{"p": true, "div": true, "li": true, "tr": true}

func writeText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		if n.Data == "br" {
			b.WriteByte(' ')
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}
	if n.Type == html.ElementNode && blockElements[n.Data] {
		b.WriteByte(' ')
	}
}
