package htmldoc

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/tsawler/gridtable/model"
)

// tableRows returns the rows of a table element grouped by section, without
// descending into nested tables. Rows outside thead, tbody and tfoot count
// as body rows.
func tableRows(table *html.Node) (head, body, foot []*html.Node) {
	for c := table.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.Thead:
			head = append(head, childElements(c, atom.Tr)...)
		case atom.Tbody:
			body = append(body, childElements(c, atom.Tr)...)
		case atom.Tfoot:
			foot = append(foot, childElements(c, atom.Tr)...)
		case atom.Tr:
			body = append(body, c)
		}
	}
	return head, body, foot
}

func childElements(n *html.Node, atoms ...atom.Atom) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		for _, a := range atoms {
			if c.DataAtom == a {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

func rowCells(tr *html.Node) []*html.Node {
	return childElements(tr, atom.Td, atom.Th)
}

// span parses a colspan or rowspan value; anything below 1 is 1 and
// values above the browser limits are capped
func span(n *html.Node, key string) int {
	v, err := strconv.Atoi(strings.TrimSpace(attr(n, key)))
	if err != nil || v < 1 {
		return 1
	}
	if key == "rowspan" {
		return min(v, model.MaxRowSpan)
	}
	return min(v, model.MaxColSpan)
}

// GridFeatures lists the features of an HTML table element that only a
// grid table can hold: the grid-table marker, cell spans, rows of
// different widths, a footer, and vertical alignment.
func GridFeatures(table *html.Node) []string {
	var features []string
	seen := map[string]bool{}
	add := func(f string) {
		if !seen[f] {
			seen[f] = true
			features = append(features, f)
		}
	}

	if attr(table, "data-type") == GridTableType {
		add(FeatureMarker)
	}
	head, body, foot := tableRows(table)
	if len(foot) > 0 {
		add(FeatureFooter)
	}

	width := -1
	for _, tr := range append(append(head, body...), foot...) {
		cells := rowCells(tr)
		w := 0
		for _, td := range cells {
			if span(td, "colspan") > 1 {
				add(FeatureColSpan)
			}
			if span(td, "rowspan") > 1 {
				add(FeatureRowSpan)
			}
			if _, ok := cellVAlign(td); ok {
				add(FeatureVAlign)
			}
			w += span(td, "colspan")
		}
		if width >= 0 && w != width {
			add(FeatureRagged)
		}
		width = w
	}
	return features
}

// IsGridCandidate reports whether an HTML table needs a grid table
func IsGridCandidate(table *html.Node) bool {
	return len(GridFeatures(table)) > 0
}
