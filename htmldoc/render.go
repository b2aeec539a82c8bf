package htmldoc

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/tsawler/gridtable/model"
)

// GridTableType is the data-type attribute value marking grid tables
const GridTableType = "grid-table"

// Render writes the blocks of doc as an HTML fragment
func Render(w io.Writer, doc *model.Node, opts Options) error {
	for i, block := range doc.Content {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return fmt.Errorf("writing HTML: %w", err)
			}
		}
		n := renderBlock(block)
		if opts.Pretty {
			indent(n, 0)
		}
		if err := html.Render(w, n); err != nil {
			return fmt.Errorf("writing HTML: %w", err)
		}
	}
	return nil
}

// RenderString renders doc and returns the HTML
func RenderString(doc *model.Node, opts Options) (string, error) {
	var sb strings.Builder
	if err := Render(&sb, doc, opts); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

var headingAtoms = []atom.Atom{atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6}

func renderBlock(n *model.Node) *html.Node {
	switch n.Type {
	case model.NodeParagraph:
		return inlineInto(element(atom.P), n.TextContent())
	case model.NodeHeading:
		level := min(max(n.Attrs.Level, 1), 6)
		return inlineInto(element(headingAtoms[level-1]), n.TextContent())
	case model.NodeCodeBlock:
		code := element(atom.Code)
		if n.Attrs.Info != "" {
			code.Attr = append(code.Attr, html.Attribute{Key: "class", Val: "language-" + n.Attrs.Info})
		}
		code.AppendChild(text(n.TextContent()))
		pre := element(atom.Pre)
		pre.AppendChild(code)
		return pre
	case model.NodeBlockquote:
		quote := element(atom.Blockquote)
		for _, c := range n.Content {
			quote.AppendChild(renderBlock(c))
		}
		return quote
	case model.NodeTable:
		return renderGridTable(n)
	case model.NodeSimpleTable:
		return renderSimpleTable(n)
	}
	return inlineInto(element(atom.P), n.TextContent())
}

// inlineInto appends s to n, turning newlines into <br> elements
func inlineInto(n *html.Node, s string) *html.Node {
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			n.AppendChild(element(atom.Br))
		}
		if line != "" {
			n.AppendChild(text(line))
		}
	}
	return n
}

func renderGridTable(table *model.Node) *html.Node {
	out := element(atom.Table, html.Attribute{Key: "data-type", Val: GridTableType})
	for _, section := range table.Content {
		var a atom.Atom
		cellAtom := atom.Td
		switch section.Type {
		case model.NodeTableHead:
			a, cellAtom = atom.Thead, atom.Th
		case model.NodeTableBody:
			a = atom.Tbody
		case model.NodeTableFoot:
			a = atom.Tfoot
		default:
			continue
		}
		sec := element(a)
		for _, row := range section.Content {
			tr := element(atom.Tr)
			for _, cell := range row.Content {
				tr.AppendChild(renderCell(cell, cellAtom))
			}
			sec.AppendChild(tr)
		}
		out.AppendChild(sec)
	}
	return out
}

func renderSimpleTable(table *model.Node) *html.Node {
	out := element(atom.Table)
	var head, body *html.Node
	for _, row := range table.Content {
		tr := element(atom.Tr)
		cellAtom := atom.Td
		if row.Type == model.NodeSimpleHeaderRow {
			cellAtom = atom.Th
			if head == nil {
				head = element(atom.Thead)
				out.AppendChild(head)
			}
			head.AppendChild(tr)
		} else {
			if body == nil {
				body = element(atom.Tbody)
				out.AppendChild(body)
			}
			body.AppendChild(tr)
		}
		for _, cell := range row.Content {
			tr.AppendChild(renderCell(cell, cellAtom))
		}
	}
	return out
}

// cellAttributes returns the HTML attributes of a cell. Spans are written
// only when greater than 1, alignment only when set.
func cellAttributes(a model.Attrs) []html.Attribute {
	var attrs []html.Attribute
	if a.Cols() > 1 {
		attrs = append(attrs, html.Attribute{Key: "colspan", Val: strconv.Itoa(a.Cols())})
	}
	if a.Rows() > 1 {
		attrs = append(attrs, html.Attribute{Key: "rowspan", Val: strconv.Itoa(a.Rows())})
	}

	var style []string
	if a.Align != model.AlignNone {
		attrs = append(attrs, html.Attribute{Key: "data-align", Val: string(a.Align)})
		style = append(style, "text-align: "+string(a.Align))
	}
	if a.VAlign != model.VAlignNone {
		attrs = append(attrs, html.Attribute{Key: "data-valign", Val: string(a.VAlign)})
		style = append(style, "vertical-align: "+string(a.VAlign))
	}
	if len(style) > 0 {
		attrs = append(attrs, html.Attribute{Key: "style", Val: strings.Join(style, "; ")})
	}
	return attrs
}

func renderCell(cell *model.Node, a atom.Atom) *html.Node {
	td := element(a, cellAttributes(cell.Attrs)...)
	for _, block := range cell.Content {
		td.AppendChild(renderBlock(block))
	}
	return td
}

// indent inserts line breaks and indentation between the children of
// container elements
func indent(n *html.Node, depth int) {
	switch n.DataAtom {
	case atom.Table, atom.Thead, atom.Tbody, atom.Tfoot, atom.Tr, atom.Td, atom.Th, atom.Blockquote:
	default:
		return
	}
	var kids []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		kids = append(kids, c)
	}
	if len(kids) == 0 {
		return
	}
	pad := "\n" + strings.Repeat("  ", depth+1)
	for _, c := range kids {
		n.InsertBefore(text(pad), c)
		indent(c, depth+1)
	}
	n.AppendChild(text("\n" + strings.Repeat("  ", depth)))
}
