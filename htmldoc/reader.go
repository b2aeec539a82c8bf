package htmldoc

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/gridtable/model"
	"github.com/tsawler/gridtable/promote"
)

// Open reads an HTML file into a document
func Open(filename string, opts Options) (*model.Node, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return Read(f, opts)
}

// Read parses HTML into a document. Headings, paragraphs, preformatted
// code, block quotes and tables become blocks; list items become
// paragraphs. Text is normalized to NFC.
func Read(r io.Reader, opts Options) (*model.Node, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	body := findElement(root, atom.Body)
	if body == nil {
		body = root
	}
	rd := &reader{opts: opts, exclusion: newExclusionChecker(opts.Navigation, body)}
	return model.NewDoc(rd.blocks(body)...), nil
}

type reader struct {
	opts      Options
	exclusion *exclusionChecker
}

// blocks converts the children of n. Loose inline content between block
// elements is gathered into paragraphs.
func (rd *reader) blocks(n *html.Node) []*model.Node {
	var out []*model.Node
	var pending strings.Builder
	flush := func() {
		if s := cleanText(pending.String()); s != "" {
			out = append(out, model.NewParagraph(s))
		}
		pending.Reset()
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			pending.WriteString(spaceText(c.Data))
			continue
		case html.ElementNode:
		default:
			continue
		}
		if skipElement(c.DataAtom) || rd.exclusion.exclude(c) {
			continue
		}

		switch c.DataAtom {
		case atom.P:
			flush()
			out = append(out, model.NewParagraph(inlineText(c)))
		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			flush()
			out = append(out, model.NewHeading(int(c.Data[1]-'0'), inlineText(c)))
		case atom.Pre:
			flush()
			out = append(out, codeBlock(c))
		case atom.Blockquote:
			flush()
			out = append(out, model.NewBlockquote(rd.blocks(c)...))
		case atom.Table:
			flush()
			if table := rd.table(c); table != nil {
				out = append(out, table)
			}
		case atom.Ul, atom.Ol:
			flush()
			for i, li := range childElements(c, atom.Li) {
				marker := "-"
				if c.DataAtom == atom.Ol {
					marker = fmt.Sprintf("%d.", i+1)
				}
				out = append(out, model.NewParagraph(marker+" "+inlineText(li)))
			}
		case atom.Div, atom.Section, atom.Article, atom.Main, atom.Header, atom.Footer,
			atom.Nav, atom.Aside, atom.Figure, atom.Body, atom.Center, atom.Form:
			flush()
			out = append(out, rd.blocks(c)...)
		case atom.Br:
			pending.WriteString("\n")
		default:
			pending.WriteString(inlineMarkup(c))
		}
	}
	flush()
	return out
}

// table converts a table element. Rows of th cells at the top become the
// head when there is no thead. A table without body rows gets one empty
// row so that it stays editable.
func (rd *reader) table(n *html.Node) *model.Node {
	headRows, bodyRows, footRows := tableRows(n)
	if len(headRows) == 0 {
		for len(bodyRows) > 1 && allHeaderCells(bodyRows[0]) {
			headRows = append(headRows, bodyRows[0])
			bodyRows = bodyRows[1:]
		}
	}

	convert := func(rows []*html.Node) []*model.Node {
		var out []*model.Node
		for _, tr := range rows {
			var cells []*model.Node
			for _, td := range rowCells(tr) {
				cells = append(cells, model.NewCell(cellAttrs(td), rd.blocks(td)...))
			}
			if len(cells) > 0 {
				out = append(out, model.NewRow(cells...))
			}
		}
		return out
	}
	head, body, foot := convert(headRows), convert(bodyRows), convert(footRows)
	if len(head)+len(body)+len(foot) == 0 {
		return nil
	}
	if len(body) == 0 {
		width := 1
		if len(head) > 0 {
			width = model.RowWidth(head[len(head)-1])
		}
		body = []*model.Node{model.EmptyRow(width)}
	}

	section := func(t model.NodeType, rows []*model.Node) *model.Node {
		if len(rows) == 0 {
			return nil
		}
		return model.NewSection(t, rows...)
	}
	table := model.NewTable(
		section(model.NodeTableHead, head),
		section(model.NodeTableBody, body),
		section(model.NodeTableFoot, foot),
	)

	if rd.opts.PreferSimple && !IsGridCandidate(n) {
		if simple, ok := promote.PromoteToSimple(table); ok {
			return simple
		}
	}
	return table
}

func allHeaderCells(tr *html.Node) bool {
	cells := rowCells(tr)
	for _, td := range cells {
		if td.DataAtom != atom.Th {
			return false
		}
	}
	return len(cells) > 0
}

// cellAttrs reads spans and alignment. data-align wins over align, which
// wins over the text-align style; likewise for vertical alignment.
func cellAttrs(td *html.Node) model.Attrs {
	attrs := model.Attrs{ColSpan: span(td, "colspan"), RowSpan: span(td, "rowspan")}
	if a, ok := cellAlign(td); ok {
		attrs.Align = a
	}
	if v, ok := cellVAlign(td); ok {
		attrs.VAlign = v
	}
	return attrs
}

func cellAlign(td *html.Node) (model.Align, bool) {
	for _, v := range []string{attr(td, "data-align"), attr(td, "align"), styleProperty(td, "text-align")} {
		if v == "" {
			continue
		}
		if a, err := model.ParseAlign(v); err == nil && a != model.AlignNone {
			return a, true
		}
	}
	return model.AlignNone, false
}

func cellVAlign(td *html.Node) (model.VAlign, bool) {
	for _, v := range []string{attr(td, "data-valign"), attr(td, "valign"), styleProperty(td, "vertical-align")} {
		if strings.EqualFold(strings.TrimSpace(v), "center") {
			v = string(model.VAlignMiddle)
		}
		if v == "" {
			continue
		}
		if a, err := model.ParseVAlign(v); err == nil && a != model.VAlignNone {
			return a, true
		}
	}
	return model.VAlignNone, false
}

// styleProperty returns the value of one property of the style attribute
func styleProperty(n *html.Node, name string) string {
	for _, decl := range strings.Split(attr(n, "style"), ";") {
		prop, value, ok := strings.Cut(decl, ":")
		if ok && strings.EqualFold(strings.TrimSpace(prop), name) {
			return strings.ToLower(strings.TrimSpace(value))
		}
	}
	return ""
}

func codeBlock(pre *html.Node) *model.Node {
	info := ""
	if code := findElement(pre, atom.Code); code != nil {
		for _, class := range strings.Fields(attr(code, "class")) {
			if lang, ok := strings.CutPrefix(class, "language-"); ok {
				info = lang
				break
			}
		}
	}
	content := strings.TrimSuffix(rawText(pre), "\n")
	return model.NewCodeBlock(info, norm.NFC.String(content))
}

// inlineText returns the inline content of n as text with markdown
// emphasis markers. <br> yields a newline.
func inlineText(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(inlineMarkup(c))
	}
	return cleanText(sb.String())
}

func inlineMarkup(n *html.Node) string {
	switch n.Type {
	case html.TextNode:
		return spaceText(n.Data)
	case html.ElementNode:
	default:
		return ""
	}
	if skipElement(n.DataAtom) {
		return ""
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(inlineMarkup(c))
	}
	inner := sb.String()
	switch n.DataAtom {
	case atom.Br:
		return "\n"
	case atom.Em, atom.I:
		return "*" + inner + "*"
	case atom.Strong, atom.B:
		return "**" + inner + "**"
	case atom.Code:
		return "`" + inner + "`"
	}
	return inner
}

// spaceText turns source line breaks and tabs into spaces; only <br>
// starts a new line
func spaceText(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', '\t', '\f':
			return ' '
		}
		return r
	}, s)
}

// cleanText collapses runs of whitespace within each line, trims the
// result and normalizes it to NFC
func cleanText(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return norm.NFC.String(strings.TrimSpace(strings.Join(lines, "\n")))
}

func rawText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(rawText(c))
	}
	return sb.String()
}

// skipElement reports elements that never carry document content
func skipElement(a atom.Atom) bool {
	switch a {
	case atom.Script, atom.Style, atom.Noscript, atom.Template, atom.Svg, atom.Math,
		atom.Iframe, atom.Object, atom.Embed, atom.Head, atom.Title, atom.Meta, atom.Link:
		return true
	}
	return false
}

// findElement finds the first element with the given tag
func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}
