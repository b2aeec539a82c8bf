package markup

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/gridtable/model"
	"github.com/tsawler/gridtable/promote"
)

var (
	fenceOpen   = regexp.MustCompile("^ {0,3}(`{3,}|~{3,})\\s*([^`\\s]*)")
	atxHeading  = regexp.MustCompile(`^ {0,3}(#{1,6})(?:[ \t]+(.*?))?(?:[ \t]+#+)?[ \t]*$`)
	quoteMarker = regexp.MustCompile(`^ {0,3}> ?`)
)

// Parse reads a markdown document. Grid blocks that do not form a valid
// grid are kept as paragraph text and reported as diagnostics. Text is
// normalized to NFC.
func Parse(src string) (*model.Node, []Diagnostic) {
	src = norm.NFC.String(strings.ReplaceAll(src, "\r\n", "\n"))
	p := &parser{}
	blocks := p.parseBlocks(strings.Split(src, "\n"), 1)
	return model.NewDoc(blocks...), p.diags
}

type parser struct {
	diags []Diagnostic
}

func (p *parser) warn(line int, format string, err error) {
	p.diags = append(p.diags, Diagnostic{Line: line, Pos: -1, Message: format + ": " + err.Error()})
}

func blank(line string) bool { return strings.TrimSpace(line) == "" }

// parseBlocks reads lines into blocks. firstLine is the source line
// number of lines[0].
func (p *parser) parseBlocks(lines []string, firstLine int) []*model.Node {
	var blocks []*model.Node
	for i := 0; i < len(lines); {
		line := lines[i]
		switch {
		case blank(line):
			i++

		case fenceOpen.MatchString(line):
			m := fenceOpen.FindStringSubmatch(line)
			fence := m[1]
			var body []string
			j := i + 1
			for ; j < len(lines); j++ {
				closing := strings.TrimSpace(lines[j])
				if strings.HasPrefix(closing, fence) && strings.Trim(closing, fence[:1]) == "" {
					break
				}
				body = append(body, lines[j])
			}
			blocks = append(blocks, model.NewCodeBlock(m[2], strings.Join(body, "\n")))
			i = j + 1

		case atxHeading.MatchString(line):
			m := atxHeading.FindStringSubmatch(line)
			blocks = append(blocks, model.NewHeading(len(m[1]), m[2]))
			i++

		case quoteMarker.MatchString(line):
			var inner []string
			j := i
			for ; j < len(lines) && quoteMarker.MatchString(lines[j]); j++ {
				inner = append(inner, quoteMarker.ReplaceAllString(lines[j], ""))
			}
			blocks = append(blocks, model.NewBlockquote(p.parseBlocks(inner, firstLine+i)...))
			i = j

		case gridTop.MatchString(line):
			j := i + 1
			for ; j < len(lines); j++ {
				trimmed := strings.TrimSpace(lines[j])
				if trimmed == "" || (trimmed[0] != '+' && trimmed[0] != '|') {
					break
				}
			}
			table, err := p.parseGrid(lines[i:j], firstLine+i)
			if err != nil {
				p.warn(firstLine+i, "grid table kept as text", err)
				blocks = append(blocks, model.NewParagraph(strings.Join(lines[i:j], "\n")))
			} else {
				blocks = append(blocks, table)
			}
			i = j

		case isPipeTable(lines, i):
			j := i + 2
			for ; j < len(lines) && !blank(lines[j]) && strings.Contains(lines[j], "|"); j++ {
			}
			blocks = append(blocks, p.parsePipe(lines[i:j]))
			i = j

		default:
			j := i + 1
			for ; j < len(lines); j++ {
				next := lines[j]
				if blank(next) || fenceOpen.MatchString(next) || atxHeading.MatchString(next) ||
					quoteMarker.MatchString(next) || isPipeTable(lines, j) {
					break
				}
			}
			text := make([]string, 0, j-i)
			for _, l := range lines[i:j] {
				text = append(text, strings.TrimSpace(l))
			}
			blocks = append(blocks, model.NewParagraph(strings.Join(text, "\n")))
			i = j
		}
	}
	return blocks
}

// Serialize writes doc as markdown. With Options.Promote set, qualifying
// tables are written as pipe tables and every table kept in grid form is
// reported with the reason.
func Serialize(doc *model.Node, opts Options) (string, []Diagnostic) {
	var diags []Diagnostic
	for _, ref := range model.Tables(doc) {
		if (!opts.Promote || !promote.CanPromoteToSimple(ref.Node)) && undrawnBorders(model.LayoutTable(ref.Node)) {
			diags = append(diags, Diagnostic{Pos: ref.Pos, Message: "spans across a border no cell draws are lost in grid form"})
		}
	}
	if opts.Promote {
		var skipped []promote.Skipped
		doc, skipped = promote.PromoteDocument(doc)
		for _, s := range skipped {
			diags = append(diags, Diagnostic{Pos: s.Pos, Message: "kept as grid table: " + s.Reason.Error()})
		}
	}
	w := &writer{opts: opts}
	out := w.blocks(doc.Content, false)
	if out == "" {
		return "", diags
	}
	return out + "\n", diags
}

// Table writes a single table. Promotion follows opts.
func Table(table *model.Node, opts Options) string {
	if opts.Promote {
		if simple, ok := promote.PromoteToSimple(table); ok {
			table = simple
		}
	}
	w := &writer{opts: opts}
	return w.block(table, false)
}

type writer struct {
	opts Options
}

func (w *writer) blocks(nodes []*model.Node, inCell bool) string {
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		parts = append(parts, w.block(n, inCell))
	}
	return strings.Join(parts, "\n\n")
}

func (w *writer) block(n *model.Node, inCell bool) string {
	switch n.Type {
	case model.NodeParagraph:
		return w.inline(n, inCell)
	case model.NodeHeading:
		level := max(n.Attrs.Level, 1)
		return strings.Repeat("#", level) + " " + w.inline(n, inCell)
	case model.NodeCodeBlock:
		text := n.TextContent()
		fence := "```"
		for strings.Contains(text, fence) {
			fence += "`"
		}
		return fence + n.Attrs.Info + "\n" + text + "\n" + fence
	case model.NodeBlockquote:
		lines := strings.Split(w.blocks(n.Content, inCell), "\n")
		for i, line := range lines {
			if line == "" {
				lines[i] = ">"
			} else {
				lines[i] = "> " + line
			}
		}
		return strings.Join(lines, "\n")
	case model.NodeTable:
		return w.writeGrid(n)
	case model.NodeSimpleTable:
		return w.writePipe(n)
	}
	return n.TextContent()
}

func (w *writer) inline(n *model.Node, inCell bool) string {
	text := n.TextContent()
	if inCell {
		text = normalizeInline(text)
	}
	return text
}
