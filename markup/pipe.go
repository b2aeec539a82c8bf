package markup

import (
	"regexp"
	"strings"

	"github.com/tsawler/gridtable/model"
)

// delimiterRow matches the line under a pipe table's header row
var delimiterRow = regexp.MustCompile(`^\s*\|?\s*:?-+:?\s*(?:\|\s*:?-+:?\s*)*\|?\s*$`)

// escapePipe makes cell text safe for a single pipe table cell
func escapePipe(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// splitPipeRow splits a pipe table line into trimmed, unescaped cells
func splitPipeRow(line string) []string {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "|")
	if strings.HasSuffix(line, "|") && !strings.HasSuffix(line, `\|`) {
		line = line[:len(line)-1]
	}

	var cells []string
	var sb strings.Builder
	for i := 0; i < len(line); i++ {
		switch {
		case line[i] == '\\' && i+1 < len(line) && line[i+1] == '|':
			sb.WriteByte('|')
			i++
		case line[i] == '|':
			cells = append(cells, strings.TrimSpace(sb.String()))
			sb.Reset()
		default:
			sb.WriteByte(line[i])
		}
	}
	return append(cells, strings.TrimSpace(sb.String()))
}

func delimiterAlign(delim string) model.Align {
	delim = strings.TrimSpace(delim)
	left, right := strings.HasPrefix(delim, ":"), strings.HasSuffix(delim, ":")
	switch {
	case left && right:
		return model.AlignCenter
	case right:
		return model.AlignRight
	case left:
		return model.AlignLeft
	}
	return model.AlignNone
}

func delimiterText(a model.Align, width int) string {
	switch a {
	case model.AlignCenter:
		return ":" + strings.Repeat("-", width-2) + ":"
	case model.AlignRight:
		return strings.Repeat("-", width-1) + ":"
	}
	return strings.Repeat("-", width)
}

// isPipeTable reports whether lines[i] opens a pipe table
func isPipeTable(lines []string, i int) bool {
	if i+1 >= len(lines) || !strings.Contains(lines[i], "|") || !delimiterRow.MatchString(lines[i+1]) {
		return false
	}
	return len(splitPipeRow(lines[i])) == len(splitPipeRow(lines[i+1]))
}

// parsePipe reads a pipe table into a grid table with a one-row head.
// Body rows are padded or cut to the header's width.
func (p *parser) parsePipe(lines []string) *model.Node {
	header := splitPipeRow(lines[0])
	delims := splitPipeRow(lines[1])
	aligns := make([]model.Align, len(delims))
	for i, delim := range delims {
		aligns[i] = delimiterAlign(delim)
	}

	row := func(texts []string) *model.Node {
		cells := make([]*model.Node, len(header))
		for i := range cells {
			text := ""
			if i < len(texts) {
				text = texts[i]
			}
			cells[i] = model.NewCell(model.Attrs{Align: aligns[i]}, model.NewParagraph(text))
		}
		return model.NewRow(cells...)
	}

	var body []*model.Node
	for _, line := range lines[2:] {
		body = append(body, row(splitPipeRow(line)))
	}
	if len(body) == 0 {
		body = append(body, row(nil))
	}
	return model.NewTable(
		model.NewSection(model.NodeTableHead, row(header)),
		model.NewSection(model.NodeTableBody, body...),
		nil,
	)
}

// writePipe renders a simple table as pipe rows under a delimiter row
func (w *writer) writePipe(table *model.Node) string {
	if table.ChildCount() == 0 {
		return ""
	}
	cols := 0
	for _, row := range table.Content {
		cols = max(cols, row.ChildCount())
	}
	if cols == 0 {
		return ""
	}

	texts := make([][]string, len(table.Content))
	widths := make([]int, cols)
	for c := range widths {
		widths[c] = 3
	}
	for r, row := range table.Content {
		texts[r] = make([]string, cols)
		for c, cell := range row.Content {
			text := escapePipe(normalizeInline(cell.TextContent()))
			texts[r][c] = text
			widths[c] = max(widths[c], displayWidth(text))
		}
	}

	line := func(cells []string) string {
		var sb strings.Builder
		for c, text := range cells {
			sb.WriteString("| ")
			sb.WriteString(text)
			sb.WriteString(strings.Repeat(" ", widths[c]-displayWidth(text)))
			sb.WriteString(" ")
		}
		sb.WriteString("|")
		return sb.String()
	}

	header := table.Content[0]
	delims := make([]string, cols)
	for c := range delims {
		align := model.AlignNone
		if c < header.ChildCount() {
			align = header.Content[c].Attrs.Align
		}
		delims[c] = delimiterText(align, widths[c])
	}

	out := []string{line(texts[0]), line(delims)}
	for _, row := range texts[1:] {
		out = append(out, line(row))
	}
	return strings.Join(out, "\n")
}
