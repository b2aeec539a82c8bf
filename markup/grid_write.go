package markup

import (
	"slices"
	"strings"

	"github.com/tsawler/gridtable/model"
)

// Border characters of the grid form
const (
	cornerChar     = "+"
	rowRuleChar    = "-"
	sectionRule    = "="
	columnRuleChar = "|"
)

// horizontal alignment markers on a cell's top border
func alignMarkers(a model.Align) (left, right string) {
	switch a {
	case model.AlignLeft:
		return ":", ""
	case model.AlignCenter:
		return ":", ":"
	case model.AlignRight:
		return "", ":"
	case model.AlignJustify:
		return ">", "<"
	}
	return "", ""
}

// vertical alignment marker in the middle of a cell's top border
func valignMarker(v model.VAlign) string {
	switch v {
	case model.VAlignTop:
		return "^"
	case model.VAlignMiddle:
		return "x"
	case model.VAlignBottom:
		return "v"
	}
	return ""
}

// writeGrid renders a table in grid form. Column widths fit the widest
// line of every cell; spanning cells widen the last column they cover.
func (w *writer) writeGrid(table *model.Node) string {
	l := model.LayoutTable(table)
	if l.Rows == 0 || l.Cols == 0 {
		return ""
	}

	lines := make([][]string, len(l.Cells))
	for i, p := range l.Cells {
		if p.Cell != nil {
			lines[i] = w.cellLines(p.Cell)
		}
	}

	widths := make([]int, l.Cols)
	for c := range widths {
		widths[c] = w.opts.minWidth()
	}
	heights := make([]int, l.Rows)
	for r := range heights {
		heights[r] = 1
	}

	// Single-slot cells first, then spanning cells from the narrowest.
	order := make([]int, len(l.Cells))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return l.Cells[a].ColSpan*l.Cells[a].RowSpan - l.Cells[b].ColSpan*l.Cells[b].RowSpan
	})
	for _, i := range order {
		p := l.Cells[i]
		need := 0
		if c := p.Cell; c != nil && c.Attrs.VAlign != model.VAlignNone {
			// room for both alignment markers and the valign marker
			need = 5
		}
		for _, line := range lines[i] {
			need = max(need, displayWidth(line)+2)
		}
		grow(widths, p.Col, p.ColSpan, need)
		grow(heights, p.Row, p.RowSpan, len(lines[i]))
	}

	rowTop := offsets(heights)
	colLeft := offsets(widths)
	cv := newCanvas(rowTop[l.Rows]+1, colLeft[l.Cols]+1)

	rect := func(p model.Placement) (top, left, bottom, right int) {
		return rowTop[p.Row], colLeft[p.Col], rowTop[p.Row+p.RowSpan], colLeft[p.Col+p.ColSpan]
	}

	for _, p := range l.Cells {
		top, left, bottom, right := rect(p)
		for c := left + 1; c < right; c++ {
			cv.set(top, c, rowRuleChar)
			cv.set(bottom, c, rowRuleChar)
		}
		for r := top + 1; r < bottom; r++ {
			cv.set(r, left, columnRuleChar)
			cv.set(r, right, columnRuleChar)
		}
	}
	for _, p := range l.Cells {
		top, left, bottom, right := rect(p)
		cv.set(top, left, cornerChar)
		cv.set(top, right, cornerChar)
		cv.set(bottom, left, cornerChar)
		cv.set(bottom, right, cornerChar)
	}

	if l.HeadRows > 0 && l.HeadRows < l.Rows {
		sectionLine(cv, rowTop[l.HeadRows])
	}
	if l.FootRows > 0 && l.FootRows < l.Rows {
		sectionLine(cv, rowTop[l.Rows-l.FootRows])
	}

	for i, p := range l.Cells {
		top, left, _, right := rect(p)
		if p.Cell != nil {
			lm, rm := alignMarkers(p.Cell.Attrs.Align)
			if lm != "" {
				cv.set(top, left+1, lm)
			}
			if rm != "" {
				cv.set(top, right-1, rm)
			}
			if vm := valignMarker(p.Cell.Attrs.VAlign); vm != "" {
				mid := (left + right) / 2
				if cv.at(top, mid) == cornerChar {
					mid++
				}
				cv.set(top, mid, vm)
			}
		}
		for k, line := range lines[i] {
			cv.write(top+1+k, left+2, line)
		}
	}
	return cv.String()
}

// grow widens sizes[from:from+span] so that, with the borders between
// them, they cover need
func grow(sizes []int, from, span, need int) {
	have := span - 1
	for _, s := range sizes[from : from+span] {
		have += s
	}
	if need > have {
		sizes[from+span-1] += need - have
	}
}

// offsets returns the border positions for a run of sizes
func offsets(sizes []int) []int {
	out := make([]int, len(sizes)+1)
	for i, s := range sizes {
		out[i+1] = out[i] + s + 1
	}
	return out
}

func sectionLine(cv *canvas, row int) {
	for c := 0; c < cv.width; c++ {
		if cv.at(row, c) == rowRuleChar {
			cv.set(row, c, sectionRule)
		}
	}
}

// cellLines renders a cell's blocks as markdown lines. A '|' in the text
// is written as `\|` so that it never reads as a column border.
func (w *writer) cellLines(cell *model.Node) []string {
	text := w.blocks(cell.Content, true)
	if text == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(text, columnRuleChar, escapedRule), "\n")
}

// undrawnBorders reports whether some border between two visual rows or
// columns is not drawn by any cell. Spans across such a border cannot be
// read back from the grid form.
func undrawnBorders(l *model.Layout) bool {
	if l.Rows == 0 || l.Cols == 0 {
		return false
	}
	rows := make([]bool, l.Rows+1)
	cols := make([]bool, l.Cols+1)
	for _, p := range l.Cells {
		rows[p.Row], rows[p.Row+p.RowSpan] = true, true
		cols[p.Col], cols[p.Col+p.ColSpan] = true, true
	}
	return slices.Contains(rows, false) || slices.Contains(cols, false)
}
