package pptx

import (
	"github.com/tsawler/gridtable/model"
)

// pendingCell is a cell whose row span may still shrink when rows are
// dropped
type pendingCell struct {
	attrs  model.Attrs
	blocks []*model.Node
	row    int
}

// table converts a DrawingML table into a grid table. Cells continuing a
// merge (hMerge, vMerge) are skipped. With the first row option the first
// row forms the head and with the last row option the last row forms the
// foot, as long as a body row remains. Spans never leave their section.
func table(tbl *tblXML) *model.Node {
	n := len(tbl.Tr)
	if n == 0 {
		return nil
	}
	headRows, footRows := 0, 0
	if tbl.Props.FirstRow.on() && n > 1 {
		headRows = 1
	}
	if tbl.Props.LastRow.on() && n-headRows > 1 {
		footRows = 1
	}
	// sectionEnd returns the row index just past the section holding r
	sectionEnd := func(r int) int {
		switch {
		case r < headRows:
			return headRows
		case r >= n-footRows:
			return n
		}
		return n - footRows
	}

	cells := make([][]*pendingCell, n)
	coveredUntil := make(map[int]int) // column -> first row no longer spanned
	for r, tr := range tbl.Tr {
		end := sectionEnd(r)
		col := 0
		for i := range tr.Tc {
			tc := &tr.Tc[i]
			cols := span(tc.GridSpan)
			start := col
			col += cols
			if tc.HMerge.on() {
				continue
			}
			if tc.VMerge.on() {
				// A merge cut at a section boundary leaves an empty cell
				if coveredUntil[start] <= r {
					cells[r] = append(cells[r], &pendingCell{attrs: model.Attrs{ColSpan: cols, RowSpan: 1}, row: r})
				}
				continue
			}
			attrs := model.Attrs{
				ColSpan: cols,
				RowSpan: min(span(tc.RowSpan), end-r),
				VAlign:  vAlign(tc.Props.Anchor),
			}
			for k := start; k < col; k++ {
				coveredUntil[k] = r + attrs.RowSpan
			}
			var paras []*model.Node
			if tc.TxBody != nil {
				for j := range tc.TxBody.P {
					p := &tc.TxBody.P[j]
					if j == 0 {
						attrs.Align = align(p.Align)
					}
					if text := paragraphText(p); text != "" {
						paras = append(paras, model.NewParagraph(text))
					}
				}
			}
			cells[r] = append(cells[r], &pendingCell{attrs: attrs, blocks: paras, row: r})
		}
	}

	// A row made only of merge continuations cannot be represented; drop it
	// and shorten the spans running through it.
	for r, row := range cells {
		if len(row) > 0 {
			continue
		}
		for _, above := range cells[:r] {
			for _, p := range above {
				if p.row+p.attrs.RowSpan > r {
					p.attrs.RowSpan--
				}
			}
		}
	}

	var head, body, foot []*model.Node
	for r, row := range cells {
		if len(row) == 0 {
			continue
		}
		nodes := make([]*model.Node, len(row))
		for i, p := range row {
			nodes[i] = model.NewCell(p.attrs, p.blocks...)
		}
		switch {
		case r < headRows:
			head = append(head, model.NewRow(nodes...))
		case r >= n-footRows:
			foot = append(foot, model.NewRow(nodes...))
		default:
			body = append(body, model.NewRow(nodes...))
		}
	}
	if len(head)+len(body)+len(foot) == 0 {
		return nil
	}
	if len(body) == 0 {
		width := 1
		for _, rows := range [][]*model.Node{head, foot} {
			if len(rows) > 0 {
				width = model.RowWidth(rows[0])
			}
		}
		body = []*model.Node{model.EmptyRow(width)}
	}

	var headSection, footSection *model.Node
	if len(head) > 0 {
		headSection = model.NewSection(model.NodeTableHead, head...)
	}
	if len(foot) > 0 {
		footSection = model.NewSection(model.NodeTableFoot, foot...)
	}
	return model.NewTable(headSection, model.NewSection(model.NodeTableBody, body...), footSection)
}

func align(algn string) model.Align {
	switch algn {
	case "l":
		return model.AlignLeft
	case "ctr":
		return model.AlignCenter
	case "r":
		return model.AlignRight
	case "just", "dist":
		return model.AlignJustify
	}
	return model.AlignNone
}

func vAlign(anchor string) model.VAlign {
	switch anchor {
	case "t":
		return model.VAlignTop
	case "ctr":
		return model.VAlignMiddle
	case "b":
		return model.VAlignBottom
	}
	return model.VAlignNone
}
