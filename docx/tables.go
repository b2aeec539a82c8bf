package docx

import (
	"github.com/tsawler/gridtable/model"
)

// pendingCell is a cell whose row span is still growing while later rows
// continue its vertical merge
type pendingCell struct {
	attrs  model.Attrs
	blocks []*model.Node
	row    int
}

// table converts a Word table into a grid table. Leading rows marked as
// repeated headers form the head; vertical merges never cross from the head
// into the body.
func (c *converter) table(t *tableXML) *model.Node {
	if len(t.Rows) == 0 {
		return nil
	}

	headRows := 0
	for headRows < len(t.Rows) && t.Rows[headRows].Properties.Header.On() {
		headRows++
	}
	if headRows == len(t.Rows) {
		headRows = 0
	}

	rows := make([][]*pendingCell, len(t.Rows))
	open := make(map[int]*pendingCell) // start column -> merge accepting continuations
	for r, tr := range t.Rows {
		if r == headRows {
			clear(open)
		}

		col := 0
		if n := tr.Properties.GridBefore.Int(0); n > 0 {
			rows[r] = append(rows[r], c.fillerCell(n, r))
			col += n
		}
		for i := range tr.Cells {
			tc := &tr.Cells[i]
			span := max(tc.Properties.GridSpan.Int(1), 1)
			vm := tc.Properties.VMerge

			if vm.Present() && vm.Val != "restart" {
				if start, ok := open[col]; ok && start.attrs.ColSpan == span {
					start.attrs.RowSpan++
					col += span
					continue
				}
			}

			cell := &pendingCell{attrs: c.cellAttrs(tc, span), blocks: c.cellBlocks(tc), row: r}
			rows[r] = append(rows[r], cell)
			for k := col; k < col+span; k++ {
				delete(open, k)
			}
			if vm.Present() {
				open[col] = cell
			}
			col += span
		}
		if n := tr.Properties.GridAfter.Int(0); n > 0 {
			rows[r] = append(rows[r], c.fillerCell(n, r))
		}
	}

	// A row made only of merge continuations cannot be represented; drop
	// it and shorten the spans running through it.
	var head, body []*model.Node
	for r, cells := range rows {
		if len(cells) == 0 {
			for _, above := range rows[:r] {
				for _, p := range above {
					if p.row+p.attrs.RowSpan > r {
						p.attrs.RowSpan--
					}
				}
			}
		}
	}
	for r, cells := range rows {
		if len(cells) == 0 {
			continue
		}
		nodes := make([]*model.Node, len(cells))
		for i, p := range cells {
			nodes[i] = model.NewCell(p.attrs, p.blocks...)
		}
		if r < headRows {
			head = append(head, model.NewRow(nodes...))
		} else {
			body = append(body, model.NewRow(nodes...))
		}
	}

	if len(head)+len(body) == 0 {
		return nil
	}
	if len(body) == 0 {
		body = []*model.Node{model.EmptyRow(model.RowWidth(head[len(head)-1]))}
	}
	var headSection *model.Node
	if len(head) > 0 {
		headSection = model.NewSection(model.NodeTableHead, head...)
	}
	return model.NewTable(headSection, model.NewSection(model.NodeTableBody, body...), nil)
}

// fillerCell stands in for grid columns a row skips with gridBefore or
// gridAfter
func (c *converter) fillerCell(cols, row int) *pendingCell {
	return &pendingCell{
		attrs:  model.Attrs{ColSpan: cols, RowSpan: 1},
		blocks: []*model.Node{model.NewParagraph("")},
		row:    row,
	}
}

func (c *converter) cellAttrs(tc *contentXML, span int) model.Attrs {
	attrs := model.Attrs{ColSpan: span, RowSpan: 1}

	for _, b := range tc.Blocks {
		if b.Paragraph != nil {
			attrs.Align = alignment(c.styles.justification(b.Paragraph))
			break
		}
	}

	switch tc.Properties.VAlign.Val {
	case "top":
		attrs.VAlign = model.VAlignTop
	case "center":
		attrs.VAlign = model.VAlignMiddle
	case "bottom":
		attrs.VAlign = model.VAlignBottom
	}
	return attrs
}

// alignment maps a w:jc value. Both the current (start/end) and the
// transitional (left/right) names occur in the wild.
func alignment(jc string) model.Align {
	switch jc {
	case "left", "start":
		return model.AlignLeft
	case "center":
		return model.AlignCenter
	case "right", "end":
		return model.AlignRight
	case "both", "distribute":
		return model.AlignJustify
	}
	return model.AlignNone
}

// cellBlocks converts cell content. A cell always holds at least one
// paragraph.
func (c *converter) cellBlocks(tc *contentXML) []*model.Node {
	blocks := c.blocks(tc.Blocks)
	if len(blocks) == 0 {
		return []*model.Node{model.NewParagraph("")}
	}
	return blocks
}
