package odt

import (
	"github.com/tsawler/gridtable/model"
)

// maxRepeat caps number-rows-repeated and number-columns-repeated, which
// office suites set to huge values for trailing empty cells
const maxRepeat = 100

// pendingCell is a cell whose row span may still shrink when rows are
// dropped
type pendingCell struct {
	attrs  model.Attrs
	blocks []*model.Node
	row    int
}

// table converts an ODF table into a grid table. Header rows form the
// head; a span never reaches past its section.
func (c *converter) table(t *tableXML) *model.Node {
	expand := func(in []rowXML) []rowXML {
		var out []rowXML
		for _, row := range in {
			for range min(row.Repeated, maxRepeat) {
				out = append(out, row)
			}
		}
		return out
	}
	header, body := expand(t.Header), expand(t.Rows)
	rows := append(header, body...)
	if len(rows) == 0 {
		return nil
	}
	headRows := len(header)
	if headRows == len(rows) {
		headRows = 0
	}

	cells := make([][]*pendingCell, len(rows))
	for r, row := range rows {
		end := len(rows)
		if r < headRows {
			end = headRows
		}

		col := 0
		for _, cell := range row.Cells {
			if cell.Covered {
				col += cell.Repeated
				continue
			}
			for range min(cell.Repeated, maxRepeat) {
				if t.Columns > 0 && col >= t.Columns {
					break
				}
				attrs := model.Attrs{
					ColSpan: cell.ColSpan,
					RowSpan: min(cell.RowSpan, end-r),
					VAlign:  c.styles.valign(cell.StyleName),
				}
				attrs.Align = c.cellAlign(&cell)
				cells[r] = append(cells[r], &pendingCell{attrs: attrs, blocks: c.cellBlocks(&cell), row: r})
				col += cell.ColSpan
			}
		}
	}

	// A row made only of covered cells cannot be represented; drop it and
	// shorten the spans running through it.
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

	var head, bodyRows []*model.Node
	for r, row := range cells {
		if len(row) == 0 {
			continue
		}
		nodes := make([]*model.Node, len(row))
		for i, p := range row {
			nodes[i] = model.NewCell(p.attrs, p.blocks...)
		}
		if r < headRows {
			head = append(head, model.NewRow(nodes...))
		} else {
			bodyRows = append(bodyRows, model.NewRow(nodes...))
		}
	}
	if len(head)+len(bodyRows) == 0 {
		return nil
	}
	if len(bodyRows) == 0 {
		bodyRows = []*model.Node{model.EmptyRow(model.RowWidth(head[len(head)-1]))}
	}
	var headSection *model.Node
	if len(head) > 0 {
		headSection = model.NewSection(model.NodeTableHead, head...)
	}
	return model.NewTable(headSection, model.NewSection(model.NodeTableBody, bodyRows...), nil)
}

// cellAlign takes the alignment of the cell's first paragraph
func (c *converter) cellAlign(cell *cellXML) model.Align {
	for _, b := range cell.Content.Blocks {
		if b.Paragraph != nil {
			return c.styles.align(b.Paragraph.StyleName)
		}
	}
	return model.AlignNone
}

// cellBlocks converts cell content. A cell always holds at least one
// paragraph.
func (c *converter) cellBlocks(cell *cellXML) []*model.Node {
	blocks := c.blocks(cell.Content.Blocks)
	if len(blocks) == 0 {
		return []*model.Node{model.NewParagraph("")}
	}
	return blocks
}
