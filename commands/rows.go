package commands

import (
	"github.com/tsawler/gridtable/model"
	"github.com/tsawler/gridtable/transform"
)

// rowFromTemplate copies the cell shape of row: every cell keeps its column
// span and alignments, row spans reset to 1 and content is empty
func rowFromTemplate(row *model.Node) *model.Node {
	var cells []*model.Node
	for _, c := range row.Content {
		if c.Type != model.NodeTableCell {
			continue
		}
		cells = append(cells, model.NewCell(model.Attrs{
			ColSpan: c.Attrs.Cols(),
			RowSpan: 1,
			Align:   c.Attrs.Align,
			VAlign:  c.Attrs.VAlign,
		}))
	}
	if len(cells) == 0 {
		cells = append(cells, model.NewCell(model.DefaultCellAttrs()))
	}
	return model.NewRow(cells...)
}

// AddRowAfter inserts a row shaped like the current one directly after it
func AddRowAfter(s State) (bool, *transform.Transaction) {
	return addRow(s, true)
}

// AddRowBefore inserts a row shaped like the current one directly before it
func AddRowBefore(s State) (bool, *transform.Transaction) {
	return addRow(s, false)
}

func addRow(s State, after bool) (bool, *transform.Transaction) {
	ctx, ok := findContext(s)
	if !ok || ctx.row == nil {
		return false, nil
	}
	pos := ctx.row.Pos
	if after {
		pos = ctx.row.End()
	}
	tr := transform.New(s.Doc)
	if err := tr.Insert(pos, rowFromTemplate(ctx.row.Node)); err != nil {
		return false, nil
	}
	return true, tr
}

// DeleteRow deletes the row around the cursor. The only row of the body
// cannot be deleted. Deleting the only row of a head or foot removes that
// section. The cursor moves into the row that takes the deleted row's
// place, or the previous row.
func DeleteRow(s State) (bool, *transform.Transaction) {
	ctx, ok := findContext(s)
	if !ok || ctx.row == nil {
		return false, nil
	}
	section := ctx.section
	sole := section.Node.ChildCount() == 1
	if sole && section.Node.Type == model.NodeTableBody {
		return false, nil
	}

	from, to := ctx.row.Pos, ctx.row.End()
	if sole {
		from, to = section.Pos, section.End()
	}
	tr := transform.New(s.Doc)
	if err := tr.Delete(from, to); err != nil {
		return false, nil
	}

	tr.SetSelection(cursorAfterDelete(tr, ctx.table.Pos, from, 1))
	return true, tr
}
