package commands

import (
	"github.com/tsawler/gridtable/model"
	"github.com/tsawler/gridtable/transform"
)

// MergeCellRight widens the current cell by the column span of its right
// neighbour and deletes the neighbour. The neighbour's content is
// discarded.
func MergeCellRight(s State) (bool, *transform.Transaction) {
	ctx, ok := findContext(s)
	if !ok || ctx.cell == nil {
		return false, nil
	}

	var next *model.NodeRef
	for _, c := range model.RowCells(*ctx.row) {
		if c.Pos > ctx.cell.Pos {
			next = &c
			break
		}
	}
	if next == nil {
		return false, nil
	}

	attrs := ctx.cell.Node.Attrs
	attrs.ColSpan = attrs.Cols() + next.Node.Attrs.Cols()
	tr := transform.New(s.Doc)
	if err := tr.SetNodeAttrs(ctx.cell.Pos, attrs); err != nil {
		return false, nil
	}
	if err := tr.Delete(next.Pos, next.End()); err != nil {
		return false, nil
	}
	return true, tr
}

// SplitCell narrows a cell spanning several columns by one column and
// inserts an empty cell after it with the same row span and alignments
func SplitCell(s State) (bool, *transform.Transaction) {
	ctx, ok := findContext(s)
	if !ok || ctx.cell == nil {
		return false, nil
	}
	attrs := ctx.cell.Node.Attrs
	if attrs.Cols() <= 1 {
		return false, nil
	}

	fresh := model.NewCell(model.Attrs{
		ColSpan: 1,
		RowSpan: attrs.Rows(),
		Align:   attrs.Align,
		VAlign:  attrs.VAlign,
	})
	attrs.ColSpan = attrs.Cols() - 1

	tr := transform.New(s.Doc)
	if err := tr.SetNodeAttrs(ctx.cell.Pos, attrs); err != nil {
		return false, nil
	}
	if err := tr.Insert(ctx.cell.End(), fresh); err != nil {
		return false, nil
	}
	return true, tr
}

// SetAlign returns a command that sets the current cell's horizontal
// alignment. AlignNone clears it.
func SetAlign(align model.Align) Command {
	return updateCellAttrs(func(a *model.Attrs) bool {
		a.Align = align
		return align.Valid()
	})
}

// SetVAlign returns a command that sets the current cell's vertical
// alignment. VAlignNone clears it.
func SetVAlign(valign model.VAlign) Command {
	return updateCellAttrs(func(a *model.Attrs) bool {
		a.VAlign = valign
		return valign.Valid()
	})
}

func updateCellAttrs(update func(*model.Attrs) bool) Command {
	return func(s State) (bool, *transform.Transaction) {
		ctx, ok := findContext(s)
		if !ok || ctx.cell == nil {
			return false, nil
		}
		attrs := ctx.cell.Node.Attrs
		if !update(&attrs) {
			return false, nil
		}
		tr := transform.New(s.Doc)
		if err := tr.SetNodeAttrs(ctx.cell.Pos, attrs); err != nil {
			return false, nil
		}
		return true, tr
	}
}
