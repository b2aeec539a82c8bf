package commands

import (
	"slices"

	"github.com/tsawler/gridtable/model"
	"github.com/tsawler/gridtable/transform"
)

// AddColumnAfter inserts an empty cell into every row of the table at the
// column following the current cell's span
func AddColumnAfter(s State) (bool, *transform.Transaction) {
	return addColumn(s, true)
}

// AddColumnBefore inserts an empty cell into every row of the table at the
// current cell's column
func AddColumnBefore(s State) (bool, *transform.Transaction) {
	return addColumn(s, false)
}

func addColumn(s State, after bool) (bool, *transform.Transaction) {
	ctx, ok := findContext(s)
	if !ok || ctx.cell == nil {
		return false, nil
	}
	m, ok := ColumnMetrics(ctx.row.Node, ctx.row.Pos, ctx.cell.Pos)
	if !ok {
		return false, nil
	}
	target := m.Index
	if after {
		target += m.Span
	}

	// Every position is computed against the unmodified document and
	// applied from the end so earlier insertions cannot shift later ones.
	var positions []int
	for _, row := range model.TableRows(ctx.table) {
		positions = append(positions, columnInsertPos(row, target))
	}
	if len(positions) == 0 {
		return false, nil
	}
	slices.Sort(positions)

	tr := transform.New(s.Doc)
	for _, pos := range slices.Backward(positions) {
		if err := tr.Insert(pos, model.NewCell(model.DefaultCellAttrs())); err != nil {
			return false, nil
		}
	}
	return true, tr
}

// deletion is a range removed by DeleteColumn
type deletion struct {
	from, to int
}

// DeleteColumn removes, from every row of the table, the cell whose span
// covers the current cell's column. A cell spanning several columns is
// removed whole. A row left without cells is removed, as is a head or foot
// left without rows; when the body would be left without rows the whole
// table is deleted.
func DeleteColumn(s State) (bool, *transform.Transaction) {
	ctx, ok := findContext(s)
	if !ok || ctx.cell == nil {
		return false, nil
	}
	m, ok := ColumnMetrics(ctx.row.Node, ctx.row.Pos, ctx.cell.Pos)
	if !ok {
		return false, nil
	}

	var ranges []deletion
	removesBody := false
	ctx.table.Node.ForEach(func(section *model.Node, offset, _ int) {
		if !section.Type.IsSection() {
			return
		}
		sectionRef := model.NodeRef{Node: section, Pos: ctx.table.ContentStart() + offset, Depth: ctx.table.Depth + 1}

		var sectionRanges []deletion
		emptied := 0
		section.ForEach(func(row *model.Node, rowOffset, _ int) {
			rowRef := model.NodeRef{Node: row, Pos: sectionRef.ContentStart() + rowOffset, Depth: sectionRef.Depth + 1}
			cell, ok := cellAtColumn(rowRef, m.Index)
			if !ok {
				return
			}
			if row.ChildCount() == 1 {
				emptied++
				sectionRanges = append(sectionRanges, deletion{rowRef.Pos, rowRef.End()})
				return
			}
			sectionRanges = append(sectionRanges, deletion{cell.Pos, cell.End()})
		})

		if emptied > 0 && emptied == section.ChildCount() {
			if section.Type == model.NodeTableBody {
				removesBody = true
			}
			ranges = append(ranges, deletion{sectionRef.Pos, sectionRef.End()})
			return
		}
		ranges = append(ranges, sectionRanges...)
	})

	if removesBody {
		ranges = []deletion{{ctx.table.Pos, ctx.table.End()}}
	}
	if len(ranges) == 0 {
		return false, nil
	}

	slices.SortFunc(ranges, func(a, b deletion) int { return b.from - a.from })
	tr := transform.New(s.Doc)
	for _, d := range ranges {
		if err := tr.Delete(d.from, d.to); err != nil {
			return false, nil
		}
	}

	tr.SetSelection(cursorAfterDelete(tr, ctx.table.Pos, tr.MapPos(ctx.cell.Pos, -1), -1))
	return true, tr
}
