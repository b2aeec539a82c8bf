package commands

import "github.com/tsawler/gridtable/model"

// Metrics is the derived column address of a cell within its row
type Metrics struct {
	Index int // zero-based column of the cell's first slot
	Span  int // the cell's column span
}

// ColumnMetrics walks the cells of row, which starts at rowPos, summing
// column spans until it reaches the cell starting at cellPos. It returns
// false when no cell of the row starts there.
//
// Row spans of cells in earlier rows are not taken into account: a row
// beneath a row-spanning cell is addressed by its own cells only.
func ColumnMetrics(row *model.Node, rowPos, cellPos int) (Metrics, bool) {
	index := 0
	var m Metrics
	found := false
	row.ForEach(func(child *model.Node, offset, _ int) {
		if found || child.Type != model.NodeTableCell {
			return
		}
		if rowPos+1+offset == cellPos {
			m = Metrics{Index: index, Span: child.Attrs.Cols()}
			found = true
			return
		}
		index += child.Attrs.Cols()
	})
	return m, found
}

// columnInsertPos returns the position at which a cell must be inserted
// into row so that it starts at column target: after the last cell that
// begins before target, or at the row's content start.
func columnInsertPos(row model.NodeRef, target int) int {
	column := 0
	pos := row.ContentStart()
	for _, cell := range model.RowCells(row) {
		if column >= target {
			break
		}
		pos = cell.End()
		column += cell.Node.Attrs.Cols()
	}
	return pos
}

// cellAtColumn returns the cell of row whose span covers column target
func cellAtColumn(row model.NodeRef, target int) (model.NodeRef, bool) {
	column := 0
	for _, cell := range model.RowCells(row) {
		span := cell.Node.Attrs.Cols()
		if target >= column && target < column+span {
			return cell, true
		}
		column += span
	}
	return model.NodeRef{}, false
}
