package model

import "fmt"

// Selection is an anchor/head pair of document positions. An empty
// selection (Anchor == Head) is a cursor.
type Selection struct {
	Anchor int
	Head   int
}

// Cursor returns an empty selection at pos
func Cursor(pos int) Selection {
	return Selection{Anchor: pos, Head: pos}
}

// From returns the smaller end of the selection
func (s Selection) From() int { return min(s.Anchor, s.Head) }

// To returns the larger end of the selection
func (s Selection) To() int { return max(s.Anchor, s.Head) }

// Empty reports whether the selection is a cursor
func (s Selection) Empty() bool { return s.Anchor == s.Head }

// Tables returns every grid table in the document in order, including
// tables nested inside cells
func Tables(doc *Node) []NodeRef {
	var tables []NodeRef
	doc.Descendants(0, func(n *Node, pos int) bool {
		if n.Type == NodeTable {
			tables = append(tables, NodeRef{Node: n, Pos: pos})
		}
		return !n.IsTextblock()
	})
	return tables
}

// TableRows returns the rows of a table in head, body, foot order together
// with their positions
func TableRows(table NodeRef) []NodeRef {
	var rows []NodeRef
	table.Node.ForEach(func(section *Node, offset, _ int) {
		if !section.Type.IsSection() {
			return
		}
		sectionStart := table.ContentStart() + offset + 1
		section.ForEach(func(row *Node, rowOffset, _ int) {
			if row.Type == NodeTableRow {
				rows = append(rows, NodeRef{Node: row, Pos: sectionStart + rowOffset, Depth: table.Depth + 2})
			}
		})
	})
	return rows
}

// RowCells returns the cells of a row with their positions
func RowCells(row NodeRef) []NodeRef {
	var cells []NodeRef
	row.Node.ForEach(func(cell *Node, offset, _ int) {
		if cell.Type == NodeTableCell {
			cells = append(cells, NodeRef{Node: cell, Pos: row.ContentStart() + offset, Depth: row.Depth + 1})
		}
	})
	return cells
}

// CellCursor returns a cursor position inside the first textblock of a
// cell, addressed by table index (document order), row index across all
// sections and cell index within the row. All indexes are zero-based.
func CellCursor(doc *Node, table, row, cell int) (int, error) {
	tables := Tables(doc)
	if table < 0 || table >= len(tables) {
		return 0, fmt.Errorf("%w: table %d of %d", ErrInvalidPosition, table, len(tables))
	}
	rows := TableRows(tables[table])
	if row < 0 || row >= len(rows) {
		return 0, fmt.Errorf("%w: row %d of %d", ErrInvalidPosition, row, len(rows))
	}
	cells := RowCells(rows[row])
	if cell < 0 || cell >= len(cells) {
		return 0, fmt.Errorf("%w: cell %d of %d", ErrInvalidPosition, cell, len(cells))
	}
	pos, ok := FindCursor(doc, cells[cell].ContentStart(), 1)
	if !ok || pos >= cells[cell].End() {
		return 0, fmt.Errorf("%w: cell %d has no text block", ErrInvalidPosition, cell)
	}
	return pos, nil
}
