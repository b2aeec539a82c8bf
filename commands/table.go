package commands

import (
	"fmt"

	"github.com/tsawler/gridtable/model"
	"github.com/tsawler/gridtable/transform"
)

// InsertTable returns a command that replaces the selection with a new
// table of empty cells. The head, when requested, takes one of the rows;
// the body always gets at least one row and the footer is a single row.
// The cursor moves into the table's first cell.
//
// A cursor in an empty textblock replaces it. A cursor at the start or end
// of a textblock inserts the table before or after it, and anywhere else
// the textblock is split around the table.
func InsertTable(rows, cols int, hasHeader, hasFooter bool) Command {
	return func(s State) (bool, *transform.Transaction) {
		tr := transform.New(s.Doc)
		pos := s.Selection.From()
		if !s.Selection.Empty() {
			if err := deleteRange(tr, pos, s.Selection.To()); err != nil {
				return false, nil
			}
		}

		table := model.BuildTable(rows, cols, hasHeader, hasFooter)
		tablePos, err := insertBlock(tr, pos, table)
		if err != nil {
			return false, nil
		}
		tr.SetSelection(model.Cursor(cursorIn(tr.Doc(), model.NodeRef{Node: table, Pos: tablePos})))
		return true, tr
	}
}

// deleteRange deletes the content between from and to. When the ends lie
// in different textblocks of the same parent, the blocks between them are
// dropped and what is left of the last textblock is joined onto the first.
func deleteRange(tr *transform.Transaction, from, to int) error {
	start, err := model.Resolve(tr.Doc(), from)
	if err != nil {
		return err
	}
	end, err := model.Resolve(tr.Doc(), to)
	if err != nil {
		return err
	}
	d := start.Depth
	if end.Depth == d && end.Start(d) == start.Start(d) {
		return tr.Delete(from, to)
	}

	first, last := start.Parent(), end.Parent()
	if d == 0 || end.Depth != d || !first.IsTextblock() || !last.IsTextblock() ||
		end.Start(d-1) != start.Start(d-1) {
		return fmt.Errorf("delete: %w: [%d, %d] is not a range of sibling blocks", model.ErrInvalidPosition, from, to)
	}
	tail := last.Cut(end.ParentOffset, last.ContentSize())
	joined, err := first.ReplaceContent(start.ParentOffset, first.ContentSize(), tail)
	if err != nil {
		return err
	}
	return tr.Replace(start.Before(d), end.After(d), joined)
}

// insertBlock inserts block at pos, splitting or replacing a textblock as
// InsertTable describes. It returns the position before the inserted block.
func insertBlock(tr *transform.Transaction, pos int, block *model.Node) (int, error) {
	r, err := model.Resolve(tr.Doc(), pos)
	if err != nil {
		return 0, err
	}

	if r.Parent().IsTextblock() && r.Depth > 0 {
		tb := model.NodeRef{Node: r.Parent(), Pos: r.Before(r.Depth), Depth: r.Depth}
		size := tb.Node.ContentSize()
		switch offset := r.ParentOffset; {
		case size == 0:
			return tb.Pos, tr.Replace(tb.Pos, tb.End(), block)
		case offset == 0:
			return tb.Pos, tr.Insert(tb.Pos, block)
		case offset == size:
			return tb.End(), tr.Insert(tb.End(), block)
		default:
			tail := tb.Node.Copy(tb.Node.Cut(offset, size))
			if err := tr.Delete(pos, tb.End()-1); err != nil {
				return 0, err
			}
			at := pos + 1
			return at, tr.Insert(at, block, tail)
		}
	}

	// Outside a textblock, climb to the nearest node that holds blocks.
	d := r.Depth
	for d > 0 && !acceptsBlocks(r.Node(d)) {
		d--
	}
	if d == r.Depth {
		return pos, tr.Insert(pos, block)
	}
	at := r.After(d + 1)
	return at, tr.Insert(at, block)
}

func acceptsBlocks(n *model.Node) bool {
	switch n.Type {
	case model.NodeDoc, model.NodeBlockquote, model.NodeTableCell:
		return true
	}
	return false
}

// ExitTable inserts an empty paragraph directly after the table around the
// cursor and moves the cursor into it. The table is left intact.
func ExitTable(s State) (bool, *transform.Transaction) {
	ctx, ok := findContext(s)
	if !ok {
		return false, nil
	}
	end := ctx.table.End()
	tr := transform.New(s.Doc)
	if err := tr.Insert(end, model.NewParagraph("")); err != nil {
		return false, nil
	}
	tr.SetSelection(model.Cursor(end + 1))
	return true, tr
}

// NextCell moves the cursor into the next cell of the enclosing table, in
// document order
func NextCell(s State) (bool, *transform.Transaction) {
	return moveCell(s, 1)
}

// PrevCell moves the cursor into the previous cell of the enclosing table
func PrevCell(s State) (bool, *transform.Transaction) {
	return moveCell(s, -1)
}

func moveCell(s State, dir int) (bool, *transform.Transaction) {
	ctx, ok := findContext(s)
	if !ok || ctx.cell == nil {
		return false, nil
	}

	var cells []model.NodeRef
	for _, row := range model.TableRows(ctx.table) {
		cells = append(cells, model.RowCells(row)...)
	}

	target := -1
	for i, c := range cells {
		if c.Pos == ctx.cell.Pos {
			target = i + dir
			break
		}
	}
	if target < 0 || target >= len(cells) {
		return false, nil
	}

	tr := transform.New(s.Doc)
	tr.SetSelection(model.Cursor(cursorIn(s.Doc, cells[target])))
	return true, tr
}
