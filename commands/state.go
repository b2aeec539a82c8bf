// Package commands implements the structural editing commands for grid
// tables.
//
// A [Command] is a pure function from an editor [State] to an applicability
// flag and a transaction. Commands never modify the state they are given;
// a host applies the returned transaction with [State.Apply]. A command
// that cannot run in the current context returns false and a nil
// transaction.
//
//	state := commands.NewState(doc, model.Cursor(pos))
//	if ok, tr := commands.AddColumnAfter(state); ok {
//	    state = state.Apply(tr)
//	}
package commands

import (
	"github.com/tsawler/gridtable/model"
	"github.com/tsawler/gridtable/transform"
)

// State is an immutable editor snapshot: a document and a selection in it
type State struct {
	Doc       *model.Node
	Selection model.Selection
}

// NewState creates a state. The selection is clamped to the document.
func NewState(doc *model.Node, sel model.Selection) State {
	size := doc.ContentSize()
	clamp := func(p int) int { return min(max(p, 0), size) }
	return State{Doc: doc, Selection: model.Selection{Anchor: clamp(sel.Anchor), Head: clamp(sel.Head)}}
}

// Apply returns the state after tr. The selection is the one the
// transaction set, or the old selection mapped through its steps.
func (s State) Apply(tr *transform.Transaction) State {
	if tr == nil {
		return s
	}
	if sel, ok := tr.Selection(); ok {
		return NewState(tr.Doc(), sel)
	}
	return NewState(tr.Doc(), model.Selection{
		Anchor: tr.MapPos(s.Selection.Anchor, 1),
		Head:   tr.MapPos(s.Selection.Head, 1),
	})
}

// Command is a structural edit. It reports whether it applies to the state
// and, when it does, the transaction that performs it.
type Command func(s State) (bool, *transform.Transaction)

// Chain returns a command that runs the first applicable command
func Chain(cmds ...Command) Command {
	return func(s State) (bool, *transform.Transaction) {
		for _, cmd := range cmds {
			if ok, tr := cmd(s); ok {
				return true, tr
			}
		}
		return false, nil
	}
}

// tableContext is the table structure around the selection head. Each
// level is only set when the head lies inside it and it belongs to the
// innermost table.
type tableContext struct {
	resolved *model.ResolvedPos
	table    model.NodeRef
	section  *model.NodeRef
	row      *model.NodeRef
	cell     *model.NodeRef
}

// findContext locates the innermost table around the selection head
func findContext(s State) (*tableContext, bool) {
	r, err := model.Resolve(s.Doc, s.Selection.Head)
	if err != nil {
		return nil, false
	}
	table, ok := r.FindAncestor(model.NodeTable)
	if !ok {
		return nil, false
	}

	ctx := &tableContext{resolved: r, table: table}
	level := func(d int, accept func(model.NodeType) bool) *model.NodeRef {
		if r.Depth < d || !accept(r.Node(d).Type) {
			return nil
		}
		return &model.NodeRef{Node: r.Node(d), Pos: r.Before(d), Depth: d}
	}
	ctx.section = level(table.Depth+1, model.NodeType.IsSection)
	if ctx.section != nil {
		ctx.row = level(table.Depth+2, func(t model.NodeType) bool { return t == model.NodeTableRow })
	}
	if ctx.row != nil {
		ctx.cell = level(table.Depth+3, func(t model.NodeType) bool { return t == model.NodeTableCell })
	}
	return ctx, true
}

// IsInTable reports whether the selection head lies inside a grid table
func IsInTable(s State) bool {
	_, ok := findContext(s)
	return ok
}

// cursorIn returns a cursor position in the first textblock of ref, or its
// content start when it holds none
func cursorIn(doc *model.Node, ref model.NodeRef) int {
	if pos, ok := model.FindCursor(doc, ref.ContentStart(), 1); ok && pos < ref.End() {
		return pos
	}
	return ref.ContentStart()
}

// cursorAfterDelete picks the cursor after a deletion at pos inside the
// table that started at tablePos. It searches in direction dir first, then
// the other way, preferring textblocks still inside the table.
func cursorAfterDelete(tr *transform.Transaction, tablePos, pos, dir int) model.Selection {
	doc := tr.Doc()
	lo, hi := -1, doc.ContentSize()+1
	if n, err := model.NodeAt(doc, tablePos); err == nil && n.Type == model.NodeTable {
		lo, hi = tablePos, tablePos+n.Size()
	}
	for _, inside := range []bool{true, false} {
		for _, d := range []int{dir, -dir} {
			cursor, ok := model.FindCursor(doc, pos, d)
			if ok && (!inside || (cursor > lo && cursor < hi)) {
				return model.Cursor(cursor)
			}
		}
	}
	return model.Cursor(min(pos, doc.ContentSize()))
}
