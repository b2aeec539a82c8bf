package transform

import (
	"github.com/tsawler/gridtable/model"
)

// Transaction accumulates steps against a starting document. Each step is
// applied immediately; a failed step leaves the transaction unchanged.
type Transaction struct {
	before    *model.Node
	doc       *model.Node
	steps     []Step
	mapping   Mapping
	selection *model.Selection
}

// New starts a transaction on doc
func New(doc *model.Node) *Transaction {
	return &Transaction{before: doc, doc: doc}
}

// Doc returns the current document
func (tr *Transaction) Doc() *model.Node { return tr.doc }

// Before returns the document the transaction started from
func (tr *Transaction) Before() *model.Node { return tr.before }

// Steps returns the applied steps
func (tr *Transaction) Steps() []Step { return tr.steps }

// Mapping returns the step maps of every applied step
func (tr *Transaction) Mapping() Mapping { return tr.mapping }

// DocChanged reports whether any step was applied
func (tr *Transaction) DocChanged() bool { return len(tr.steps) > 0 }

// Step applies s to the current document
func (tr *Transaction) Step(s Step) error {
	doc, err := s.Apply(tr.doc)
	if err != nil {
		return err
	}
	tr.doc = doc
	tr.steps = append(tr.steps, s)
	tr.mapping = append(tr.mapping, s.Map())
	return nil
}

// Replace replaces [from, to] with nodes
func (tr *Transaction) Replace(from, to int, nodes ...*model.Node) error {
	return tr.Step(ReplaceStep{From: from, To: to, Content: nodes})
}

// Insert inserts nodes at pos
func (tr *Transaction) Insert(pos int, nodes ...*model.Node) error {
	return tr.Replace(pos, pos, nodes...)
}

// Delete removes [from, to]
func (tr *Transaction) Delete(from, to int) error {
	if from == to {
		return nil
	}
	return tr.Replace(from, to)
}

// SetNodeAttrs replaces the attributes of the node starting at pos
func (tr *Transaction) SetNodeAttrs(pos int, attrs model.Attrs) error {
	return tr.Step(AttrStep{Pos: pos, Attrs: attrs})
}

// MapPos maps a position in the starting document to the current one
func (tr *Transaction) MapPos(pos, assoc int) int {
	return tr.mapping.MapPos(pos, assoc)
}

// SetSelection sets the selection the transaction leaves behind
func (tr *Transaction) SetSelection(sel model.Selection) {
	tr.selection = &sel
}

// Selection returns the selection set with SetSelection, if any
func (tr *Transaction) Selection() (model.Selection, bool) {
	if tr.selection == nil {
		return model.Selection{}, false
	}
	return *tr.selection, true
}
