package gridtable

import (
	"fmt"

	"github.com/tsawler/gridtable/commands"
	"github.com/tsawler/gridtable/htmldoc"
	"github.com/tsawler/gridtable/markup"
	"github.com/tsawler/gridtable/model"
	"github.com/tsawler/gridtable/transform"
)

// Editor holds a document and a selection and applies table commands to
// them. It plays the part of a host editor: it keeps the current state,
// dispatches commands by name or key and applies the transactions they
// return. An Editor is not safe for concurrent use.
type Editor struct {
	state    commands.State
	registry *commands.Registry
	keymap   commands.Keymap
	rules    []commands.InputRule
}

// New creates an editor for doc with the cursor in its first textblock. A
// nil or empty document is replaced by one holding an empty paragraph.
func New(doc *model.Node) *Editor {
	if doc == nil || len(doc.Content) == 0 {
		doc = model.NewDoc(model.NewParagraph(""))
	}
	pos, ok := model.FindCursor(doc, 0, 1)
	if !ok {
		pos = 0
	}
	return &Editor{
		state:    commands.NewState(doc, model.Cursor(pos)),
		registry: commands.DefaultRegistry(),
		keymap:   commands.DefaultKeymap(),
		rules:    commands.DefaultInputRules(),
	}
}

// FromMarkdown parses src and returns an editor for it
func FromMarkdown(src string) (*Editor, []Warning) {
	doc, diags := markup.Parse(src)
	return New(doc), fromDiagnostics(diags)
}

// State returns the current editor state
func (e *Editor) State() commands.State { return e.state }

// Doc returns the current document
func (e *Editor) Doc() *model.Node { return e.state.Doc }

// Selection returns the current selection
func (e *Editor) Selection() model.Selection { return e.state.Selection }

// Registry returns the command registry used by Exec
func (e *Editor) Registry() *commands.Registry { return e.registry }

// Select sets the selection. Positions are clamped to the document.
func (e *Editor) Select(sel model.Selection) {
	e.state = commands.NewState(e.state.Doc, sel)
}

// MoveTo places the cursor at pos
func (e *Editor) MoveTo(pos int) error {
	if _, err := model.Resolve(e.state.Doc, pos); err != nil {
		return err
	}
	e.Select(model.Cursor(pos))
	return nil
}

// MoveToCell places the cursor in a cell, addressed by table index in
// document order, row index across all sections and cell index in the row
func (e *Editor) MoveToCell(table, row, cell int) error {
	pos, err := model.CellCursor(e.state.Doc, table, row, cell)
	if err != nil {
		return err
	}
	e.Select(model.Cursor(pos))
	return nil
}

// Run applies cmd and reports whether it applied
func (e *Editor) Run(cmd commands.Command) bool {
	ok, tr := cmd(e.state)
	if !ok {
		return false
	}
	e.state = e.state.Apply(tr)
	return true
}

// Exec runs the command registered under name, such as "addRowAfter" or
// "setAlign center". It reports whether the command applied; an error means
// the name or arguments were not understood.
func (e *Editor) Exec(name string, args ...string) (bool, error) {
	cmd, err := e.registry.Lookup(name, args...)
	if err != nil {
		return false, err
	}
	return e.Run(cmd), nil
}

// Key runs the command bound to key, such as "Tab" or "Mod-Enter"
func (e *Editor) Key(key string) bool {
	ok, tr := e.keymap.Handle(key, e.state)
	if !ok {
		return false
	}
	e.state = e.state.Apply(tr)
	return true
}

// Type inserts text at the selection, replacing it, then applies the input
// rules. It reports whether the text was inserted; the cursor must be in a
// textblock.
func (e *Editor) Type(text string) (bool, error) {
	sel := e.state.Selection
	r, err := model.Resolve(e.state.Doc, sel.From())
	if err != nil {
		return false, err
	}
	if !r.Parent().IsTextblock() {
		return false, nil
	}

	tr := transform.New(e.state.Doc)
	if !sel.Empty() {
		if err := tr.Delete(sel.From(), sel.To()); err != nil {
			return false, fmt.Errorf("deleting selection: %w", err)
		}
	}
	if text != "" {
		if err := tr.Insert(sel.From(), model.NewText(text)); err != nil {
			return false, fmt.Errorf("inserting text: %w", err)
		}
	}
	tr.SetSelection(model.Cursor(sel.From() + len([]rune(text))))
	e.state = e.state.Apply(tr)

	e.Run(commands.ApplyInputRules(e.rules))
	return true, nil
}

// InTable reports whether the cursor is inside a grid table
func (e *Editor) InTable() bool {
	return commands.IsInTable(e.state)
}

// Validate checks the structural invariants of every table
func (e *Editor) Validate() error {
	return model.Validate(e.state.Doc)
}

// Markdown serializes the document
func (e *Editor) Markdown(opts markup.Options) (string, []Warning) {
	out, diags := markup.Serialize(e.state.Doc, opts)
	return out, fromDiagnostics(diags)
}

// HTML renders the document without promotion, so that grid tables keep
// their grid-table marker
func (e *Editor) HTML(opts htmldoc.Options) (string, error) {
	return htmldoc.RenderString(e.state.Doc, opts)
}
