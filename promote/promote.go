// Package promote converts grid tables that need none of the grid form's
// features into simple tables.
//
// A simple table is strictly rectangular: one header row, one or more body
// rows, no footer, no spans, no vertical alignment and a single paragraph
// per cell. Promotion is lossy and one-directional. It is applied when a
// document is serialized and never changes the document being edited.
package promote

import (
	"errors"
	"fmt"

	"github.com/tsawler/gridtable/model"
)

// Reasons a table cannot be promoted
var (
	ErrNotTable     = errors.New("not a table")
	ErrHasFooter    = errors.New("has footer")
	ErrHeadRows     = errors.New("needs exactly one header row")
	ErrNoBodyRows   = errors.New("has no body rows")
	ErrEmptyRow     = errors.New("row has no cells")
	ErrNotRectangle = errors.New("rows differ in cell count")
	ErrSpan         = errors.New("cell spans several rows or columns")
	ErrVAlign       = errors.New("cell has vertical alignment")
	ErrCellContent  = errors.New("cell does not hold exactly one paragraph")
)

// Check reports why table cannot be promoted, or nil when it can. The
// returned error wraps one of the Err* reasons. A simple table always
// passes.
func Check(table *model.Node) error {
	if table.Type == model.NodeSimpleTable {
		return nil
	}
	if table.Type != model.NodeTable {
		return fmt.Errorf("%w: %s", ErrNotTable, table.Type)
	}
	if table.Foot() != nil {
		return ErrHasFooter
	}

	head, body := table.Head(), table.Body()
	if head == nil || head.ChildCount() != 1 {
		return ErrHeadRows
	}
	if body == nil || body.ChildCount() == 0 {
		return ErrNoBodyRows
	}

	rows := append(append([]*model.Node{}, head.Content...), body.Content...)
	want := rows[0].ChildCount()
	if want == 0 {
		return ErrEmptyRow
	}
	for r, row := range rows {
		if got := row.ChildCount(); got != want {
			return fmt.Errorf("row %d has %d cells, want %d: %w", r, got, want, ErrNotRectangle)
		}
		for c, cell := range row.Content {
			if err := checkCell(cell); err != nil {
				return fmt.Errorf("cell (%d, %d): %w", r, c, err)
			}
		}
	}
	return nil
}

func checkCell(cell *model.Node) error {
	if cell.Attrs.Cols() != 1 || cell.Attrs.Rows() != 1 {
		return ErrSpan
	}
	if cell.Attrs.VAlign != model.VAlignNone {
		return ErrVAlign
	}
	if cell.ChildCount() != 1 || cell.FirstChild().Type != model.NodeParagraph {
		return ErrCellContent
	}
	return nil
}

// CanPromoteToSimple reports whether table can be written as a simple table
func CanPromoteToSimple(table *model.Node) bool {
	return Check(table) == nil
}

// simpleAlign maps a grid alignment onto the three a simple table knows
func simpleAlign(a model.Align) model.Align {
	switch a {
	case model.AlignCenter, model.AlignRight:
		return a
	}
	return model.AlignLeft
}

// PromoteToSimple converts a qualifying table into a simple table: the head
// row becomes the header row followed by one row per body row. Alignment
// center and right are kept; anything else becomes left. It returns false,
// and nil, when the table does not qualify.
func PromoteToSimple(table *model.Node) (*model.Node, bool) {
	if Check(table) != nil {
		return nil, false
	}

	if table.Type == model.NodeSimpleTable {
		rows := make([]*model.Node, len(table.Content))
		for i, row := range table.Content {
			rows[i] = simpleRow(row.Type, row.Content)
		}
		return &model.Node{Type: model.NodeSimpleTable, Content: rows}, true
	}

	rows := []*model.Node{simpleRow(model.NodeSimpleHeaderRow, table.Head().Content[0].Content)}
	for _, row := range table.Body().Content {
		rows = append(rows, simpleRow(model.NodeSimpleRow, row.Content))
	}
	return &model.Node{Type: model.NodeSimpleTable, Content: rows}, true
}

func simpleRow(t model.NodeType, cells []*model.Node) *model.Node {
	out := make([]*model.Node, len(cells))
	for i, cell := range cells {
		out[i] = &model.Node{
			Type:    model.NodeSimpleCell,
			Attrs:   model.Attrs{Align: simpleAlign(cell.Attrs.Align)},
			Content: cell.Content,
		}
	}
	return &model.Node{Type: t, Content: out}
}

// Skipped records a grid table left unpromoted
type Skipped struct {
	Pos    int   // position of the table in the input document
	Reason error // wraps one of the Err* reasons
}

func (s Skipped) String() string {
	return fmt.Sprintf("table at %d kept as grid table: %v", s.Pos, s.Reason)
}

// PromoteDocument returns a copy of doc with every qualifying table
// replaced by its simple form, and the tables that were kept. Subtrees
// without tables are shared with doc, which is left unchanged.
func PromoteDocument(doc *model.Node) (*model.Node, []Skipped) {
	var skipped []Skipped
	out := promoteNode(doc, 0, &skipped)
	return out, skipped
}

// promoteNode rewrites the content of n, whose content starts at pos
func promoteNode(n *model.Node, pos int, skipped *[]Skipped) *model.Node {
	if n.IsText() || n.IsTextblock() {
		return n
	}

	var content []*model.Node
	n.ForEach(func(child *model.Node, offset, i int) {
		childPos := pos + offset
		replaced := child
		if child.Type == model.NodeTable {
			if simple, ok := PromoteToSimple(child); ok {
				replaced = simple
			} else {
				*skipped = append(*skipped, Skipped{Pos: childPos, Reason: Check(child)})
				replaced = promoteNode(child, childPos+1, skipped)
			}
		} else if !child.IsText() {
			replaced = promoteNode(child, childPos+1, skipped)
		}

		if replaced != child && content == nil {
			content = make([]*model.Node, len(n.Content))
			copy(content, n.Content)
		}
		if content != nil {
			content[i] = replaced
		}
	})

	if content == nil {
		return n
	}
	return n.Copy(content)
}
