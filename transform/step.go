// Package transform applies position-addressed edits to a document tree.
//
// An edit is a [Step]. Applying a step to a document yields a new document
// and a [StepMap] that maps positions in the old document to positions in
// the new one. A [Transaction] accumulates steps against one starting
// document.
package transform

import (
	"fmt"

	"github.com/tsawler/gridtable/model"
)

// Step is a single atomic change to a document
type Step interface {
	// Apply returns the changed document. The input is not modified.
	Apply(doc *model.Node) (*model.Node, error)

	// Map describes how the step moves positions
	Map() StepMap
}

// StepMap records that OldSize positions starting at Pos were replaced by
// NewSize positions
type StepMap struct {
	Pos     int
	OldSize int
	NewSize int
}

// MapPos maps a position through the change. assoc decides which side a
// position at the edge of an insertion or inside a deleted range sticks to:
// negative keeps it before, otherwise it moves after the new content.
func (m StepMap) MapPos(pos, assoc int) int {
	end := m.Pos + m.OldSize
	if pos < m.Pos {
		return pos
	}
	if pos > end {
		return pos + m.NewSize - m.OldSize
	}

	side := assoc
	if m.OldSize > 0 {
		switch pos {
		case m.Pos:
			side = -1
		case end:
			side = 1
		}
	}
	if side < 0 {
		return m.Pos
	}
	return m.Pos + m.NewSize
}

// Mapping is a sequence of step maps applied in order
type Mapping []StepMap

// MapPos maps pos through every step map in order
func (m Mapping) MapPos(pos, assoc int) int {
	for _, sm := range m {
		pos = sm.MapPos(pos, assoc)
	}
	return pos
}

// ReplaceStep replaces the range [From, To] with Content. Both ends must
// share the same parent node.
type ReplaceStep struct {
	From    int
	To      int
	Content []*model.Node
}

// Apply implements Step
func (s ReplaceStep) Apply(doc *model.Node) (*model.Node, error) {
	if s.To < s.From {
		return nil, fmt.Errorf("replace: %w: from %d after to %d", model.ErrInvalidPosition, s.From, s.To)
	}
	from, err := model.Resolve(doc, s.From)
	if err != nil {
		return nil, fmt.Errorf("replace: %w", err)
	}
	to, err := model.Resolve(doc, s.To)
	if err != nil {
		return nil, fmt.Errorf("replace: %w", err)
	}

	d := from.Depth
	if to.Depth != d || to.Start(d) != from.Start(d) {
		return nil, fmt.Errorf("replace: %w: [%d, %d] spans different parents", model.ErrInvalidPosition, s.From, s.To)
	}

	parent := from.Parent()
	for _, n := range s.Content {
		if n.IsText() != parent.IsTextblock() {
			return nil, fmt.Errorf("replace: cannot place %s inside %s", n.Type, parent.Type)
		}
	}

	start := from.Start(d)
	replaced, err := parent.ReplaceContent(s.From-start, s.To-start, s.Content)
	if err != nil {
		return nil, fmt.Errorf("replace: %w", err)
	}
	return rebuild(from, d, replaced), nil
}

// Map implements Step
func (s ReplaceStep) Map() StepMap {
	size := 0
	for _, n := range s.Content {
		size += n.Size()
	}
	return StepMap{Pos: s.From, OldSize: s.To - s.From, NewSize: size}
}

// AttrStep replaces the attributes of the node starting at Pos
type AttrStep struct {
	Pos   int
	Attrs model.Attrs
}

// Apply implements Step
func (s AttrStep) Apply(doc *model.Node) (*model.Node, error) {
	r, err := model.Resolve(doc, s.Pos)
	if err != nil {
		return nil, fmt.Errorf("set attrs: %w", err)
	}
	target := r.NodeAfter()
	if target == nil || target.IsText() {
		return nil, fmt.Errorf("set attrs: %w: no node starts at %d", model.ErrInvalidPosition, s.Pos)
	}

	parent := r.Parent()
	content := make([]*model.Node, len(parent.Content))
	copy(content, parent.Content)
	content[r.Index(r.Depth)] = target.WithAttrs(s.Attrs)
	return rebuild(r, r.Depth, parent.Copy(content)), nil
}

// Map implements Step. Attribute changes never move positions.
func (s AttrStep) Map() StepMap {
	return StepMap{Pos: s.Pos}
}

// rebuild replaces the ancestor at depth d of r with n and copies every
// ancestor above it, returning the new root
func rebuild(r *model.ResolvedPos, d int, n *model.Node) *model.Node {
	for depth := d - 1; depth >= 0; depth-- {
		parent := r.Node(depth)
		content := make([]*model.Node, len(parent.Content))
		copy(content, parent.Content)
		content[r.Index(depth)] = n
		n = parent.Copy(content)
	}
	return n
}
