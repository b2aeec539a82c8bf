package model

import (
	"errors"
	"fmt"
)

// ErrInvalidPosition is returned when a position lies outside a document or
// cannot be used for the requested operation
var ErrInvalidPosition = errors.New("invalid position")

type pathEntry struct {
	node  *Node
	index int // child index at this depth
	start int // absolute position of the node's content start
}

// ResolvedPos describes a position in a document: the chain of ancestors
// around it and, for each depth, the index of the child the position points
// into.
type ResolvedPos struct {
	Pos          int
	Depth        int
	ParentOffset int // offset into the parent's content
	TextOffset   int // offset into the text node at Index(Depth), 0 at a node boundary
	path         []pathEntry
}

// Resolve resolves pos against doc
func Resolve(doc *Node, pos int) (*ResolvedPos, error) {
	if pos < 0 || pos > doc.ContentSize() {
		return nil, fmt.Errorf("%w: %d outside [0, %d]", ErrInvalidPosition, pos, doc.ContentSize())
	}

	r := &ResolvedPos{Pos: pos}
	node, start := doc, 0
	for {
		offset := pos - start
		index, childStart := childAt(node, offset)
		r.path = append(r.path, pathEntry{node: node, index: index, start: start})
		r.ParentOffset = offset
		if index >= len(node.Content) {
			break
		}
		child := node.Content[index]
		rem := offset - childStart
		if rem == 0 {
			break
		}
		if child.IsText() {
			r.TextOffset = rem
			break
		}
		node = child
		start += childStart + 1
	}
	r.Depth = len(r.path) - 1
	return r, nil
}

// childAt finds the child containing or starting at offset. It returns the
// child count when offset is at the end of the content.
func childAt(n *Node, offset int) (int, int) {
	off := 0
	for i, c := range n.Content {
		end := off + c.Size()
		if offset < end || offset == off {
			return i, off
		}
		off = end
	}
	return len(n.Content), off
}

func (r *ResolvedPos) depth(d int) int {
	if d < 0 {
		return r.Depth + d + 1
	}
	return d
}

// Node returns the ancestor at depth d (0 is the document). Negative values
// count back from the parent: -1 is the parent itself.
func (r *ResolvedPos) Node(d int) *Node { return r.path[r.depth(d)].node }

// Parent returns the innermost node containing the position
func (r *ResolvedPos) Parent() *Node { return r.Node(r.Depth) }

// Index returns the child index the position points into at depth d
func (r *ResolvedPos) Index(d int) int { return r.path[r.depth(d)].index }

// Start returns the absolute content start of the ancestor at depth d
func (r *ResolvedPos) Start(d int) int { return r.path[r.depth(d)].start }

// Before returns the position directly before the ancestor at depth d (d > 0)
func (r *ResolvedPos) Before(d int) int { return r.Start(d) - 1 }

// After returns the position directly after the ancestor at depth d (d > 0)
func (r *ResolvedPos) After(d int) int { return r.Before(d) + r.Node(d).Size() }

// NodeAfter returns the node that starts exactly at the position, or nil
func (r *ResolvedPos) NodeAfter() *Node {
	if r.TextOffset != 0 {
		return nil
	}
	return r.Parent().Child(r.Index(r.Depth))
}

// NodeRef locates a node inside a document
type NodeRef struct {
	Node  *Node
	Pos   int // position directly before the node
	Depth int
}

// End returns the position directly after the referenced node
func (ref NodeRef) End() int { return ref.Pos + ref.Node.Size() }

// ContentStart returns the position of the referenced node's content start
func (ref NodeRef) ContentStart() int { return ref.Pos + 1 }

// FindAncestor returns the innermost ancestor of type t around the position
func (r *ResolvedPos) FindAncestor(t NodeType) (NodeRef, bool) {
	for d := r.Depth; d > 0; d-- {
		if n := r.Node(d); n.Type == t {
			return NodeRef{Node: n, Pos: r.Before(d), Depth: d}, true
		}
	}
	return NodeRef{}, false
}

// NodeAt returns the node starting at pos
func NodeAt(doc *Node, pos int) (*Node, error) {
	r, err := Resolve(doc, pos)
	if err != nil {
		return nil, err
	}
	n := r.NodeAfter()
	if n == nil {
		return nil, fmt.Errorf("%w: no node starts at %d", ErrInvalidPosition, pos)
	}
	return n, nil
}

// FindCursor finds a cursor position inside a textblock. With dir > 0 it
// returns the content start of the first textblock whose content starts at
// or after from; with dir < 0 the content end of the last textblock ending
// at or before from.
func FindCursor(doc *Node, from int, dir int) (int, bool) {
	found, ok := -1, false
	doc.Descendants(0, func(n *Node, pos int) bool {
		if !n.IsTextblock() {
			return true
		}
		start, end := pos+1, pos+1+n.ContentSize()
		if dir > 0 && !ok && start >= from {
			found, ok = start, true
		}
		if dir < 0 && end <= from {
			found, ok = end, true
		}
		return false
	})
	return found, ok
}

// Cut returns the children of n between the content offsets from and to,
// splitting text nodes at the boundaries
func (n *Node) Cut(from, to int) []*Node {
	var out []*Node
	n.ForEach(func(c *Node, off, _ int) {
		end := off + c.Size()
		if end <= from || off >= to {
			return
		}
		if c.IsText() {
			lo, hi := max(from-off, 0), min(to-off, c.Size())
			out = append(out, NewText(runeSlice(c.Text, lo, hi)))
			return
		}
		if off >= from && end <= to {
			out = append(out, c)
		}
	})
	return out
}

// ReplaceContent returns a copy of n whose content between offsets from and
// to is replaced by insert. Text nodes are split at the boundaries; non-text
// children must lie entirely inside or outside the range.
func (n *Node) ReplaceContent(from, to int, insert []*Node) (*Node, error) {
	if from < 0 || to < from || to > n.ContentSize() {
		return nil, fmt.Errorf("%w: range [%d, %d] in %s of size %d", ErrInvalidPosition, from, to, n.Type, n.ContentSize())
	}

	var before, after []*Node
	var err error
	n.ForEach(func(c *Node, off, _ int) {
		end := off + c.Size()
		switch {
		case end <= from:
			before = append(before, c)
		case off >= to:
			after = append(after, c)
		case c.IsText():
			if from > off {
				before = append(before, NewText(runeSlice(c.Text, 0, from-off)))
			}
			if to < end {
				after = append(after, NewText(runeSlice(c.Text, to-off, c.Size())))
			}
		case off < from || end > to:
			err = fmt.Errorf("%w: range [%d, %d] cuts through %s at %d", ErrInvalidPosition, from, to, c.Type, off)
		}
	})
	if err != nil {
		return nil, err
	}

	content := make([]*Node, 0, len(before)+len(insert)+len(after))
	content = append(content, before...)
	content = append(content, insert...)
	content = append(content, after...)
	return n.Copy(joinText(content)), nil
}

// joinText merges adjacent text nodes and drops empty ones
func joinText(nodes []*Node) []*Node {
	out := make([]*Node, 0, len(nodes))
	for _, c := range nodes {
		if c.IsText() {
			if c.Text == "" {
				continue
			}
			if last := len(out) - 1; last >= 0 && out[last].IsText() {
				out[last] = NewText(out[last].Text + c.Text)
				continue
			}
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func runeSlice(s string, lo, hi int) string {
	r := []rune(s)
	return string(r[lo:hi])
}
