package model

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// NodeType identifies the kind of a document node
type NodeType int

const (
	NodeUnknown NodeType = iota
	NodeDoc
	NodeParagraph
	NodeHeading
	NodeCodeBlock
	NodeBlockquote
	NodeText
	NodeTable
	NodeTableHead
	NodeTableBody
	NodeTableFoot
	NodeTableRow
	NodeTableCell
	NodeSimpleTable
	NodeSimpleHeaderRow
	NodeSimpleRow
	NodeSimpleCell
)

var nodeTypeNames = map[NodeType]string{
	NodeDoc:             "doc",
	NodeParagraph:       "paragraph",
	NodeHeading:         "heading",
	NodeCodeBlock:       "code_block",
	NodeBlockquote:      "blockquote",
	NodeText:            "text",
	NodeTable:           "table",
	NodeTableHead:       "tableHead",
	NodeTableBody:       "tableBody",
	NodeTableFoot:       "tableFoot",
	NodeTableRow:        "tableRow",
	NodeTableCell:       "tableCell",
	NodeSimpleTable:     "simpleTable",
	NodeSimpleHeaderRow: "simpleHeaderRow",
	NodeSimpleRow:       "simpleRow",
	NodeSimpleCell:      "simpleCell",
}

// String returns the wire name of the node type (e.g. "tableCell")
func (t NodeType) String() string {
	if name, ok := nodeTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParseNodeType maps a wire name back to its NodeType
func ParseNodeType(name string) (NodeType, bool) {
	for t, n := range nodeTypeNames {
		if n == name {
			return t, true
		}
	}
	return NodeUnknown, false
}

// IsTextblock reports whether nodes of this type hold inline text directly
func (t NodeType) IsTextblock() bool {
	switch t {
	case NodeParagraph, NodeHeading, NodeCodeBlock:
		return true
	}
	return false
}

// IsBlock reports whether the type may appear where block content is expected
// (document root, cells, blockquotes)
func (t NodeType) IsBlock() bool {
	switch t {
	case NodeParagraph, NodeHeading, NodeCodeBlock, NodeBlockquote, NodeTable, NodeSimpleTable:
		return true
	}
	return false
}

// IsSection reports whether the type is a table section (head, body or foot)
func (t NodeType) IsSection() bool {
	return t == NodeTableHead || t == NodeTableBody || t == NodeTableFoot
}

// Node is an immutable document tree node. Nodes are shared between
// snapshots, so a Node must never be modified once it is part of a tree;
// use Copy and WithAttrs to derive changed nodes.
type Node struct {
	Type    NodeType
	Attrs   Attrs
	Content []*Node
	Text    string // text nodes only
}

// NewText creates a text node
func NewText(text string) *Node {
	return &Node{Type: NodeText, Text: text}
}

// NewParagraph creates a paragraph holding text. An empty string yields an
// empty paragraph.
func NewParagraph(text string) *Node {
	return &Node{Type: NodeParagraph, Content: inline(text)}
}

// NewHeading creates a heading (levels 1-6)
func NewHeading(level int, text string) *Node {
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	return &Node{Type: NodeHeading, Attrs: Attrs{Level: level}, Content: inline(text)}
}

// NewCodeBlock creates a fenced code block with an optional info string
func NewCodeBlock(info, text string) *Node {
	return &Node{Type: NodeCodeBlock, Attrs: Attrs{Info: info}, Content: inline(text)}
}

// NewBlockquote creates a blockquote around the given blocks
func NewBlockquote(blocks ...*Node) *Node {
	if len(blocks) == 0 {
		blocks = []*Node{NewParagraph("")}
	}
	return &Node{Type: NodeBlockquote, Content: blocks}
}

func inline(text string) []*Node {
	if text == "" {
		return nil
	}
	return []*Node{NewText(text)}
}

// IsText reports whether n is a text node
func (n *Node) IsText() bool { return n.Type == NodeText }

// IsTextblock reports whether n holds inline text directly
func (n *Node) IsTextblock() bool { return n.Type.IsTextblock() }

// Size returns the number of positions the node occupies in its parent:
// the rune count for text, content size plus two boundary tokens otherwise.
func (n *Node) Size() int {
	if n.IsText() {
		return utf8.RuneCountInString(n.Text)
	}
	return n.ContentSize() + 2
}

// ContentSize returns the combined size of the node's children
func (n *Node) ContentSize() int {
	size := 0
	for _, c := range n.Content {
		size += c.Size()
	}
	return size
}

// ChildCount returns the number of direct children
func (n *Node) ChildCount() int { return len(n.Content) }

// Child returns the i-th child, or nil when out of range
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.Content) {
		return nil
	}
	return n.Content[i]
}

// FirstChild returns the first child or nil
func (n *Node) FirstChild() *Node { return n.Child(0) }

// ChildOfType returns the first direct child of type t
func (n *Node) ChildOfType(t NodeType) *Node {
	for _, c := range n.Content {
		if c.Type == t {
			return c
		}
	}
	return nil
}

// ForEach calls fn for each child with its offset inside n's content
func (n *Node) ForEach(fn func(child *Node, offset, index int)) {
	offset := 0
	for i, c := range n.Content {
		fn(c, offset, i)
		offset += c.Size()
	}
}

// Descendants walks the subtree below n in document order. pos is the
// absolute position of n's content start. Returning false from fn skips the
// children of the visited node.
func (n *Node) Descendants(pos int, fn func(node *Node, pos int) bool) {
	n.ForEach(func(child *Node, offset, _ int) {
		childPos := pos + offset
		if fn(child, childPos) && !child.IsText() {
			child.Descendants(childPos+1, fn)
		}
	})
}

// TextContent concatenates the text of all descendant text nodes. Blocks are
// separated by a newline.
func (n *Node) TextContent() string {
	if n.IsText() {
		return n.Text
	}
	var sb strings.Builder
	for i, c := range n.Content {
		if i > 0 && !c.IsText() && c.Type.IsBlock() {
			sb.WriteString("\n")
		}
		sb.WriteString(c.TextContent())
	}
	return sb.String()
}

// Copy returns a node of the same type and attributes with new content
func (n *Node) Copy(content []*Node) *Node {
	return &Node{Type: n.Type, Attrs: n.Attrs, Content: content, Text: n.Text}
}

// WithAttrs returns a copy of n carrying attrs
func (n *Node) WithAttrs(attrs Attrs) *Node {
	return &Node{Type: n.Type, Attrs: attrs, Content: n.Content, Text: n.Text}
}

// Equal reports whether two subtrees have identical structure, attributes
// and text
func (n *Node) Equal(o *Node) bool {
	if n == o {
		return true
	}
	if n == nil || o == nil {
		return false
	}
	if n.Type != o.Type || n.Text != o.Text || n.Attrs.normalized(n.Type) != o.Attrs.normalized(o.Type) {
		return false
	}
	if len(n.Content) != len(o.Content) {
		return false
	}
	for i := range n.Content {
		if !n.Content[i].Equal(o.Content[i]) {
			return false
		}
	}
	return true
}

// String returns a compact debug representation, e.g.
// table(tableBody(tableRow(tableCell(paragraph("a")))))
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	if n.IsText() {
		return fmt.Sprintf("%q", n.Text)
	}
	var sb strings.Builder
	sb.WriteString(n.Type.String())
	if n.Type == NodeTableCell || n.Type == NodeSimpleCell {
		if a := n.Attrs.String(); a != "" {
			sb.WriteString("[" + a + "]")
		}
	}
	if len(n.Content) > 0 {
		sb.WriteString("(")
		for i, c := range n.Content {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(c.String())
		}
		sb.WriteString(")")
	}
	return sb.String()
}
