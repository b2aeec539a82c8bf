package model

import (
	"encoding/json"
	"fmt"
)

type jsonNode struct {
	Type    string  `json:"type"`
	Attrs   *Attrs  `json:"attrs,omitempty"`
	Content []*Node `json:"content,omitempty"`
	Text    string  `json:"text,omitempty"`
}

// MarshalJSON encodes the node using its wire type name
func (n *Node) MarshalJSON() ([]byte, error) {
	j := jsonNode{Type: n.Type.String(), Content: n.Content, Text: n.Text}
	if n.Attrs != (Attrs{}) {
		attrs := n.Attrs
		j.Attrs = &attrs
	}
	return json.Marshal(j)
}

// UnmarshalJSON decodes a node written by MarshalJSON. Cells get the same
// defaults as NewCell: missing spans are 1 and an empty cell holds one
// empty paragraph.
func (n *Node) UnmarshalJSON(data []byte) error {
	var j jsonNode
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	t, ok := ParseNodeType(j.Type)
	if !ok {
		return fmt.Errorf("unknown node type %q", j.Type)
	}
	*n = Node{Type: t, Content: j.Content, Text: j.Text}
	if j.Attrs != nil {
		n.Attrs = *j.Attrs
	}
	if t == NodeTableCell {
		*n = *NewCell(n.Attrs, n.Content...)
	}
	return nil
}
