// Package node defines the tree-structured persistence form of a figure:
// one Node per figure, tagged by variant, holding named geometry values,
// attribute entries, references to other nodes by local id, and children
// in document order.
package node

import (
	"fmt"
	"math"
)

// Node is the serialized form of one figure.
type Node struct {
	Type       string             `json:"type"`
	ID         int                `json:"id"`
	Geometry   map[string]float64 `json:"geometry,omitempty"`
	Attributes []Attribute        `json:"attributes,omitempty"`
	Refs       map[string]int     `json:"refs,omitempty"`
	Asset      string             `json:"asset,omitempty"` // archive entry holding Data
	Data       []byte             `json:"data,omitempty"`
	Children   []*Node            `json:"children,omitempty"`
}

// Attribute is one attribute-store entry.
type Attribute struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// New creates a node of the given type.
func New(typ string, id int) *Node {
	return &Node{Type: typ, ID: id}
}

// SetFloat records a geometry value.
func (n *Node) SetFloat(name string, v float64) {
	if n.Geometry == nil {
		n.Geometry = make(map[string]float64)
	}
	n.Geometry[name] = v
}

// Float returns a required finite geometry value.
func (n *Node) Float(name string) (float64, error) {
	v, ok := n.Geometry[name]
	if !ok {
		return 0, n.Errorf(name, "missing")
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, n.Errorf(name, "not finite")
	}
	return v, nil
}

// Floats reads several required geometry values at once.
func (n *Node) Floats(names ...string) ([]float64, error) {
	out := make([]float64, len(names))
	for i, name := range names {
		v, err := n.Float(name)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// SetRef records a reference to the node with local id target.
func (n *Node) SetRef(field string, target int) {
	if n.Refs == nil {
		n.Refs = make(map[string]int)
	}
	n.Refs[field] = target
}

// Ref returns the local id stored under field.
func (n *Node) Ref(field string) (int, bool) {
	id, ok := n.Refs[field]
	return id, ok
}

// Walk visits n and its descendants in pre-order.
func (n *Node) Walk(fn func(*Node) error) error {
	if err := fn(n); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := c.Walk(fn); err != nil {
			return err
		}
	}
	return nil
}

// Errorf returns a FormatError for field of this node.
func (n *Node) Errorf(field, format string, args ...any) *FormatError {
	return &FormatError{
		Type:   n.Type,
		ID:     n.ID,
		Field:  field,
		Reason: fmt.Sprintf(format, args...),
	}
}

// FormatError reports missing or malformed data in a serialized figure.
type FormatError struct {
	Type   string
	ID     int
	Field  string
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	msg := fmt.Sprintf("format error: %s #%d", e.Type, e.ID)
	if e.Field != "" {
		msg += ": " + e.Field
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FormatError) Unwrap() error { return e.Err }
