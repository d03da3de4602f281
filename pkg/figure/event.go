package figure

import "github.com/ha1tch/drawkit/pkg/attr"

// EventKind classifies figure events.
type EventKind int

const (
	AttributeChanged EventKind = iota // Key, Old and New are set
	GeometryChanged
	ContentChanged // image data replaced
	ChildAdded     // Child is set; Source is the composite
	ChildRemoved   // Child is set; Source is the composite
	Removed        // Source was removed from its document tree
)

func (k EventKind) String() string {
	switch k {
	case AttributeChanged:
		return "AttributeChanged"
	case GeometryChanged:
		return "GeometryChanged"
	case ContentChanged:
		return "ContentChanged"
	case ChildAdded:
		return "ChildAdded"
	case ChildRemoved:
		return "ChildRemoved"
	case Removed:
		return "Removed"
	}
	return "Unknown"
}

// Event describes a change to a figure.
type Event struct {
	Kind   EventKind
	Source Figure
	Key    attr.AnyKey
	Old    any
	New    any
	Child  Figure
}
