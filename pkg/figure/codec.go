package figure

import (
	"fmt"
	"slices"

	"github.com/ha1tch/drawkit/pkg/attr"
	"github.com/ha1tch/drawkit/pkg/geom"
	"github.com/ha1tch/drawkit/pkg/node"
)

// refFields lists the reference fields each variant may carry.
var refFields = map[Kind][]string{
	KindLabel: {"labelFor"},
	KindLine:  {"start", "end"},
}

type encoder struct {
	ids map[ID]int
}

// Encode converts f and its descendants to nodes. Local ids are assigned
// in pre-order starting at 1. References to figures outside f are omitted.
func Encode(f Figure) *node.Node {
	return EncodeAll([]Figure{f})[0]
}

// EncodeAll encodes several figures sharing one local id space.
func EncodeAll(figs []Figure) []*node.Node {
	enc := &encoder{ids: make(map[ID]int)}
	next := 1
	for _, f := range figs {
		Walk(f, func(x Figure) {
			enc.ids[x.ID()] = next
			next++
		})
	}
	out := make([]*node.Node, len(figs))
	for i, f := range figs {
		out[i] = enc.encode(f)
	}
	return out
}

func (enc *encoder) encode(f Figure) *node.Node {
	n := node.New(string(f.Kind()), enc.ids[f.ID()])
	for _, e := range f.Attributes().Entries() {
		text, err := e.Key.Format(e.Value)
		if err != nil {
			// Values are type-checked on the way into the store.
			panic(err)
		}
		n.Attributes = append(n.Attributes, node.Attribute{
			Name:  e.Key.Name(),
			Type:  e.Key.Kind(),
			Value: text,
		})
	}
	f.encode(n, enc)
	return n
}

func (enc *encoder) ref(n *node.Node, field string, target Figure) {
	if id, ok := enc.ids[target.ID()]; ok {
		n.SetRef(field, id)
	}
}

type pendingRef struct {
	n     *node.Node
	field string
	id    int
	bind  func(Figure) error
}

type decoder struct {
	reg     *attr.Registry
	byID    map[int]Figure
	pending []pendingRef
}

// Decode rebuilds a figure from its node. Attribute values are restored
// without notification and references are resolved through the local ids
// once the whole tree is built. On error nothing is returned.
func Decode(n *node.Node) (Figure, error) {
	figs, err := DecodeAll([]*node.Node{n})
	if err != nil {
		return nil, err
	}
	return figs[0], nil
}

// DecodeAll decodes several nodes sharing one local id space.
func DecodeAll(nodes []*node.Node) ([]Figure, error) {
	return decodeAll(nodes, attr.Standard)
}

func decodeAll(nodes []*node.Node, reg *attr.Registry) ([]Figure, error) {
	dec := &decoder{reg: reg, byID: make(map[int]Figure)}
	out := make([]Figure, 0, len(nodes))
	for _, n := range nodes {
		f, err := dec.decode(n)
		if err != nil {
			Logger().Debug("decode failed", "err", err)
			return nil, err
		}
		out = append(out, f)
	}
	if err := dec.finish(); err != nil {
		Logger().Debug("decode failed", "err", err)
		return nil, err
	}
	return out, nil
}

func newFigure(k Kind) Figure {
	switch k {
	case KindRectangle:
		return NewRectangle(geom.Rect{})
	case KindDiamond:
		return NewDiamond(geom.Rect{})
	case KindEllipse:
		return NewEllipse(geom.Rect{})
	case KindText:
		return newText()
	case KindImage:
		return NewImage(geom.Rect{})
	case KindGroup:
		return newGroup()
	case KindLabel:
		return newLabel()
	case KindLine:
		return newLine()
	}
	return nil
}

func (dec *decoder) decode(n *node.Node) (Figure, error) {
	if n == nil {
		return nil, &node.FormatError{Reason: "nil node"}
	}
	f := newFigure(Kind(n.Type))
	if f == nil {
		return nil, n.Errorf("type", "unknown figure type %q", n.Type)
	}
	if n.ID <= 0 {
		return nil, n.Errorf("id", "must be positive")
	}
	if _, dup := dec.byID[n.ID]; dup {
		return nil, n.Errorf("id", "duplicate id")
	}
	for field := range n.Refs {
		if !slices.Contains(refFields[f.Kind()], field) {
			return nil, n.Errorf(field, "unexpected reference")
		}
	}

	store := f.Attributes()
	for _, a := range n.Attributes {
		k, v, err := dec.reg.Decode(a.Name, a.Type, a.Value)
		if err != nil {
			return nil, &node.FormatError{Type: n.Type, ID: n.ID, Field: a.Name, Err: err}
		}
		if err := k.BasicSetAny(store, v); err != nil {
			return nil, &node.FormatError{Type: n.Type, ID: n.ID, Field: a.Name, Err: err}
		}
	}

	dec.byID[n.ID] = f
	if err := f.decode(n, dec); err != nil {
		return nil, err
	}
	return f, nil
}

// resolve schedules bind to run with the figure referenced by field, if
// the node has such a reference.
func (dec *decoder) resolve(n *node.Node, field string, bind func(Figure) error) {
	id, ok := n.Ref(field)
	if !ok {
		return
	}
	dec.pending = append(dec.pending, pendingRef{n: n, field: field, id: id, bind: bind})
}

func (dec *decoder) finish() error {
	for _, p := range dec.pending {
		target, ok := dec.byID[p.id]
		if !ok {
			return p.n.Errorf(p.field, "dangling reference to #%d", p.id)
		}
		if err := p.bind(target); err != nil {
			return fmt.Errorf("resolve %s: %w", p.field, err)
		}
	}
	return nil
}
