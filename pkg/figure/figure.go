// Package figure implements the drawing model: shape variants, text and
// label figures, groups, connection lines, and the document that owns them.
//
// All mutation happens on one goroutine. Observers are non-owning: a figure
// never keeps another figure alive, it only reports changes to whoever
// registered.
package figure

import (
	"slices"
	"sync/atomic"

	"github.com/ha1tch/drawkit/pkg/attr"
	"github.com/ha1tch/drawkit/pkg/geom"
	"github.com/ha1tch/drawkit/pkg/node"
)

// ID identifies a figure. IDs are never reused within a process; clones
// and decoded figures always receive fresh ones.
type ID uint64

var lastID atomic.Uint64

func nextID() ID {
	return ID(lastID.Add(1))
}

// Kind is the variant tag of a figure. It doubles as the serialized type.
type Kind string

const (
	KindRectangle Kind = "rect"
	KindDiamond   Kind = "diamond"
	KindEllipse   Kind = "ellipse"
	KindText      Kind = "text"
	KindImage     Kind = "image"
	KindGroup     Kind = "group"
	KindLabel     Kind = "label"
	KindLine      Kind = "line"
)

// Figure is implemented by every variant in this package.
type Figure interface {
	ID() ID
	Kind() Kind
	Bounds() geom.Rect
	Contains(p geom.Point) bool
	Transform(m geom.Matrix)
	SetBounds(anchor, lead geom.Point)
	Attributes() *attr.Store

	AddObserver(o Observer)
	RemoveObserver(o Observer)
	Subscribe(fn func(Event)) (cancel func())

	figureBase() *base
	copyFigure(remap Remap) Figure
	remapRefs(remap Remap, dropped *[]DroppedRef)
	encode(n *node.Node, enc *encoder)
	decode(n *node.Node, dec *decoder) error
	geometryState() any
	restoreGeometry(state any)
}

// Connectable figures compute where a connection attaches to them.
type Connectable interface {
	Figure
	Chop(from geom.Point) geom.Point
}

// TextHolder is implemented by figures displaying editable text.
type TextHolder interface {
	Connectable
	Text() string
	SetText(s string)
	Origin() geom.Point
	Editable() bool
	LabelFor() TextHolder
	Invalidate()
}

// Composite figures own an ordered list of children.
type Composite interface {
	Figure
	Children() []Figure
	Add(f Figure)
	Insert(i int, f Figure)
	Remove(f Figure) bool
	IndexOf(f Figure) int
	Decompose() []Figure
}

// Observer receives figure events.
type Observer interface {
	FigureChanged(e Event)
}

type funcObserver struct {
	fn func(Event)
}

func (o *funcObserver) FigureChanged(e Event) { o.fn(e) }

func observe(fn func(Event)) *funcObserver {
	return &funcObserver{fn: fn}
}

// base holds the state shared by all variants.
type base struct {
	self      Figure
	id        ID
	attrs     *attr.Store
	observers []Observer
}

func (b *base) init(self Figure) {
	b.self = self
	b.id = nextID()
	b.attrs = attr.NewStore(b.attributeChanged)
}

// initFrom initialises b as a copy of src with a new identity and no
// observers.
func (b *base) initFrom(self Figure, src *base) {
	b.self = self
	b.id = nextID()
	b.attrs = src.attrs.Clone()
	b.attrs.SetChangeFunc(b.attributeChanged)
}

func (b *base) figureBase() *base { return b }

// ID returns the figure's identity.
func (b *base) ID() ID { return b.id }

// Attributes returns the figure's attribute store.
func (b *base) Attributes() *attr.Store { return b.attrs }

// AddObserver registers o. Registering the same observer twice is a no-op.
func (b *base) AddObserver(o Observer) {
	if slices.Contains(b.observers, o) {
		return
	}
	b.observers = append(b.observers, o)
}

// RemoveObserver unregisters o.
func (b *base) RemoveObserver(o Observer) {
	if i := slices.Index(b.observers, o); i >= 0 {
		b.observers = slices.Delete(b.observers, i, i+1)
	}
}

// Subscribe registers fn and returns a function that unregisters it.
func (b *base) Subscribe(fn func(Event)) (cancel func()) {
	o := observe(fn)
	b.AddObserver(o)
	return func() { b.RemoveObserver(o) }
}

// ObserverCount returns the number of registered observers.
func (b *base) ObserverCount() int { return len(b.observers) }

func (b *base) fire(e Event) {
	e.Source = b.self
	b.deliver(e)
}

// deliver passes e to the observers without changing its source.
func (b *base) deliver(e Event) {
	for _, o := range slices.Clone(b.observers) {
		o.FigureChanged(e)
	}
}

func (b *base) fireGeometry() {
	b.fire(Event{Kind: GeometryChanged})
}

type layoutInvalidator interface {
	invalidateFor(key attr.AnyKey)
}

func (b *base) attributeChanged(key attr.AnyKey, old, new any) {
	if inv, ok := b.self.(layoutInvalidator); ok {
		inv.invalidateFor(key)
	}
	b.fire(Event{Kind: AttributeChanged, Key: key, Old: old, New: new})
}

func (b *base) remapRefs(Remap, *[]DroppedRef) {}

// Walk visits f and, for composites, all descendants in pre-order.
func Walk(f Figure, fn func(Figure)) {
	fn(f)
	if c, ok := f.(Composite); ok {
		for _, child := range c.Children() {
			Walk(child, fn)
		}
	}
}
