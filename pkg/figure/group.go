package figure

import (
	"slices"

	"github.com/ha1tch/drawkit/pkg/chop"
	"github.com/ha1tch/drawkit/pkg/geom"
	"github.com/ha1tch/drawkit/pkg/node"
)

// Group is a composite figure. Its bounds are the union of its children's
// bounds, cached until a child reports a change.
type Group struct {
	base
	children []Figure
	bounds   *geom.Rect
	watch    *funcObserver
	quiet    int // >0 while the group itself is moving its children
}

func newGroup() *Group {
	g := &Group{}
	g.init(g)
	g.watch = observe(g.childChanged)
	return g
}

// NewGroup creates a group owning children.
func NewGroup(children ...Figure) *Group {
	g := newGroup()
	for _, c := range children {
		g.Add(c)
	}
	return g
}

func (g *Group) Kind() Kind { return KindGroup }

// Children returns a copy of the child list in z-order.
func (g *Group) Children() []Figure { return slices.Clone(g.children) }

// Len returns the number of children.
func (g *Group) Len() int { return len(g.children) }

// IndexOf returns the position of f among the children, or -1.
func (g *Group) IndexOf(f Figure) int {
	return slices.Index(g.children, f)
}

// Add appends f.
func (g *Group) Add(f Figure) {
	g.Insert(len(g.children), f)
}

// Insert places f at index i, clamped to the valid range.
func (g *Group) Insert(i int, f Figure) {
	i = max(0, min(i, len(g.children)))
	g.children = slices.Insert(g.children, i, f)
	f.AddObserver(g.watch)
	g.bounds = nil
	g.fire(Event{Kind: ChildAdded, Child: f})
}

// Remove detaches f and notifies f and all its descendants that they have
// been removed. It reports whether f was a child.
func (g *Group) Remove(f Figure) bool {
	if !g.basicRemove(f) {
		return false
	}
	Walk(f, func(r Figure) {
		r.figureBase().fire(Event{Kind: Removed})
	})
	return true
}

// basicRemove detaches f without the removal notification. Used when f
// moves to another composite.
func (g *Group) basicRemove(f Figure) bool {
	i := g.IndexOf(f)
	if i < 0 {
		return false
	}
	g.children = slices.Delete(g.children, i, i+1)
	f.RemoveObserver(g.watch)
	g.bounds = nil
	g.fire(Event{Kind: ChildRemoved, Child: f})
	return true
}

// Decompose returns the leaf figures below g in z-order.
func (g *Group) Decompose() []Figure {
	var out []Figure
	for _, c := range g.children {
		if cg, ok := c.(Composite); ok {
			out = append(out, cg.Decompose()...)
		} else {
			out = append(out, c)
		}
	}
	return out
}

func (g *Group) childChanged(e Event) {
	switch e.Kind {
	case Removed:
	case ChildAdded, ChildRemoved:
		g.bounds = nil
		g.deliver(e)
	default:
		g.bounds = nil
		if g.quiet == 0 {
			g.fireGeometry()
		}
	}
}

// Bounds returns the union of the children's bounds.
func (g *Group) Bounds() geom.Rect {
	if g.bounds == nil {
		rs := make([]geom.Rect, len(g.children))
		for i, c := range g.children {
			rs[i] = c.Bounds()
		}
		u := geom.UnionAll(rs)
		g.bounds = &u
	}
	return *g.bounds
}

// Contains reports whether any child contains p.
func (g *Group) Contains(p geom.Point) bool {
	for _, c := range g.children {
		if c.Contains(p) {
			return true
		}
	}
	return false
}

// Chop attaches connections to the group bounds.
func (g *Group) Chop(from geom.Point) geom.Point {
	return chop.Rectangle(g.Bounds(), chop.StrokeOf(g.attrs), from)
}

// Transform applies m to every child.
func (g *Group) Transform(m geom.Matrix) {
	if !m.IsFinite() {
		return
	}
	g.quiet++
	for _, c := range g.children {
		c.Transform(m)
	}
	g.quiet--
	g.bounds = nil
	g.fireGeometry()
}

// SetBounds scales and moves the children so that the group spans anchor
// to lead.
func (g *Group) SetBounds(anchor, lead geom.Point) {
	if len(g.children) == 0 || !anchor.IsFinite() || !lead.IsFinite() {
		return
	}
	old := g.Bounds()
	r := geom.RectFromPoints(anchor, lead)
	sx, sy := 1.0, 1.0
	if old.W != 0 {
		sx = r.W / old.W
	}
	if old.H != 0 {
		sy = r.H / old.H
	}
	m := geom.Translate(r.X, r.Y).Multiply(geom.Scale(sx, sy)).Multiply(geom.Translate(-old.X, -old.Y))
	g.Transform(m)
}

func (g *Group) geometryState() any {
	states := make([]any, len(g.children))
	for i, c := range g.children {
		states[i] = c.geometryState()
	}
	return states
}

func (g *Group) restoreGeometry(state any) {
	states := state.([]any)
	g.quiet++
	for i, c := range g.children {
		if i < len(states) {
			c.restoreGeometry(states[i])
		}
	}
	g.quiet--
	g.bounds = nil
	g.fireGeometry()
}

func (g *Group) copyFigure(remap Remap) Figure {
	c := &Group{}
	c.initFrom(c, &g.base)
	c.watch = observe(c.childChanged)
	for _, child := range g.children {
		cc := child.copyFigure(remap)
		c.children = append(c.children, cc)
		cc.AddObserver(c.watch)
	}
	remap[g.id] = c
	return c
}

func (g *Group) encode(n *node.Node, enc *encoder) {
	for _, c := range g.children {
		n.Children = append(n.Children, enc.encode(c))
	}
}

func (g *Group) decode(n *node.Node, dec *decoder) error {
	for _, cn := range n.Children {
		c, err := dec.decode(cn)
		if err != nil {
			return err
		}
		g.children = append(g.children, c)
		c.AddObserver(g.watch)
	}
	return nil
}
