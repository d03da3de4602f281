package figure

import (
	"math"

	"github.com/ha1tch/drawkit/pkg/attr"
	"github.com/ha1tch/drawkit/pkg/chop"
	"github.com/ha1tch/drawkit/pkg/geom"
	"github.com/ha1tch/drawkit/pkg/node"
)

// box is the geometry of figures spanned by two corner points.
type box struct {
	base
	rect geom.Rect
}

func (b *box) Bounds() geom.Rect { return b.rect }

// SetBounds spans the figure between anchor and lead.
func (b *box) SetBounds(anchor, lead geom.Point) {
	if !anchor.IsFinite() || !lead.IsFinite() {
		return
	}
	b.rect = geom.RectFromPoints(anchor, lead)
	b.fireGeometry()
}

// Transform maps both corners through m.
func (b *box) Transform(m geom.Matrix) {
	if !m.IsFinite() {
		return
	}
	b.rect = geom.RectFromPoints(m.TransformPoint(b.rect.Min()), m.TransformPoint(b.rect.Max()))
	b.fireGeometry()
}

func (b *box) geometryState() any { return b.rect }

func (b *box) restoreGeometry(state any) {
	b.rect = state.(geom.Rect)
	b.fireGeometry()
}

func (b *box) encodeRect(n *node.Node) {
	n.SetFloat("x", b.rect.X)
	n.SetFloat("y", b.rect.Y)
	n.SetFloat("w", b.rect.W)
	n.SetFloat("h", b.rect.H)
}

func (b *box) decodeRect(n *node.Node) error {
	v, err := n.Floats("x", "y", "w", "h")
	if err != nil {
		return err
	}
	if v[2] < 0 {
		return n.Errorf("w", "negative width")
	}
	if v[3] < 0 {
		return n.Errorf("h", "negative height")
	}
	b.rect = geom.Rect{X: v[0], Y: v[1], W: v[2], H: v[3]}
	return nil
}

func (b *box) stroke() chop.Stroke {
	return chop.StrokeOf(b.attrs)
}

// Rectangle is an axis-aligned rectangle.
type Rectangle struct {
	box
}

// NewRectangle creates a rectangle with default attributes.
func NewRectangle(r geom.Rect) *Rectangle {
	f := &Rectangle{}
	f.init(f)
	f.rect = r
	return f
}

func (f *Rectangle) Kind() Kind { return KindRectangle }

// Contains includes the painted stroke.
func (f *Rectangle) Contains(p geom.Point) bool {
	return chop.GrowRect(f.rect, f.stroke()).Contains(p)
}

// Chop returns the point where a connection from from meets the outline.
func (f *Rectangle) Chop(from geom.Point) geom.Point {
	return chop.Rectangle(f.rect, f.stroke(), from)
}

func (f *Rectangle) copyFigure(remap Remap) Figure {
	c := &Rectangle{}
	c.initFrom(c, &f.base)
	c.rect = f.rect
	remap[f.id] = c
	return c
}

func (f *Rectangle) encode(n *node.Node, _ *encoder) { f.encodeRect(n) }

func (f *Rectangle) decode(n *node.Node, _ *decoder) error { return f.decodeRect(n) }

// Diamond is a rhombus inscribed in its bounds. With the isQuadratic
// attribute set its bounds are squared around their center.
type Diamond struct {
	box
}

// NewDiamond creates a diamond with default attributes.
func NewDiamond(r geom.Rect) *Diamond {
	f := &Diamond{}
	f.init(f)
	f.rect = r
	return f
}

func (f *Diamond) Kind() Kind { return KindDiamond }

// Quadratic reports whether the diamond is constrained to a square.
func (f *Diamond) Quadratic() bool { return attr.Quadratic.Get(f.attrs) }

// Bounds returns the logical bounds, squared when quadratic.
func (f *Diamond) Bounds() geom.Rect {
	if f.Quadratic() {
		return f.rect.Square()
	}
	return f.rect
}

// Contains tests against the diamond outline including its stroke.
func (f *Diamond) Contains(p geom.Point) bool {
	r := chop.GrowDiamond(f.rect, f.Quadratic(), f.stroke())
	if r.W == 0 || r.H == 0 {
		return false
	}
	c := r.Center()
	return math.Abs(p.X-c.X)/(r.W/2)+math.Abs(p.Y-c.Y)/(r.H/2) <= 1
}

// Chop returns the point where a connection from from meets the outline.
func (f *Diamond) Chop(from geom.Point) geom.Point {
	return chop.Diamond(f.rect, f.Quadratic(), f.stroke(), from)
}

func (f *Diamond) copyFigure(remap Remap) Figure {
	c := &Diamond{}
	c.initFrom(c, &f.base)
	c.rect = f.rect
	remap[f.id] = c
	return c
}

func (f *Diamond) encode(n *node.Node, _ *encoder) { f.encodeRect(n) }

func (f *Diamond) decode(n *node.Node, _ *decoder) error { return f.decodeRect(n) }

// Ellipse is the ellipse inscribed in its bounds.
type Ellipse struct {
	box
}

// NewEllipse creates an ellipse with default attributes.
func NewEllipse(r geom.Rect) *Ellipse {
	f := &Ellipse{}
	f.init(f)
	f.rect = r
	return f
}

func (f *Ellipse) Kind() Kind { return KindEllipse }

// Contains tests against the ellipse including its stroke.
func (f *Ellipse) Contains(p geom.Point) bool {
	r := chop.GrowRect(f.rect, f.stroke())
	if r.W == 0 || r.H == 0 {
		return false
	}
	c := r.Center()
	dx := (p.X - c.X) / (r.W / 2)
	dy := (p.Y - c.Y) / (r.H / 2)
	return dx*dx+dy*dy <= 1
}

// Chop returns the point where a connection from from meets the outline.
func (f *Ellipse) Chop(from geom.Point) geom.Point {
	return chop.Ellipse(f.rect, f.stroke(), from)
}

func (f *Ellipse) copyFigure(remap Remap) Figure {
	c := &Ellipse{}
	c.initFrom(c, &f.base)
	c.rect = f.rect
	remap[f.id] = c
	return c
}

func (f *Ellipse) encode(n *node.Node, _ *encoder) { f.encodeRect(n) }

func (f *Ellipse) decode(n *node.Node, _ *decoder) error { return f.decodeRect(n) }
