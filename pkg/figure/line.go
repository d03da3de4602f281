package figure

import (
	"errors"
	"math"

	"github.com/ha1tch/drawkit/pkg/attr"
	"github.com/ha1tch/drawkit/pkg/geom"
	"github.com/ha1tch/drawkit/pkg/node"
)

// End selects one end of a line.
type End int

const (
	StartEnd End = iota
	FinishEnd
)

func (e End) String() string {
	if e == StartEnd {
		return "start"
	}
	return "end"
}

func (e End) other() End { return 1 - e }

// ErrConnectCycle is returned when a line would attach to a figure whose
// bounds depend on the line itself.
var ErrConnectCycle = errors.New("figure: connection target contains the line")

// hitTolerance is the minimum distance at which a line counts as hit.
const hitTolerance = 2.0

// Line is a straight connection between two points. Either end may be
// attached to a connectable figure through a Connector, in which case the
// end follows the figure's outline.
type Line struct {
	base
	points [2]geom.Point
	conn   [2]*Connector
	watch  [2]*funcObserver

	updating bool
}

func newLine() *Line {
	f := &Line{}
	f.init(f)
	f.initWatches()
	return f
}

func (f *Line) initWatches() {
	f.watch[StartEnd] = observe(func(e Event) { f.targetChanged(StartEnd, e) })
	f.watch[FinishEnd] = observe(func(e Event) { f.targetChanged(FinishEnd, e) })
}

// NewLine creates an unconnected line from start to end.
func NewLine(start, end geom.Point) *Line {
	f := newLine()
	f.points = [2]geom.Point{start, end}
	return f
}

func (f *Line) Kind() Kind { return KindLine }

// Point returns the position of end e.
func (f *Line) Point(e End) geom.Point { return f.points[e] }

// Connector returns the connector of end e, or nil.
func (f *Line) Connector(e End) *Connector { return f.conn[e] }

// Connect attaches end e to target and recomputes both ends. A target
// that is the line or one of its ancestors is rejected with
// ErrConnectCycle.
func (f *Line) Connect(e End, target Connectable) error {
	if target != nil && contains(target, f) {
		return ErrConnectCycle
	}
	f.basicConnect(e, target)
	f.UpdateConnection()
	return nil
}

// contains reports whether f is root or one of its descendants.
func contains(root, f Figure) bool {
	found := false
	Walk(root, func(x Figure) {
		if x == f {
			found = true
		}
	})
	return found
}

// Disconnect detaches end e. The end keeps its current position.
func (f *Line) Disconnect(e End) {
	f.basicConnect(e, nil)
}

func (f *Line) basicConnect(e End, target Connectable) {
	if c := f.conn[e]; c != nil {
		c.owner.RemoveObserver(f.watch[e])
		f.conn[e] = nil
	}
	if target != nil {
		f.conn[e] = NewConnector(target)
		target.AddObserver(f.watch[e])
	}
}

func (f *Line) targetChanged(e End, ev Event) {
	c := f.conn[e]
	if c == nil || ev.Source != Figure(c.owner) {
		return
	}
	switch ev.Kind {
	case Removed:
		Logger().Debug("connection target removed", "line", f.id, "end", e.String(), "target", c.owner.ID())
		f.Disconnect(e)
	case GeometryChanged, AttributeChanged:
		f.UpdateConnection()
	}
}

// UpdateConnection moves every connected end to the chop point of its
// target as seen from the other end. Calls made while an update is in
// progress return immediately.
func (f *Line) UpdateConnection() {
	if f.updating {
		return
	}
	f.updating = true
	defer func() { f.updating = false }()

	changed := false
	for _, e := range [2]End{StartEnd, FinishEnd} {
		c := f.conn[e]
		if c == nil {
			continue
		}
		var toward geom.Point
		if oc := f.conn[e.other()]; oc != nil {
			toward = oc.Center()
		} else {
			toward = f.points[e.other()]
		}
		p := c.Chop(toward)
		if p != f.points[e] {
			f.points[e] = p
			changed = true
		}
	}
	if changed {
		f.fireGeometry()
	}
}

// DecorationRadius returns the radius of the tip drawn at end e. Negative
// values count as no tip.
func (f *Line) DecorationRadius(e End) float64 {
	key := attr.StartDecoration
	if e == FinishEnd {
		key = attr.EndDecoration
	}
	return math.Max(key.Get(f.attrs), 0)
}

// Bounds spans both ends and the tips drawn around them.
func (f *Line) Bounds() geom.Rect {
	r := geom.RectFromPoints(f.points[0], f.points[1])
	for _, e := range [2]End{StartEnd, FinishEnd} {
		if d := f.DecorationRadius(e); d > 0 {
			p := f.points[e]
			r = r.Union(geom.Rect{X: p.X - d, Y: p.Y - d, W: 2 * d, H: 2 * d})
		}
	}
	return r
}

// Contains reports whether p lies within the stroke or hitTolerance of the
// segment, or within the tip of a decorated end.
func (f *Line) Contains(p geom.Point) bool {
	tol := math.Max(attr.StrokeWidth.Get(f.attrs)/2, hitTolerance)
	if geom.SegmentDistance(p, f.points[0], f.points[1]) <= tol {
		return true
	}
	for _, e := range [2]End{StartEnd, FinishEnd} {
		if d := f.DecorationRadius(e); d > 0 && p.Dist(f.points[e]) <= d {
			return true
		}
	}
	return false
}

// SetBounds moves the ends to anchor and lead.
func (f *Line) SetBounds(anchor, lead geom.Point) {
	if !anchor.IsFinite() || !lead.IsFinite() {
		return
	}
	f.points = [2]geom.Point{anchor, lead}
	f.fireGeometry()
	f.UpdateConnection()
}

// Transform maps both ends through m, then re-attaches connected ends.
func (f *Line) Transform(m geom.Matrix) {
	if !m.IsFinite() {
		return
	}
	f.points[0] = m.TransformPoint(f.points[0])
	f.points[1] = m.TransformPoint(f.points[1])
	f.fireGeometry()
	f.UpdateConnection()
}

func (f *Line) geometryState() any { return f.points }

func (f *Line) restoreGeometry(state any) {
	f.points = state.([2]geom.Point)
	f.fireGeometry()
}

func (f *Line) copyFigure(remap Remap) Figure {
	c := &Line{}
	c.initFrom(c, &f.base)
	c.initWatches()
	c.points = f.points
	// Rebound in remapRefs.
	for e, conn := range f.conn {
		if conn != nil {
			c.conn[e] = &Connector{owner: conn.owner}
		}
	}
	remap[f.id] = c
	return c
}

func (f *Line) remapRefs(remap Remap, dropped *[]DroppedRef) {
	for _, e := range [2]End{StartEnd, FinishEnd} {
		conn := f.conn[e]
		if conn == nil {
			continue
		}
		old := conn.owner
		f.conn[e] = nil
		if nt, ok := remap[old.ID()].(Connectable); ok {
			f.basicConnect(e, nt)
			continue
		}
		*dropped = append(*dropped, DroppedRef{Figure: f, Field: e.String(), Target: old.ID()})
	}
}

func (f *Line) encode(n *node.Node, enc *encoder) {
	n.SetFloat("x1", f.points[0].X)
	n.SetFloat("y1", f.points[0].Y)
	n.SetFloat("x2", f.points[1].X)
	n.SetFloat("y2", f.points[1].Y)
	for _, e := range [2]End{StartEnd, FinishEnd} {
		if c := f.conn[e]; c != nil {
			enc.ref(n, e.String(), c.owner)
		}
	}
}

func (f *Line) decode(n *node.Node, dec *decoder) error {
	v, err := n.Floats("x1", "y1", "x2", "y2")
	if err != nil {
		return err
	}
	f.points = [2]geom.Point{geom.Pt(v[0], v[1]), geom.Pt(v[2], v[3])}
	for _, e := range [2]End{StartEnd, FinishEnd} {
		e := e
		dec.resolve(n, e.String(), func(target Figure) error {
			ct, ok := target.(Connectable)
			if !ok {
				return n.Errorf(e.String(), "target is a %s, not connectable", target.Kind())
			}
			if contains(ct, f) {
				return n.Errorf(e.String(), "target #%d contains the line", n.Refs[e.String()])
			}
			f.basicConnect(e, ct)
			return nil
		})
	}
	return nil
}
