// Package chop computes where a connection line meets the outline of a
// shape. Each routine takes the shape's logical bounds, the stroke that
// decorates it and the point the connection comes from.
package chop

import (
	"math"

	"github.com/ha1tch/drawkit/pkg/attr"
	"github.com/ha1tch/drawkit/pkg/geom"
)

// Stroke describes the outline a shape is drawn with. Width should be 0
// when the stroke is not painted.
type Stroke struct {
	Width     float64
	Placement attr.Placement
}

// StrokeOf reads the stroke of an attribute store. An invisible stroke
// color yields a zero width.
func StrokeOf(s *attr.Store) Stroke {
	if !attr.StrokeColor.Get(s).Visible() {
		return Stroke{Placement: attr.StrokePlacement.Get(s)}
	}
	return Stroke{
		Width:     attr.StrokeWidth.Get(s),
		Placement: attr.StrokePlacement.Get(s),
	}
}

// Growth returns how far the outline extends past the logical bounds.
func (s Stroke) Growth() float64 {
	switch s.Placement {
	case attr.Inside:
		return 0
	case attr.Outside:
		return s.Width
	}
	return s.Width / 2
}

// GrowRect returns r grown by the stroke on every side.
func GrowRect(r geom.Rect, s Stroke) geom.Rect {
	g := s.Growth()
	return r.Grow(g, g)
}

// Rectangle returns the chop point on a rectangle.
func Rectangle(r geom.Rect, s Stroke, from geom.Point) geom.Point {
	r = GrowRect(r, s)
	return geom.AngleToPoint(r, geom.PointToAngle(r, from))
}

// Ellipse returns the chop point on the ellipse inscribed in r.
func Ellipse(r geom.Rect, s Stroke, from geom.Point) geom.Point {
	r = GrowRect(r, s)
	return geom.OvalAngleToPoint(r, geom.PointToAngle(r, from))
}

// GrowDiamond returns the bounds of the diamond outline. Each axis grows in
// proportion to the orthogonal side, scaled by the stroke width over the
// diagonal. For square bounds this moves every edge out by the stroke
// growth.
func GrowDiamond(r geom.Rect, quadratic bool, s Stroke) geom.Rect {
	if quadratic {
		r = r.Square()
	}
	diag := math.Hypot(r.W, r.H)
	if diag == 0 {
		return r
	}
	var scale float64
	switch s.Placement {
	case attr.Outside:
		scale = s.Width * 2 / diag
	case attr.Center:
		scale = s.Width / diag
	}
	return r.Grow(scale*r.H, scale*r.W)
}

// Diamond returns the chop point on the diamond inscribed in r.
func Diamond(r geom.Rect, quadratic bool, s Stroke, from geom.Point) geom.Point {
	r = GrowDiamond(r, quadratic, s)

	c := r.Center()
	right := geom.Pt(r.X+r.W, r.Y+r.H/2)
	bottom := geom.Pt(r.X+r.W/2, r.Y+r.H)
	left := geom.Pt(r.X, r.Y+r.H/2)
	top := geom.Pt(r.X+r.W/2, r.Y)

	// Overlapping shapes: pick the vertex facing the query.
	if r.Contains(from) {
		if from.Y > r.Y && from.Y < r.Y+r.H/2 {
			return bottom
		}
		return top
	}

	ang := geom.PointToAngle(r, from)

	// Buckets are tested in a fixed order; the gaps around ±π/2 fall
	// through to the projection below.
	var a, b geom.Point
	var ok bool
	switch {
	case ang > 0 && ang < 1.57:
		a, b, ok = right, bottom, true
	case ang > 1.575 && ang < 3.14:
		a, b, ok = bottom, left, true
	case ang > -3.14 && ang < -1.575:
		a, b, ok = left, top, true
	case ang > -1.57 && ang < 0:
		a, b, ok = top, right, true
	}
	if ok {
		if p, hit := geom.Intersect(a, b, c, from); hit {
			return p
		}
	}
	return geom.AngleToPoint(r, ang)
}
