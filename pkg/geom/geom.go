// Geometric primitives shared by figures and connectors.
// Rectangles are top-left anchored, y grows downward.

package geom

import "math"

// Point represents a 2D coordinate.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// IsFinite reports whether both coordinates are finite.
func (p Point) IsFinite() bool {
	return isFinite(p.X) && isFinite(p.Y)
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X, Y float64 // Top-left corner
	W, H float64
}

// RectFromPoints returns the smallest rectangle containing both points.
func RectFromPoints(a, b Point) Rect {
	return Rect{
		X: math.Min(a.X, b.X),
		Y: math.Min(a.Y, b.Y),
		W: math.Abs(b.X - a.X),
		H: math.Abs(b.Y - a.Y),
	}
}

// MaxX returns the right edge.
func (r Rect) MaxX() float64 { return r.X + r.W }

// MaxY returns the bottom edge.
func (r Rect) MaxY() float64 { return r.Y + r.H }

// Min returns the top-left corner.
func (r Rect) Min() Point { return Point{r.X, r.Y} }

// Max returns the bottom-right corner.
func (r Rect) Max() Point { return Point{r.X + r.W, r.Y + r.H} }

// Center returns the center point.
func (r Rect) Center() Point {
	return Point{r.X + r.W/2, r.Y + r.H/2}
}

// IsEmpty reports whether the rectangle has no area.
func (r Rect) IsEmpty() bool {
	return r.W <= 0 || r.H <= 0
}

// Contains reports whether p lies inside r. The left and top edges are
// inclusive, the right and bottom edges exclusive.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// Grow enlarges r by h on the left and right and v on the top and bottom.
// Negative values shrink it.
func (r Rect) Grow(h, v float64) Rect {
	return Rect{r.X - h, r.Y - v, r.W + 2*h, r.H + 2*v}
}

// Union returns the smallest rectangle containing r and s.
// An empty rectangle with zero size at the origin acts as identity only
// when the caller tracks emptiness; see UnionAll.
func (r Rect) Union(s Rect) Rect {
	x0 := math.Min(r.X, s.X)
	y0 := math.Min(r.Y, s.Y)
	x1 := math.Max(r.MaxX(), s.MaxX())
	y1 := math.Max(r.MaxY(), s.MaxY())
	return Rect{x0, y0, x1 - x0, y1 - y0}
}

// UnionAll returns the union of all rectangles, or the zero Rect if none.
func UnionAll(rs []Rect) Rect {
	if len(rs) == 0 {
		return Rect{}
	}
	u := rs[0]
	for _, r := range rs[1:] {
		u = u.Union(r)
	}
	return u
}

// Square expands the shorter side to match the longer one, keeping the
// center fixed.
func (r Rect) Square() Rect {
	if r.W == r.H {
		return r
	}
	side := math.Max(r.W, r.H)
	c := r.Center()
	return Rect{c.X - side/2, c.Y - side/2, side, side}
}

// IsFinite reports whether every field is finite.
func (r Rect) IsFinite() bool {
	return isFinite(r.X) && isFinite(r.Y) && isFinite(r.W) && isFinite(r.H)
}

// ApproxEqual reports whether r and s differ by at most eps in every field.
func (r Rect) ApproxEqual(s Rect, eps float64) bool {
	return math.Abs(r.X-s.X) <= eps && math.Abs(r.Y-s.Y) <= eps &&
		math.Abs(r.W-s.W) <= eps && math.Abs(r.H-s.H) <= eps
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
