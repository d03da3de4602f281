// Angle and intersection helpers used by the connector chop routines.
// Angles are measured from the rectangle center with y pointing down and
// scaled by the rectangle's aspect so that the corners sit on the diagonals.

package geom

import "math"

// PointToAngle returns the aspect-normalised angle from the center of r to p.
func PointToAngle(r Rect, p Point) float64 {
	c := r.Center()
	return math.Atan2((p.Y-c.Y)*r.W, (p.X-c.X)*r.H)
}

// AngleToPoint projects an aspect-normalised angle onto the border of r.
func AngleToPoint(r Rect, angle float64) Point {
	const eps = 0.0001
	si := math.Sin(angle)
	co := math.Cos(angle)

	var x, y float64
	if math.Abs(si) > eps {
		x = clamp((1.0+co/math.Abs(si))/2.0*r.W, 0, r.W)
	} else if co >= 0 {
		x = r.W
	}
	if math.Abs(co) > eps {
		y = clamp((1.0+si/math.Abs(co))/2.0*r.H, 0, r.H)
	} else if si >= 0 {
		y = r.H
	}
	return Point{r.X + x, r.Y + y}
}

// OvalAngleToPoint returns the point on the ellipse inscribed in r at the
// given aspect-normalised angle. The point lies on the ray from the center
// at the matching geometric angle.
func OvalAngleToPoint(r Rect, angle float64) Point {
	c := r.Center()
	return Point{
		c.X + r.W/2*math.Cos(angle),
		c.Y + r.H/2*math.Sin(angle),
	}
}

// Intersect returns the intersection of segments p1-p2 and p3-p4.
// Parallel or non-overlapping segments report false.
func Intersect(p1, p2, p3, p4 Point) (Point, bool) {
	d1x, d1y := p2.X-p1.X, p2.Y-p1.Y
	d2x, d2y := p4.X-p3.X, p4.Y-p3.Y
	den := d1x*d2y - d1y*d2x
	if den == 0 {
		return Point{}, false
	}
	ox, oy := p3.X-p1.X, p3.Y-p1.Y
	t := (ox*d2y - oy*d2x) / den
	u := (ox*d1y - oy*d1x) / den
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return Point{}, false
	}
	return Point{p1.X + t*d1x, p1.Y + t*d1y}, true
}

// SegmentDistance returns the distance from p to segment a-b.
func SegmentDistance(p, a, b Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return p.Dist(a)
	}
	t := clamp(((p.X-a.X)*dx+(p.Y-a.Y)*dy)/l2, 0, 1)
	return p.Dist(Point{a.X + t*dx, a.Y + t*dy})
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
