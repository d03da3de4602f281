package geom

import (
	"math"
	"testing"
)

func near(a, b Point, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps
}

func TestRectFromPoints(t *testing.T) {
	r := RectFromPoints(Pt(10, 40), Pt(-10, 20))
	want := Rect{X: -10, Y: 20, W: 20, H: 20}
	if r != want {
		t.Errorf("RectFromPoints = %+v, want %+v", r, want)
	}
}

func TestRectUnion(t *testing.T) {
	a := Rect{0, 0, 10, 10}
	b := Rect{20, -5, 5, 5}
	u := a.Union(b)
	want := Rect{0, -5, 25, 15}
	if u != want {
		t.Errorf("Union = %+v, want %+v", u, want)
	}
	if got := UnionAll([]Rect{a, b}); got != want {
		t.Errorf("UnionAll = %+v, want %+v", got, want)
	}
	if got := UnionAll(nil); got != (Rect{}) {
		t.Errorf("UnionAll(nil) = %+v, want zero", got)
	}
}

func TestRectContains(t *testing.T) {
	r := Rect{0, 0, 10, 10}
	tests := []struct {
		p    Point
		want bool
	}{
		{Pt(0, 0), true},
		{Pt(5, 5), true},
		{Pt(10, 5), false},
		{Pt(-0.1, 5), false},
		{Pt(5, 10), false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.p); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestRectSquare(t *testing.T) {
	r := Rect{0, 0, 100, 50}.Square()
	want := Rect{0, -25, 100, 100}
	if r != want {
		t.Errorf("Square = %+v, want %+v", r, want)
	}
	if c := r.Center(); c != Pt(50, 25) {
		t.Errorf("Square moved center to %v", c)
	}
}

func TestRectGrow(t *testing.T) {
	r := Rect{0, 0, 100, 50}.Grow(1, 2)
	want := Rect{-1, -2, 102, 54}
	if r != want {
		t.Errorf("Grow = %+v, want %+v", r, want)
	}
}

func TestMatrixInvert(t *testing.T) {
	m := Translate(10, 5).Multiply(Rotate(0.7)).Multiply(Scale(2, 3))
	inv, ok := m.Invert()
	if !ok {
		t.Fatal("expected invertible matrix")
	}
	p := Pt(3, -4)
	back := inv.TransformPoint(m.TransformPoint(p))
	if !near(back, p, 1e-9) {
		t.Errorf("round trip = %v, want %v", back, p)
	}
	if _, ok := Scale(0, 1).Invert(); ok {
		t.Error("singular matrix reported invertible")
	}
}

func TestScaleAbout(t *testing.T) {
	m := ScaleAbout(Pt(10, 10), 2, 2)
	if got := m.TransformPoint(Pt(10, 10)); !near(got, Pt(10, 10), 1e-12) {
		t.Errorf("fixed point moved to %v", got)
	}
	if got := m.TransformPoint(Pt(20, 10)); !near(got, Pt(30, 10), 1e-12) {
		t.Errorf("got %v, want (30,10)", got)
	}
}

func TestTransformRect(t *testing.T) {
	r := Translate(5, 5).TransformRect(Rect{0, 0, 10, 20})
	if r != (Rect{5, 5, 10, 20}) {
		t.Errorf("TransformRect = %+v", r)
	}
	r = Rotate(math.Pi / 2).TransformRect(Rect{0, 0, 10, 20})
	if !r.ApproxEqual(Rect{-20, 0, 20, 10}, 1e-9) {
		t.Errorf("rotated = %+v", r)
	}
}

func TestAngleToPointCardinal(t *testing.T) {
	r := Rect{0, 0, 100, 50}
	tests := []struct {
		from Point
		want Point
	}{
		{Pt(50, -100), Pt(50, 0)},
		{Pt(50, 200), Pt(50, 50)},
		{Pt(300, 25), Pt(100, 25)},
		{Pt(-300, 25), Pt(0, 25)},
		{Pt(150, 75), Pt(100, 50)},
	}
	for _, tt := range tests {
		got := AngleToPoint(r, PointToAngle(r, tt.from))
		if !near(got, tt.want, 1e-9) {
			t.Errorf("from %v: got %v, want %v", tt.from, got, tt.want)
		}
	}
}

func TestOvalAngleToPointOnEllipse(t *testing.T) {
	r := Rect{10, 20, 80, 40}
	c := r.Center()
	for i := 0; i < 16; i++ {
		a := float64(i) * 2 * math.Pi / 16
		from := Pt(c.X+200*math.Cos(a), c.Y+200*math.Sin(a))
		p := OvalAngleToPoint(r, PointToAngle(r, from))
		dx := (p.X - c.X) / (r.W / 2)
		dy := (p.Y - c.Y) / (r.H / 2)
		if math.Abs(dx*dx+dy*dy-1) > 1e-9 {
			t.Errorf("angle %d: %v not on ellipse", i, p)
		}
		// Collinear with the center->from ray.
		cross := (p.X-c.X)*(from.Y-c.Y) - (p.Y-c.Y)*(from.X-c.X)
		if math.Abs(cross) > 1e-6 {
			t.Errorf("angle %d: %v off the ray, cross=%g", i, p, cross)
		}
	}
}

func TestIntersect(t *testing.T) {
	p, ok := Intersect(Pt(0, 0), Pt(10, 10), Pt(0, 10), Pt(10, 0))
	if !ok || !near(p, Pt(5, 5), 1e-12) {
		t.Errorf("Intersect = %v, %v", p, ok)
	}
	if _, ok := Intersect(Pt(0, 0), Pt(1, 1), Pt(5, 0), Pt(6, -1)); ok {
		t.Error("disjoint segments reported intersecting")
	}
	if _, ok := Intersect(Pt(0, 0), Pt(10, 0), Pt(0, 1), Pt(10, 1)); ok {
		t.Error("parallel segments reported intersecting")
	}
}

func TestSegmentDistance(t *testing.T) {
	if d := SegmentDistance(Pt(5, 3), Pt(0, 0), Pt(10, 0)); math.Abs(d-3) > 1e-12 {
		t.Errorf("distance = %g, want 3", d)
	}
	if d := SegmentDistance(Pt(-3, 4), Pt(0, 0), Pt(10, 0)); math.Abs(d-5) > 1e-12 {
		t.Errorf("distance = %g, want 5", d)
	}
}
