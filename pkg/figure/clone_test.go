package figure

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ha1tch/drawkit/pkg/attr"
	"github.com/ha1tch/drawkit/pkg/geom"
)

func idsOf(f Figure) map[ID]bool {
	ids := make(map[ID]bool)
	Walk(f, func(x Figure) { ids[x.ID()] = true })
	return ids
}

func TestCloneGroup(t *testing.T) {
	rect := NewRectangle(geom.Rect{X: 10, Y: 10, W: 100, H: 50})
	attr.FillColor.Set(rect.Attributes(), attr.RGB(200, 10, 10))
	g := NewGroup(rect, NewText(geom.Pt(20, 80), "caption"))

	res := Clone(g)
	cg, ok := res.Figure.(*Group)
	if !ok {
		t.Fatalf("clone is a %T", res.Figure)
	}
	if cg.Len() != 2 {
		t.Fatalf("clone has %d children, want 2", cg.Len())
	}
	orig := idsOf(g)
	for id := range idsOf(cg) {
		if orig[id] {
			t.Errorf("clone shares identity %d with the original", id)
		}
	}
	if got, want := cg.Bounds(), g.Bounds(); !got.ApproxEqual(want, 1e-9) {
		t.Errorf("clone bounds = %+v, want %+v", got, want)
	}
	if len(res.Dropped) != 0 {
		t.Errorf("unexpected dropped refs: %v", res.Dropped)
	}
	if diff := cmp.Diff(Encode(g), Encode(cg)); diff != "" {
		t.Errorf("clone encodes differently (-orig +clone):\n%s", diff)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	rect := NewRectangle(geom.Rect{W: 10, H: 10})
	c := Clone(rect).Figure

	attr.FillColor.Set(c.Attributes(), attr.None)
	c.Transform(geom.Translate(5, 5))
	if attr.FillColor.Get(rect.Attributes()) != attr.FillColor.Default() {
		t.Error("attribute change leaked into the original")
	}
	if rect.Bounds() != (geom.Rect{W: 10, H: 10}) {
		t.Errorf("geometry change leaked into the original: %+v", rect.Bounds())
	}
	if rect.ObserverCount() != 0 || c.figureBase().ObserverCount() != 0 {
		t.Error("clone shares observers")
	}
}

func TestCloneRemapsInternalRefs(t *testing.T) {
	target := NewText(geom.Pt(0, 0), "name")
	label := NewLabel(geom.Pt(0, 20), "label")
	label.SetLabelFor(target)
	a := NewRectangle(geom.Rect{W: 10, H: 10})
	b := NewEllipse(geom.Rect{X: 50, W: 10, H: 10})
	line := NewLine(geom.Pt(0, 0), geom.Pt(1, 1))
	line.Connect(StartEnd, a)
	line.Connect(FinishEnd, b)
	g := NewGroup(target, label, a, b, line)

	res := Clone(g)
	if len(res.Dropped) != 0 {
		t.Fatalf("dropped = %v", res.Dropped)
	}
	kids := res.Figure.(*Group).Children()
	cl := kids[1].(*Label)
	if cl.Target() != kids[0] {
		t.Error("label not rebound to the cloned target")
	}
	cline := kids[4].(*Line)
	if cline.Connector(StartEnd).Owner() != kids[2] || cline.Connector(FinishEnd).Owner() != kids[3] {
		t.Error("line not rebound to the cloned ends")
	}
	// Group watch plus the original label.
	if target.ObserverCount() != 2 {
		t.Errorf("original target has %d observers, want 2", target.ObserverCount())
	}

	// The clone follows its own targets only.
	before := line.Point(FinishEnd)
	kids[3].Transform(geom.Translate(0, 100))
	if line.Point(FinishEnd) != before {
		t.Errorf("original line moved to %v", line.Point(FinishEnd))
	}
	if cline.Point(FinishEnd) == before {
		t.Error("cloned line did not follow its target")
	}
}

func TestCloneReportsDroppedRefs(t *testing.T) {
	target := NewText(geom.Pt(0, 0), "name")
	label := NewLabel(geom.Pt(0, 20), "label")
	label.SetLabelFor(target)
	a := NewRectangle(geom.Rect{W: 10, H: 10})
	line := NewLine(geom.Pt(0, 0), geom.Pt(100, 100))
	line.Connect(StartEnd, a)

	copies, dropped := CloneAll(label, line)
	if len(dropped) != 2 {
		t.Fatalf("dropped = %v, want 2 entries", dropped)
	}
	want := []struct {
		fig   Figure
		field string
		id    ID
	}{
		{copies[0], "labelFor", target.ID()},
		{copies[1], "start", a.ID()},
	}
	for i, w := range want {
		d := dropped[i]
		if d.Figure != w.fig || d.Field != w.field || d.Target != w.id {
			t.Errorf("dropped[%d] = %+v, want %s of %d", i, d, w.field, w.id)
		}
	}
	if copies[0].(*Label).Target() != nil {
		t.Error("dropped label ref still bound")
	}
	if copies[1].(*Line).Connector(StartEnd) != nil {
		t.Error("dropped line ref still connected")
	}
	if target.ObserverCount() != 1 || a.ObserverCount() != 1 {
		t.Error("clone registered on the original targets")
	}
}
