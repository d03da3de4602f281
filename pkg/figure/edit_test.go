package figure

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ha1tch/drawkit/pkg/attr"
	"github.com/ha1tch/drawkit/pkg/config"
	"github.com/ha1tch/drawkit/pkg/geom"
	"github.com/ha1tch/drawkit/pkg/node"
	"github.com/ha1tch/drawkit/pkg/undo"
)

func TestCompoundAttributeEdit(t *testing.T) {
	r := NewRectangle(geom.Rect{W: 10, H: 10})
	m := undo.NewManager(undo.DefaultLimit)
	before := Encode(r)

	m.BeginEdit("attributes")
	m.Fire(SetAttribute(r, attr.FillColor, attr.RGB(1, 2, 3)))
	m.Fire(SetAttribute(r, attr.StrokeWidth, 4))
	m.Fire(SetAttribute(r, attr.StrokePlacement, attr.Inside))
	if err := m.CommitEdit(); err != nil {
		t.Fatal(err)
	}
	if got := m.UndoName(); got != "attributes" {
		t.Errorf("UndoName = %q", got)
	}

	if err := m.Undo(); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(before, Encode(r)); diff != "" {
		t.Errorf("undo left changes (-want +got):\n%s", diff)
	}
	if m.CanUndo() {
		t.Error("one undo should have consumed the compound edit")
	}

	if err := m.Redo(); err != nil {
		t.Fatal(err)
	}
	if attr.StrokeWidth.Get(r.Attributes()) != 4 || attr.StrokePlacement.Get(r.Attributes()) != attr.Inside {
		t.Error("redo did not reapply all edits")
	}
}

// Each edit followed by its undo leaves the figure's serialized form as
// it was; the redo yields the state right after the edit.
func TestEditInverse(t *testing.T) {
	tests := []struct {
		name string
		fig  func() Figure
		edit func(Figure) undo.Edit
	}{
		{"set attribute", func() Figure { return NewEllipse(geom.Rect{W: 5, H: 5}) },
			func(f Figure) undo.Edit { return SetAttribute(f, attr.FillColor, attr.None) }},
		{"set attribute any", func() Figure { return NewEllipse(geom.Rect{W: 5, H: 5}) },
			func(f Figure) undo.Edit {
				e, err := SetAttributeAny(f, attr.FontSize, 30.0)
				if err != nil {
					panic(err)
				}
				return e
			}},
		{"unset attribute", func() Figure {
			f := NewRectangle(geom.Rect{W: 5, H: 5})
			attr.StrokeWidth.Set(f.Attributes(), 3)
			return f
		}, func(f Figure) undo.Edit { return UnsetAttribute(f, attr.StrokeWidth) }},
		{"set text", func() Figure { return NewText(geom.Pt(1, 1), "old") },
			func(f Figure) undo.Edit { return SetText(f.(TextHolder), "new") }},
		{"move", func() Figure { return NewDiamond(geom.Rect{W: 5, H: 5}) },
			func(f Figure) undo.Edit { return MoveFigure(f, 3, -2) }},
		{"transform group", func() Figure {
			return NewGroup(NewRectangle(geom.Rect{W: 5, H: 5}), NewText(geom.Pt(10, 10), "t"))
		}, func(f Figure) undo.Edit { return TransformFigure(f, geom.Scale(2, 3)) }},
		{"resize", func() Figure { return NewRectangle(geom.Rect{W: 5, H: 5}) },
			func(f Figure) undo.Edit { return SetFigureBounds(f, geom.Pt(10, 10), geom.Pt(0, 0)) }},
		{"set image", func() Figure { return NewImage(geom.Rect{X: 3, Y: 4, W: 1, H: 1}) },
			func(f Figure) undo.Edit { return SetImage(f.(*Image), []byte{9, 9}, 20, 10) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tt.fig()
			before := Encode(f)
			e := tt.edit(f)
			after := Encode(f)
			if cmp.Equal(before, after) {
				t.Fatal("edit changed nothing")
			}
			e.Undo()
			if diff := cmp.Diff(before, Encode(f)); diff != "" {
				t.Errorf("undo (-want +got):\n%s", diff)
			}
			e.Redo()
			if diff := cmp.Diff(after, Encode(f)); diff != "" {
				t.Errorf("redo (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSetImageResizes(t *testing.T) {
	img := NewImage(geom.Rect{X: 3, Y: 4, W: 1, H: 1})
	SetImage(img, []byte{1}, 20, 10)
	if img.Bounds() != (geom.Rect{X: 3, Y: 4, W: 20, H: 10}) {
		t.Errorf("Bounds = %+v", img.Bounds())
	}
	if w, h := img.ImageSize(); w != 20 || h != 10 || !img.HasImage() {
		t.Errorf("ImageSize = %d x %d", w, h)
	}
}

func TestConnectLineEdit(t *testing.T) {
	a := NewRectangle(geom.Rect{W: 10, H: 10})
	b := NewRectangle(geom.Rect{X: 100, W: 10, H: 10})
	l := NewLine(geom.Pt(50, 50), geom.Pt(60, 60))
	l.Connect(StartEnd, a)
	start := l.Point(StartEnd)

	e, err := ConnectLine(l, StartEnd, b)
	if err != nil {
		t.Fatal(err)
	}
	if l.Connector(StartEnd).Owner() != Connectable(b) {
		t.Fatal("not connected to b")
	}
	e.Undo()
	if l.Connector(StartEnd).Owner() != Connectable(a) || l.Point(StartEnd) != start {
		t.Error("undo did not restore the previous connection")
	}
	if b.ObserverCount() != 0 {
		t.Error("undo left the line observing b")
	}
	e.Redo()
	if l.Connector(StartEnd).Owner() != Connectable(b) || a.ObserverCount() != 0 {
		t.Error("redo did not move the connection")
	}

	d, err := ConnectLine(l, StartEnd, nil)
	if err != nil {
		t.Fatal(err)
	}
	if l.Connector(StartEnd) != nil || d.Name() != "Disconnect" {
		t.Error("nil target should disconnect")
	}
	d.Undo()
	if l.Connector(StartEnd) == nil {
		t.Error("undo of disconnect lost the connection")
	}
}

func TestSetLabelForEdit(t *testing.T) {
	a := NewText(geom.Pt(0, 0), "a")
	b := NewText(geom.Pt(0, 20), "b")
	l := NewLabel(geom.Pt(0, 40), "l")
	l.SetLabelFor(a)

	e := SetLabelFor(l, b)
	if l.Target() != TextHolder(b) || a.ObserverCount() != 0 {
		t.Fatal("label not moved to b")
	}
	e.Undo()
	if l.Target() != TextHolder(a) || b.ObserverCount() != 0 {
		t.Error("undo did not restore the binding")
	}
}

func TestRemoveUndoRestoresBindings(t *testing.T) {
	d := NewDocument(config.Default())
	txt := NewText(geom.Pt(0, 0), "name")
	lbl := NewLabel(geom.Pt(0, 20), "label")
	box := NewRectangle(geom.Rect{X: 100, W: 10, H: 10})
	line := NewLine(geom.Pt(0, 0), geom.Pt(0, 0))
	if _, err := d.AddAll(txt, lbl, box, line); err != nil {
		t.Fatal(err)
	}
	lbl.SetLabelFor(txt)
	line.Connect(StartEnd, txt)
	line.Connect(FinishEnd, box)

	e, err := d.RemoveAll(txt, box)
	if err != nil {
		t.Fatal(err)
	}
	if lbl.Target() != nil || line.Connector(StartEnd) != nil || line.Connector(FinishEnd) != nil {
		t.Fatal("bindings survived removal")
	}
	if d.Has(txt) || d.Has(box) {
		t.Fatal("removed figures still indexed")
	}

	e.Undo()
	if lbl.Target() != TextHolder(txt) {
		t.Error("label binding not restored")
	}
	if line.Connector(StartEnd) == nil || line.Connector(StartEnd).Owner() != Connectable(txt) {
		t.Error("line start not restored")
	}
	if line.Connector(FinishEnd) == nil || line.Connector(FinishEnd).Owner() != Connectable(box) {
		t.Error("line end not restored")
	}
	if !d.Has(txt) || !d.Has(box) {
		t.Error("figures not re-indexed")
	}
	if got := d.Figures(); len(got) != 4 || got[0] != Figure(txt) || got[2] != Figure(box) {
		t.Errorf("z-order not restored: %v", got)
	}

	e.Redo()
	if lbl.Target() != nil || d.Has(txt) {
		t.Error("redo did not remove again")
	}
}

func TestGroupUngroupUndo(t *testing.T) {
	d := NewDocument(config.Default())
	a := NewRectangle(geom.Rect{W: 10, H: 10})
	b := NewEllipse(geom.Rect{X: 20, W: 10, H: 10})
	c := NewText(geom.Pt(40, 0), "c")
	if _, err := d.AddAll(a, b, c); err != nil {
		t.Fatal(err)
	}
	snapshot := func() []*node.Node { return EncodeAll(d.Figures()) }
	before := snapshot()

	e, g, err := d.GroupFigures(c, a)
	if err != nil {
		t.Fatal(err)
	}
	if got := d.Figures(); len(got) != 2 || got[0] != Figure(g) || got[1] != Figure(b) {
		t.Fatalf("after grouping: %v", got)
	}
	if p, _ := d.Parent(a); p != g {
		t.Error("parent table not updated")
	}
	if kids := g.Children(); kids[0] != Figure(a) || kids[1] != Figure(c) {
		t.Error("grouped children not in z-order")
	}

	e.Undo()
	if diff := cmp.Diff(before, snapshot()); diff != "" {
		t.Errorf("group undo (-want +got):\n%s", diff)
	}
	if d.Has(g) {
		t.Error("undone group still indexed")
	}
	if p, _ := d.Parent(a); p != d.Root() {
		t.Error("parent not restored")
	}

	e.Redo()
	ue, kids, err := d.Ungroup(g)
	if err != nil {
		t.Fatal(err)
	}
	if len(kids) != 2 || d.Has(g) || !d.Has(a) {
		t.Fatal("ungroup did not dissolve the group")
	}
	if diff := cmp.Diff(before[0], Encode(d.Figures()[0])); diff != "" {
		t.Errorf("ungrouped child differs (-want +got):\n%s", diff)
	}
	ue.Undo()
	if !d.Has(g) || g.Len() != 2 {
		t.Error("ungroup undo did not restore the group")
	}
}

func TestGroupFiguresMixedParents(t *testing.T) {
	d := NewDocument(config.Default())
	a := NewRectangle(geom.Rect{})
	b := NewRectangle(geom.Rect{})
	inner := NewGroup(b)
	d.AddAll(a, inner)
	if _, _, err := d.GroupFigures(a, b); err != ErrMixedParents {
		t.Errorf("err = %v, want ErrMixedParents", err)
	}
}
