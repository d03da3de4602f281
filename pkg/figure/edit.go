package figure

import (
	"github.com/ha1tch/drawkit/pkg/attr"
	"github.com/ha1tch/drawkit/pkg/geom"
	"github.com/ha1tch/drawkit/pkg/undo"
)

// The functions in this file apply a change immediately and return the
// undo.Edit that reverts it. Hosts pass the edit to an undo.Manager.

type attributeEdit struct {
	f      Figure
	key    attr.AnyKey
	old    any
	new    any
	wasSet bool
	unset  bool
}

func (e *attributeEdit) Name() string { return "Set " + e.key.Name() }

func (e *attributeEdit) Undo() {
	s := e.f.Attributes()
	if e.wasSet {
		_ = e.key.SetAny(s, e.old)
	} else {
		e.key.UnsetAny(s)
	}
}

func (e *attributeEdit) Redo() {
	s := e.f.Attributes()
	if e.unset {
		e.key.UnsetAny(s)
	} else {
		_ = e.key.SetAny(s, e.new)
	}
}

// SetAttribute sets key on f.
func SetAttribute[T any](f Figure, key *attr.Key[T], v T) undo.Edit {
	s := f.Attributes()
	e := &attributeEdit{f: f, key: key, old: key.Get(s), new: v, wasSet: key.IsSet(s)}
	key.Set(s, v)
	return e
}

// SetAttributeAny sets key on f from an untyped value.
func SetAttributeAny(f Figure, key attr.AnyKey, v any) (undo.Edit, error) {
	s := f.Attributes()
	e := &attributeEdit{f: f, key: key, old: key.GetAny(s), new: v, wasSet: key.IsSet(s)}
	if err := key.SetAny(s, v); err != nil {
		return nil, err
	}
	return e, nil
}

// UnsetAttribute removes an explicit value of key from f.
func UnsetAttribute(f Figure, key attr.AnyKey) undo.Edit {
	s := f.Attributes()
	e := &attributeEdit{f: f, key: key, old: key.GetAny(s), wasSet: key.IsSet(s), unset: true}
	key.UnsetAny(s)
	return e
}

// SetText replaces the text of t.
func SetText(t TextHolder, s string) undo.Edit {
	return SetAttribute(t, attr.Text, s)
}

type geometryEdit struct {
	name          string
	f             Figure
	before, after any
}

func (e *geometryEdit) Name() string { return e.name }
func (e *geometryEdit) Undo()        { e.f.restoreGeometry(e.before) }
func (e *geometryEdit) Redo()        { e.f.restoreGeometry(e.after) }

// TransformFigure applies m to f.
func TransformFigure(f Figure, m geom.Matrix) undo.Edit {
	before := f.geometryState()
	f.Transform(m)
	return &geometryEdit{name: "Transform", f: f, before: before, after: f.geometryState()}
}

// MoveFigure translates f by dx, dy.
func MoveFigure(f Figure, dx, dy float64) undo.Edit {
	e := TransformFigure(f, geom.Translate(dx, dy)).(*geometryEdit)
	e.name = "Move"
	return e
}

// SetFigureBounds spans f between anchor and lead.
func SetFigureBounds(f Figure, anchor, lead geom.Point) undo.Edit {
	before := f.geometryState()
	f.SetBounds(anchor, lead)
	return &geometryEdit{name: "Resize", f: f, before: before, after: f.geometryState()}
}

// SetLabelFor binds l to target.
func SetLabelFor(l *Label, target TextHolder) undo.Edit {
	old := l.Target()
	l.SetLabelFor(target)
	return undo.Func("Label",
		func() { l.SetLabelFor(old) },
		func() { l.SetLabelFor(target) },
	)
}

// ConnectLine attaches end e of l to target, or detaches it when target
// is nil. It fails with ErrConnectCycle, leaving l unchanged, when target
// contains l.
func ConnectLine(l *Line, e End, target Connectable) (undo.Edit, error) {
	if target != nil && contains(target, l) {
		return nil, ErrConnectCycle
	}
	var old Connectable
	if c := l.Connector(e); c != nil {
		old = c.Owner()
	}
	before := l.points
	apply := func(t Connectable) {
		if t == nil {
			l.Disconnect(e)
		} else {
			l.Connect(e, t)
		}
	}
	apply(target)
	after := l.points
	name := "Connect"
	if target == nil {
		name = "Disconnect"
	}
	return undo.Func(name,
		func() {
			l.basicConnect(e, old)
			l.restoreGeometry(before)
		},
		func() {
			apply(target)
			l.restoreGeometry(after)
		},
	), nil
}

type imageState struct {
	data []byte
	w, h int
	rect geom.Rect
}

// SetImage stores decoded image data on img and resizes it to the image's
// pixel size, keeping its top-left corner.
func SetImage(img *Image, data []byte, w, h int) undo.Edit {
	before := imageState{img.data, img.width, img.height, img.rect}
	after := imageState{data, w, h, geom.Rect{X: img.rect.X, Y: img.rect.Y, W: float64(w), H: float64(h)}}
	apply := func(s imageState) {
		img.SetImage(s.data, s.w, s.h)
		img.restoreGeometry(s.rect)
	}
	apply(after)
	return undo.Func("Image",
		func() { apply(before) },
		func() { apply(after) },
	)
}
