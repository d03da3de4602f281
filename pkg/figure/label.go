package figure

import (
	"github.com/ha1tch/drawkit/pkg/attr"
	"github.com/ha1tch/drawkit/pkg/geom"
	"github.com/ha1tch/drawkit/pkg/node"
)

// Label is a non-editable text figure that names another text holder.
// It observes its target and lets go of it when the target is removed.
type Label struct {
	TextFigure
	target TextHolder
	watch  *funcObserver
}

func newLabel() *Label {
	f := &Label{}
	f.init(f)
	f.watch = observe(f.targetChanged)
	return f
}

// NewLabel creates a label that is not yet bound to a target.
func NewLabel(origin geom.Point, text string) *Label {
	f := newLabel()
	f.origin = origin
	attr.Text.BasicSet(f.attrs, text)
	return f
}

func (f *Label) Kind() Kind { return KindLabel }

// SetLabelFor binds the label to target, releasing any previous target.
// A nil target unbinds.
func (f *Label) SetLabelFor(target TextHolder) {
	if f.target != nil {
		f.target.RemoveObserver(f.watch)
	}
	f.target = target
	if f.target != nil {
		f.target.AddObserver(f.watch)
	}
}

// LabelFor returns the bound target, or the label itself when unbound.
func (f *Label) LabelFor() TextHolder {
	if f.target == nil {
		return f
	}
	return f.target
}

// Target returns the bound target or nil.
func (f *Label) Target() TextHolder { return f.target }

func (f *Label) targetChanged(e Event) {
	if e.Kind == Removed && f.target != nil && e.Source == Figure(f.target) {
		Logger().Debug("label target removed", "label", f.id, "target", f.target.ID())
		f.SetLabelFor(nil)
	}
}

func (f *Label) copyFigure(remap Remap) Figure {
	c := &Label{}
	c.copyText(c, &f.TextFigure)
	c.watch = observe(c.targetChanged)
	// Bound in remapRefs.
	c.target = f.target
	remap[f.id] = c
	return c
}

func (f *Label) remapRefs(remap Remap, dropped *[]DroppedRef) {
	if f.target == nil {
		return
	}
	old := f.target
	f.target = nil
	if nt, ok := remap[old.ID()].(TextHolder); ok {
		f.SetLabelFor(nt)
		return
	}
	*dropped = append(*dropped, DroppedRef{Figure: f, Field: "labelFor", Target: old.ID()})
}

func (f *Label) encode(n *node.Node, enc *encoder) {
	f.TextFigure.encode(n, enc)
	if f.target != nil {
		enc.ref(n, "labelFor", f.target)
	}
}

func (f *Label) decode(n *node.Node, dec *decoder) error {
	if err := f.TextFigure.decode(n, dec); err != nil {
		return err
	}
	dec.resolve(n, "labelFor", func(target Figure) error {
		th, ok := target.(TextHolder)
		if !ok {
			return n.Errorf("labelFor", "target #%d is a %s, not a text holder", n.Refs["labelFor"], target.Kind())
		}
		f.SetLabelFor(th)
		return nil
	})
	return nil
}
