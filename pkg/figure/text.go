package figure

import (
	"github.com/ha1tch/drawkit/pkg/attr"
	"github.com/ha1tch/drawkit/pkg/chop"
	"github.com/ha1tch/drawkit/pkg/geom"
	"github.com/ha1tch/drawkit/pkg/node"
	"github.com/ha1tch/drawkit/pkg/textlayout"
)

// layoutKeys are the attributes that change text metrics.
var layoutKeys = map[string]bool{
	attr.Text.Name():          true,
	attr.FontFamily.Name():    true,
	attr.FontSize.Name():      true,
	attr.FontBold.Name():      true,
	attr.FontItalic.Name():    true,
	attr.FontUnderline.Name(): true,
	attr.StrokeDashes.Name():  true,
}

// TextFigure is a single line of text anchored at its top-left origin. Its
// bounds come from a layout computed on demand and cached until the text,
// a layout attribute or the origin changes.
type TextFigure struct {
	base
	origin   geom.Point
	editable bool
	layout   *textlayout.Metrics
}

func newText() *TextFigure {
	f := &TextFigure{editable: true}
	f.init(f)
	return f
}

// NewText creates an editable text figure.
func NewText(origin geom.Point, text string) *TextFigure {
	f := newText()
	f.origin = origin
	attr.Text.BasicSet(f.attrs, text)
	return f
}

func (f *TextFigure) Kind() Kind { return KindText }

// Text returns the displayed text.
func (f *TextFigure) Text() string { return attr.Text.Get(f.attrs) }

// SetText replaces the displayed text.
func (f *TextFigure) SetText(s string) { attr.Text.Set(f.attrs, s) }

// Origin returns the top-left corner of the text.
func (f *TextFigure) Origin() geom.Point { return f.origin }

// Editable reports whether a host may edit the text in place.
func (f *TextFigure) Editable() bool { return f.editable }

// BasicSetText sets the text without notification.
func (f *TextFigure) BasicSetText(s string) {
	attr.Text.BasicSet(f.attrs, s)
	f.layout = nil
}

// SetEditable changes Editable.
func (f *TextFigure) SetEditable(b bool) { f.editable = b }

// LabelFor returns the figure whose text this figure shows: itself.
func (f *TextFigure) LabelFor() TextHolder { return f.self.(TextHolder) }

// Invalidate drops the cached layout.
func (f *TextFigure) Invalidate() { f.layout = nil }

func (f *TextFigure) invalidateFor(key attr.AnyKey) {
	if key == nil || layoutKeys[key.Name()] {
		f.layout = nil
	}
}

// Style returns the text style derived from the attributes.
func (f *TextFigure) Style() textlayout.Style {
	return textlayout.Style{
		Family:    attr.FontFamily.Get(f.attrs),
		Size:      attr.FontSize.Get(f.attrs),
		Bold:      attr.FontBold.Get(f.attrs),
		Italic:    attr.FontItalic.Get(f.attrs),
		Underline: attr.FontUnderline.Get(f.attrs),
		Dashed:    len(attr.StrokeDashes.Get(f.attrs)) > 0,
	}
}

// Metrics returns the cached layout, computing it if needed.
func (f *TextFigure) Metrics() textlayout.Metrics {
	if f.layout == nil {
		m, err := textlayout.Measure(f.Text(), f.Style())
		if err != nil {
			Logger().Debug("text layout failed", "figure", f.id, "err", err)
		}
		f.layout = &m
	}
	return *f.layout
}

// LayoutCached reports whether a layout is currently cached.
func (f *TextFigure) LayoutCached() bool { return f.layout != nil }

// Bounds returns the origin extended by the text metrics.
func (f *TextFigure) Bounds() geom.Rect {
	m := f.Metrics()
	return geom.Rect{X: f.origin.X, Y: f.origin.Y, W: m.Advance, H: m.Height()}
}

func (f *TextFigure) Contains(p geom.Point) bool {
	return f.Bounds().Contains(p)
}

// Chop attaches connections to the text bounds.
func (f *TextFigure) Chop(from geom.Point) geom.Point {
	return chop.Rectangle(f.Bounds(), chop.StrokeOf(f.attrs), from)
}

// SetBounds moves the origin to anchor. Text size is never stretched.
func (f *TextFigure) SetBounds(anchor, _ geom.Point) {
	if !anchor.IsFinite() {
		return
	}
	f.origin = anchor
	f.layout = nil
	f.fireGeometry()
}

// Transform moves the origin through m.
func (f *TextFigure) Transform(m geom.Matrix) {
	if !m.IsFinite() {
		return
	}
	f.origin = m.TransformPoint(f.origin)
	f.layout = nil
	f.fireGeometry()
}

func (f *TextFigure) geometryState() any { return f.origin }

func (f *TextFigure) restoreGeometry(state any) {
	f.origin = state.(geom.Point)
	f.layout = nil
	f.fireGeometry()
}

func (f *TextFigure) copyText(self Figure, src *TextFigure) {
	f.initFrom(self, &src.base)
	f.origin = src.origin
	f.editable = src.editable
}

func (f *TextFigure) copyFigure(remap Remap) Figure {
	c := &TextFigure{}
	c.copyText(c, f)
	remap[f.id] = c
	return c
}

func (f *TextFigure) encode(n *node.Node, _ *encoder) {
	n.SetFloat("x", f.origin.X)
	n.SetFloat("y", f.origin.Y)
}

func (f *TextFigure) decode(n *node.Node, _ *decoder) error {
	v, err := n.Floats("x", "y")
	if err != nil {
		return err
	}
	f.origin = geom.Pt(v[0], v[1])
	return nil
}
