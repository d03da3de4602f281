package figure

import (
	"github.com/ha1tch/drawkit/pkg/attr"
	"github.com/ha1tch/drawkit/pkg/config"
	"github.com/ha1tch/drawkit/pkg/geom"
)

// Factory creates figures carrying the configured default attributes.
type Factory struct {
	cfg config.Config
}

// NewFactory creates a factory for cfg.
func NewFactory(cfg config.Config) *Factory {
	return &Factory{cfg: cfg}
}

// Config returns the factory's configuration.
func (fa *Factory) Config() config.Config { return fa.cfg }

// Only values that differ from the key defaults are stored, so that
// figures stay minimal when serialized.
func setIfDifferent[T comparable](s *attr.Store, k *attr.Key[T], v T) {
	if v != k.Default() {
		k.BasicSet(s, v)
	}
}

func (fa *Factory) applyStroke(f Figure) {
	s := f.Attributes()
	setIfDifferent(s, attr.StrokeWidth, fa.cfg.StrokeWidth)
	setIfDifferent(s, attr.StrokePlacement, fa.cfg.Placement())
}

func (fa *Factory) applyFont(f Figure) {
	s := f.Attributes()
	setIfDifferent(s, attr.FontFamily, fa.cfg.FontFamily)
	setIfDifferent(s, attr.FontSize, fa.cfg.FontSize)
}

func (fa *Factory) NewRectangle(r geom.Rect) *Rectangle {
	f := NewRectangle(r)
	fa.applyStroke(f)
	return f
}

func (fa *Factory) NewDiamond(r geom.Rect, quadratic bool) *Diamond {
	f := NewDiamond(r)
	fa.applyStroke(f)
	if quadratic {
		attr.Quadratic.BasicSet(f.attrs, true)
	}
	return f
}

func (fa *Factory) NewEllipse(r geom.Rect) *Ellipse {
	f := NewEllipse(r)
	fa.applyStroke(f)
	return f
}

// NewText creates a text figure. Empty text is replaced by the configured
// default text.
func (fa *Factory) NewText(origin geom.Point, text string) *TextFigure {
	if text == "" {
		text = fa.cfg.DefaultText
	}
	f := NewText(origin, text)
	fa.applyFont(f)
	return f
}

func (fa *Factory) NewLabel(origin geom.Point, text string) *Label {
	if text == "" {
		text = "Label"
	}
	f := NewLabel(origin, text)
	fa.applyFont(f)
	return f
}

func (fa *Factory) NewImage(r geom.Rect) *Image {
	f := NewImage(r)
	fa.applyStroke(f)
	return f
}

func (fa *Factory) NewGroup(children ...Figure) *Group {
	return NewGroup(children...)
}

func (fa *Factory) NewLine(start, end geom.Point) *Line {
	f := NewLine(start, end)
	fa.applyStroke(f)
	return f
}
