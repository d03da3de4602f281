package figure

import (
	"bytes"
	"math"
	"slices"

	"github.com/ha1tch/drawkit/pkg/chop"
	"github.com/ha1tch/drawkit/pkg/geom"
	"github.com/ha1tch/drawkit/pkg/node"
)

// Image shows encoded image data stretched over its bounds. The data is
// kept as loaded; decoding happens in the asset loader.
type Image struct {
	box
	data          []byte
	width, height int // pixel size of data
}

// NewImage creates an image figure without data.
func NewImage(r geom.Rect) *Image {
	f := &Image{}
	f.init(f)
	f.rect = r
	return f
}

func (f *Image) Kind() Kind { return KindImage }

// ImageData returns the encoded image bytes.
func (f *Image) ImageData() []byte { return f.data }

// ImageSize returns the pixel size of the image data.
func (f *Image) ImageSize() (w, h int) { return f.width, f.height }

// HasImage reports whether image data is set.
func (f *Image) HasImage() bool { return len(f.data) > 0 }

// SetImage replaces the image data and its pixel size.
func (f *Image) SetImage(data []byte, w, h int) {
	f.data = data
	f.width, f.height = w, h
	f.fire(Event{Kind: ContentChanged})
}

func (f *Image) Contains(p geom.Point) bool {
	return f.rect.Contains(p)
}

// Chop attaches connections to the image bounds.
func (f *Image) Chop(from geom.Point) geom.Point {
	return chop.Rectangle(f.rect, chop.StrokeOf(f.attrs), from)
}

func (f *Image) copyFigure(remap Remap) Figure {
	c := &Image{}
	c.initFrom(c, &f.base)
	c.rect = f.rect
	c.data = slices.Clone(f.data)
	c.width, c.height = f.width, f.height
	remap[f.id] = c
	return c
}

func (f *Image) encode(n *node.Node, _ *encoder) {
	f.encodeRect(n)
	if len(f.data) > 0 {
		n.Data = f.data
		n.SetFloat("imageWidth", float64(f.width))
		n.SetFloat("imageHeight", float64(f.height))
	}
}

func (f *Image) decode(n *node.Node, _ *decoder) error {
	if err := f.decodeRect(n); err != nil {
		return err
	}
	if len(n.Data) == 0 {
		return nil
	}
	fields := []string{"imageWidth", "imageHeight"}
	v, err := n.Floats(fields...)
	if err != nil {
		return err
	}
	for i, x := range v {
		if x < 0 || x > math.MaxInt32 || x != math.Trunc(x) {
			return n.Errorf(fields[i], "pixel size %v out of range", x)
		}
	}
	f.data = bytes.Clone(n.Data)
	f.width, f.height = int(v[0]), int(v[1])
	return nil
}
