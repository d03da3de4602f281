// Package textlayout measures single-line text using the embedded Go fonts.
// Figures use the metrics to derive their bounds; no glyphs are rasterised.
package textlayout

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// Style selects the face and decorations used for measuring.
type Style struct {
	Family    string // "Go" or "Go Mono"; anything else falls back to "Go"
	Size      float64
	Bold      bool
	Italic    bool
	Underline bool
	Dashed    bool // outline drawn dashed; reserves room below the baseline
}

// Metrics describes the extent of a laid-out line of text.
type Metrics struct {
	Advance float64
	Ascent  float64
	Descent float64
}

// Height returns Ascent+Descent.
func (m Metrics) Height() float64 {
	return m.Ascent + m.Descent
}

// Families lists the font families Measure understands.
var Families = []string{"Go", "Go Mono"}

type faceKey struct {
	mono, bold, italic bool
	size               float64
}

type cachedFace struct {
	face font.Face
	font *sfnt.Font
}

// maxFaces bounds the number of sized faces kept. The oldest face is
// dropped first.
const maxFaces = 64

var (
	mu        sync.Mutex
	fonts     = map[faceKey]*sfnt.Font{}
	faces     = map[faceKey]cachedFace{}
	faceOrder []faceKey
)

// quantize rounds a point size to the 26.6 fixed-point grid the face
// works in.
func quantize(size float64) float64 {
	return math.Round(size*64) / 64
}

func fontData(mono, bold, italic bool) []byte {
	switch {
	case mono && bold && italic:
		return gomonobolditalic.TTF
	case mono && bold:
		return gomonobold.TTF
	case mono && italic:
		return gomonoitalic.TTF
	case mono:
		return gomono.TTF
	case bold && italic:
		return gobolditalic.TTF
	case bold:
		return gobold.TTF
	case italic:
		return goitalic.TTF
	}
	return goregular.TTF
}

func lookup(s Style) (cachedFace, error) {
	key := faceKey{
		mono:   strings.EqualFold(s.Family, "Go Mono"),
		bold:   s.Bold,
		italic: s.Italic,
		size:   quantize(s.Size),
	}

	mu.Lock()
	defer mu.Unlock()

	if cf, ok := faces[key]; ok {
		return cf, nil
	}

	fkey := faceKey{mono: key.mono, bold: key.bold, italic: key.italic}
	fnt, ok := fonts[fkey]
	if !ok {
		var err error
		fnt, err = opentype.Parse(fontData(key.mono, key.bold, key.italic))
		if err != nil {
			return cachedFace{}, fmt.Errorf("textlayout: parse font: %w", err)
		}
		fonts[fkey] = fnt
	}

	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    key.size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return cachedFace{}, fmt.Errorf("textlayout: new face: %w", err)
	}
	cf := cachedFace{face: face, font: fnt}
	if len(faceOrder) >= maxFaces {
		delete(faces, faceOrder[0])
		faceOrder = faceOrder[1:]
	}
	faces[key] = cf
	faceOrder = append(faceOrder, key)
	return cf, nil
}

// Measure lays out text in style s. Empty text is measured as a single
// space so that empty text figures keep a usable height.
func Measure(text string, s Style) (Metrics, error) {
	if !(quantize(s.Size) > 0) || math.IsInf(s.Size, 0) {
		return Metrics{}, fmt.Errorf("textlayout: invalid size %v", s.Size)
	}
	cf, err := lookup(s)
	if err != nil {
		return Metrics{}, err
	}
	if text == "" {
		text = " "
	}

	// font.Face is not safe for concurrent use.
	mu.Lock()
	adv := font.MeasureString(cf.face, text)
	fm := cf.face.Metrics()
	mu.Unlock()

	m := Metrics{
		Advance: fixedToFloat(adv),
		Ascent:  fixedToFloat(fm.Ascent),
		Descent: fixedToFloat(fm.Descent),
	}

	if s.Underline || s.Dashed {
		pos, thick := underline(cf.font, s.Size)
		if below := pos + thick; below > m.Descent {
			m.Descent = below
		}
	}
	return m, nil
}

// underline returns the distance of the underline below the baseline and
// its thickness, in points.
func underline(f *sfnt.Font, size float64) (pos, thick float64) {
	upem := float64(f.UnitsPerEm())
	post := f.PostTable()
	if post == nil || upem == 0 {
		return size / 10, size / 20
	}
	return -float64(post.UnderlinePosition) * size / upem,
		float64(post.UnderlineThickness) * size / upem
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
