package attr

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// Color is a non-premultiplied RGBA color. A zero alpha means no paint.
type Color struct {
	R, G, B, A uint8
}

// None is the transparent color.
var None = Color{}

// RGB returns an opaque color.
func RGB(r, g, b uint8) Color {
	return Color{r, g, b, 0xff}
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{c.R, c.G, c.B, c.A}.RGBA()
}

// Visible reports whether painting with c has any effect.
func (c Color) Visible() bool {
	return c.A != 0
}

// String returns the #rrggbbaa form.
func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// ParseColor accepts #rrggbb, #rrggbbaa and "none".
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if s == "none" {
		return None, nil
	}
	if !strings.HasPrefix(s, "#") || (len(s) != 7 && len(s) != 9) {
		return None, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return None, fmt.Errorf("invalid color %q", s)
	}
	if len(s) == 7 {
		return Color{uint8(v >> 16), uint8(v >> 8), uint8(v), 0xff}, nil
	}
	return Color{uint8(v >> 24), uint8(v >> 16), uint8(v >> 8), uint8(v)}, nil
}

// Placement says where a stroke is drawn relative to the figure outline.
type Placement int

const (
	Center  Placement = iota // Stroke straddles the outline
	Inside                   // Stroke lies within the outline
	Outside                  // Stroke lies outside the outline
)

func (p Placement) String() string {
	switch p {
	case Inside:
		return "inside"
	case Outside:
		return "outside"
	}
	return "center"
}

// ParsePlacement parses the names produced by Placement.String.
func ParsePlacement(s string) (Placement, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "center":
		return Center, nil
	case "inside":
		return Inside, nil
	case "outside":
		return Outside, nil
	}
	return Center, fmt.Errorf("invalid stroke placement %q", s)
}

// Codecs for the value types used by the standard keys.
var (
	FloatCodec = Codec[float64]{
		Kind:   "float",
		Format: func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) },
		Parse:  parseFinite,
	}
	BoolCodec = Codec[bool]{
		Kind:   "bool",
		Format: strconv.FormatBool,
		Parse:  strconv.ParseBool,
	}
	StringCodec = Codec[string]{
		Kind:   "string",
		Format: func(v string) string { return v },
		Parse:  func(s string) (string, error) { return s, nil },
	}
	ColorCodec = Codec[Color]{
		Kind:   "color",
		Format: Color.String,
		Parse:  ParseColor,
	}
	PlacementCodec = Codec[Placement]{
		Kind:   "placement",
		Format: Placement.String,
		Parse:  ParsePlacement,
	}
	DashesCodec = Codec[[]float64]{
		Kind:   "dashes",
		Format: formatDashes,
		Parse:  parseDashes,
	}
)

func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return v, nil
}

func formatDashes(v []float64) string {
	parts := make([]string, len(v))
	for i, d := range v {
		parts[i] = strconv.FormatFloat(d, 'g', -1, 64)
	}
	return strings.Join(parts, " ")
}

func parseDashes(s string) ([]float64, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, nil
	}
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := parseFinite(f)
		if err != nil {
			return nil, err
		}
		if v < 0 {
			return nil, fmt.Errorf("negative dash length %q", f)
		}
		out[i] = v
	}
	return out, nil
}
