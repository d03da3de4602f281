package attr

import (
	"fmt"
	"sort"
)

// Standard attribute keys. The names are the serialized names.
var (
	FillColor       = NewKey("fillColor", RGB(0xff, 0xff, 0xff), ColorCodec)
	StrokeColor     = NewKey("strokeColor", RGB(0, 0, 0), ColorCodec)
	StrokeWidth     = NewKey("strokeWidth", 1.0, FloatCodec)
	StrokePlacement = NewKey("strokePlacement", Center, PlacementCodec)
	StrokeDashes    = NewSliceKey[float64]("strokeDashes", nil, DashesCodec)
	TextColor       = NewKey("textColor", RGB(0, 0, 0), ColorCodec)
	Text            = NewKey("text", "", StringCodec)
	FontFamily      = NewKey("fontFamily", "Go", StringCodec)
	FontSize        = NewKey("fontSize", 12.0, FloatCodec)
	FontBold        = NewKey("fontBold", false, BoolCodec)
	FontItalic      = NewKey("fontItalic", false, BoolCodec)
	FontUnderline   = NewKey("fontUnderline", false, BoolCodec)
	Quadratic       = NewKey("isQuadratic", false, BoolCodec)

	// Radius of the tip drawn at each end of a line, 0 for none.
	StartDecoration = NewKey("startDecorationRadius", 0.0, FloatCodec)
	EndDecoration   = NewKey("endDecorationRadius", 0.0, FloatCodec)
)

// Standard resolves the standard keys by name.
var Standard = MustRegistry(
	FillColor, StrokeColor, StrokeWidth, StrokePlacement, StrokeDashes,
	TextColor, Text, FontFamily, FontSize, FontBold, FontItalic,
	FontUnderline, Quadratic, StartDecoration, EndDecoration,
)

// Registry maps serialized names to keys.
type Registry struct {
	keys map[string]AnyKey
}

// NewRegistry creates a registry holding keys. Duplicate names are an error.
func NewRegistry(keys ...AnyKey) (*Registry, error) {
	r := &Registry{keys: make(map[string]AnyKey, len(keys))}
	for _, k := range keys {
		if err := r.Register(k); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// MustRegistry is NewRegistry for package-level tables.
func MustRegistry(keys ...AnyKey) *Registry {
	r, err := NewRegistry(keys...)
	if err != nil {
		panic(err)
	}
	return r
}

// Register adds k.
func (r *Registry) Register(k AnyKey) error {
	if _, dup := r.keys[k.Name()]; dup {
		return fmt.Errorf("attr: duplicate key %q", k.Name())
	}
	r.keys[k.Name()] = k
	return nil
}

// Lookup returns the key registered under name.
func (r *Registry) Lookup(name string) (AnyKey, error) {
	k, ok := r.keys[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownKey, name)
	}
	return k, nil
}

// Keys returns all keys sorted by name.
func (r *Registry) Keys() []AnyKey {
	out := make([]AnyKey, 0, len(r.keys))
	for _, k := range r.keys {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Decode parses text as a value for the key called name.
func (r *Registry) Decode(name, kind, text string) (AnyKey, any, error) {
	k, err := r.Lookup(name)
	if err != nil {
		return nil, nil, err
	}
	if kind != "" && kind != k.Kind() {
		return nil, nil, &TypeError{Key: name, Want: k.Kind(), Got: kind}
	}
	v, err := k.Parse(text)
	if err != nil {
		return nil, nil, err
	}
	return k, v, nil
}
