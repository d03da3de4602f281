// Package attr implements typed figure attributes. A Key[T] names a
// property and carries its default; a Store holds the values set on one
// figure and reports changes to its owner.
package attr

import (
	"fmt"
	"slices"
)

// Codec converts attribute values to and from their text form.
type Codec[T any] struct {
	Kind   string
	Format func(T) string
	Parse  func(string) (T, error)
	Copy   func(T) T // optional, for values with shared backing storage
}

// Key is a typed attribute identifier with a default value.
type Key[T any] struct {
	name  string
	def   T
	codec Codec[T]
	equal func(a, b T) bool
}

// NewKey creates a key for a comparable value type. Setting a value equal
// to the current one does not notify.
func NewKey[T comparable](name string, def T, codec Codec[T]) *Key[T] {
	return &Key[T]{
		name:  name,
		def:   def,
		codec: codec,
		equal: func(a, b T) bool { return a == b },
	}
}

// NewSliceKey creates a key holding a slice. Every Set notifies.
func NewSliceKey[E any](name string, def []E, codec Codec[[]E]) *Key[[]E] {
	if codec.Copy == nil {
		codec.Copy = func(v []E) []E { return slices.Clone(v) }
	}
	return &Key[[]E]{name: name, def: def, codec: codec}
}

// Name returns the serialized name of the key.
func (k *Key[T]) Name() string { return k.name }

// Kind returns the value type tag used in serialized entries.
func (k *Key[T]) Kind() string { return k.codec.Kind }

// Default returns the key's default value.
func (k *Key[T]) Default() T { return k.copy(k.def) }

// Get returns the value stored in s, or the default.
func (k *Key[T]) Get(s *Store) T {
	if s != nil {
		if v, ok := s.values[k.name]; ok {
			return k.copy(v.value.(T))
		}
	}
	return k.Default()
}

// IsSet reports whether s holds an explicit value for k. A nil store holds
// none.
func (k *Key[T]) IsSet(s *Store) bool {
	if s == nil {
		return false
	}
	_, ok := s.values[k.name]
	return ok
}

// Set stores v and notifies the store's owner.
func (k *Key[T]) Set(s *Store, v T) {
	old := k.Get(s)
	k.BasicSet(s, v)
	if k.equal != nil && k.equal(old, v) {
		return
	}
	s.notify(k, old, v)
}

// BasicSet stores v without notification.
func (k *Key[T]) BasicSet(s *Store, v T) {
	s.values[k.name] = entry{key: k, value: k.copy(v)}
}

// Unset removes an explicit value so that Get returns the default again.
// The owner is notified when the effective value changes.
func (k *Key[T]) Unset(s *Store) {
	if !k.IsSet(s) {
		return
	}
	old := k.Get(s)
	delete(s.values, k.name)
	if k.equal != nil && k.equal(old, k.def) {
		return
	}
	s.notify(k, old, k.Default())
}

// Format returns the text form of v.
func (k *Key[T]) Format(v any) (string, error) {
	t, ok := v.(T)
	if !ok {
		return "", &TypeError{Key: k.name, Want: k.codec.Kind, Got: fmt.Sprintf("%T", v)}
	}
	return k.codec.Format(t), nil
}

// Parse decodes a text form into a value of the key's type.
func (k *Key[T]) Parse(text string) (any, error) {
	v, err := k.codec.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("attr %s: %w", k.name, err)
	}
	return v, nil
}

// GetAny returns Get(s) as an untyped value.
func (k *Key[T]) GetAny(s *Store) any { return k.Get(s) }

// DefaultAny returns the default as an untyped value.
func (k *Key[T]) DefaultAny() any { return k.Default() }

// SetAny is Set for callers holding an untyped value.
func (k *Key[T]) SetAny(s *Store, v any) error {
	t, ok := v.(T)
	if !ok {
		return &TypeError{Key: k.name, Want: k.codec.Kind, Got: fmt.Sprintf("%T", v)}
	}
	k.Set(s, t)
	return nil
}

// BasicSetAny is BasicSet for callers holding an untyped value.
func (k *Key[T]) BasicSetAny(s *Store, v any) error {
	t, ok := v.(T)
	if !ok {
		return &TypeError{Key: k.name, Want: k.codec.Kind, Got: fmt.Sprintf("%T", v)}
	}
	k.BasicSet(s, t)
	return nil
}

// UnsetAny is Unset through the AnyKey interface.
func (k *Key[T]) UnsetAny(s *Store) { k.Unset(s) }

func (k *Key[T]) copy(v T) T {
	if k.codec.Copy != nil {
		return k.codec.Copy(v)
	}
	return v
}

// AnyKey is the type-erased view of a Key used by decoders, edits and
// registries.
type AnyKey interface {
	Name() string
	Kind() string
	DefaultAny() any
	GetAny(s *Store) any
	IsSet(s *Store) bool
	SetAny(s *Store, v any) error
	BasicSetAny(s *Store, v any) error
	UnsetAny(s *Store)
	Format(v any) (string, error)
	Parse(text string) (any, error)
}

var _ AnyKey = (*Key[float64])(nil)
