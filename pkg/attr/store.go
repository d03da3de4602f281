package attr

import "sort"

type entry struct {
	key   AnyKey
	value any
}

// ChangeFunc receives attribute changes made through Key.Set.
type ChangeFunc func(key AnyKey, old, new any)

// Store holds the explicit attribute values of one figure.
type Store struct {
	values   map[string]entry
	onChange ChangeFunc
}

// NewStore creates an empty store reporting changes to fn (may be nil).
func NewStore(fn ChangeFunc) *Store {
	return &Store{values: make(map[string]entry), onChange: fn}
}

// SetChangeFunc replaces the change hook.
func (s *Store) SetChangeFunc(fn ChangeFunc) {
	s.onChange = fn
}

func (s *Store) notify(k AnyKey, old, new any) {
	if s.onChange != nil {
		s.onChange(k, old, new)
	}
}

// Len returns the number of explicit values.
func (s *Store) Len() int { return len(s.values) }

// Lookup returns the explicit value stored under name.
func (s *Store) Lookup(name string) (any, bool) {
	e, ok := s.values[name]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// Entry is an explicit value paired with its key.
type Entry struct {
	Key   AnyKey
	Value any
}

// Entries returns the explicit values sorted by key name.
func (s *Store) Entries() []Entry {
	out := make([]Entry, 0, len(s.values))
	for _, e := range s.values {
		out = append(out, Entry{Key: e.key, Value: e.value})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key.Name() < out[j].Key.Name()
	})
	return out
}

// Clone returns a copy of the values with no change hook.
func (s *Store) Clone() *Store {
	c := NewStore(nil)
	for _, e := range s.values {
		_ = e.key.BasicSetAny(c, e.value)
	}
	return c
}
