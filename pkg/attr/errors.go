package attr

import "errors"

// ErrUnknownKey is returned when a registry has no key with a given name.
var ErrUnknownKey = errors.New("attr: unknown attribute")

// TypeError is returned when an untyped value does not match a key's type.
type TypeError struct {
	Key  string
	Want string
	Got  string
}

func (e *TypeError) Error() string {
	return "attr: " + e.Key + ": want " + e.Want + ", got " + e.Got
}
