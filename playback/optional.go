package playback

import "fmt"

// Optional is a value that may be unset. Unset is distinct from the zero
// value: an unparsable text field publishes an unset Optional, "0" publishes
// a set zero.
type Optional[T any] struct {
	Value T
	Valid bool
}

// Some returns a set Optional holding v
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Valid: true}
}

// None returns an unset Optional
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it is set
func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Valid
}

// OrElse returns the value when set and fallback otherwise
func (o Optional[T]) OrElse(fallback T) T {
	if !o.Valid {
		return fallback
	}
	return o.Value
}

// String returns the value formatted with %v, or "" when unset
func (o Optional[T]) String() string {
	if !o.Valid {
		return ""
	}
	return fmt.Sprint(o.Value)
}
