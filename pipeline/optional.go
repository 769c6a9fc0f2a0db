package pipeline

import "fmt"

// Optional carries either a value or the explicit "no value" marker.
// The zero Optional is None.
type Optional[T any] struct {
	value T
	ok    bool
}

// Some wraps v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, ok: true}
}

// None returns the "no value" marker.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the wrapped value and whether one is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.ok
}

// IsNone reports whether o carries no value.
func (o Optional[T]) IsNone() bool {
	return !o.ok
}

// OrElse returns the wrapped value, or def when o is None.
func (o Optional[T]) OrElse(def T) T {
	if !o.ok {
		return def
	}
	return o.value
}

func (o Optional[T]) String() string {
	if !o.ok {
		return "None"
	}
	return fmt.Sprintf("Some(%v)", o.value)
}
