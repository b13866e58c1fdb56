package inventory

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Sentinel is how an unknown text attribute is rendered and stored.
const Sentinel = "Unknown"

// State says whether a Field holds a value.
type State uint8

const (
	// StateUnknown means the value could not be determined. It is the zero state.
	StateUnknown State = iota
	// StateKnown means the value was read successfully, possibly as "".
	StateKnown
	// StateAbsent means the hardware does not have the attribute at all.
	StateAbsent
)

func (s State) String() string {
	switch s {
	case StateKnown:
		return "known"
	case StateAbsent:
		return "absent"
	default:
		return "unknown"
	}
}

// Field is an optional attribute value. The zero Field is Unknown.
type Field[T any] struct {
	value T
	state State
}

// Known wraps a successfully read value.
func Known[T any](v T) Field[T] {
	return Field[T]{value: v, state: StateKnown}
}

// Unknown is a value that could not be determined.
func Unknown[T any]() Field[T] {
	return Field[T]{}
}

// Absent is a value the hardware does not have.
func Absent[T any]() Field[T] {
	return Field[T]{state: StateAbsent}
}

// Get returns the value and whether it is known.
func (f Field[T]) Get() (T, bool) {
	return f.value, f.state == StateKnown
}

// Or returns the value when known and def otherwise.
func (f Field[T]) Or(def T) T {
	if f.state == StateKnown {
		return f.value
	}
	return def
}

// IsKnown reports whether the value was read.
func (f Field[T]) IsKnown() bool { return f.state == StateKnown }

// State returns the field state.
func (f Field[T]) State() State { return f.state }

// String renders known values with %v, unknown as the sentinel, absent as "".
func (f Field[T]) String() string {
	switch f.state {
	case StateKnown:
		return fmt.Sprint(f.value)
	case StateAbsent:
		return ""
	default:
		return Sentinel
	}
}

// orNil is the stored or serialized form: the value, the sentinel for unknown
// text, or nil.
func (f Field[T]) orNil() any {
	switch f.state {
	case StateKnown:
		return f.value
	case StateUnknown:
		if _, ok := any(f.value).(string); ok {
			return Sentinel
		}
	}
	return nil
}

// Value implements driver.Valuer.
func (f Field[T]) Value() (driver.Value, error) {
	v := f.orNil()
	if v == nil {
		return nil, nil
	}
	return driver.DefaultParameterConverter.ConvertValue(v)
}

// MarshalJSON implements json.Marshaler.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.orNil())
}

// MarshalYAML implements yaml.Marshaler.
func (f Field[T]) MarshalYAML() (any, error) {
	return f.orNil(), nil
}

// Text returns Known(s), or Unknown when s is empty.
func Text(s string) Field[string] {
	if s == "" {
		return Unknown[string]()
	}
	return Known(s)
}

// NonEmpty turns a known empty string into Unknown.
func NonEmpty(f Field[string]) Field[string] {
	if v, ok := f.Get(); ok && v == "" {
		return Unknown[string]()
	}
	return f
}

// Positive returns Known(n) for n > 0 and Unknown otherwise.
func Positive(n int64) Field[int64] {
	if n <= 0 {
		return Unknown[int64]()
	}
	return Known(n)
}

// FirstKnown returns the first known field, or the last one when none is known.
func FirstKnown[T any](fields ...Field[T]) Field[T] {
	var last Field[T]
	for _, f := range fields {
		if f.IsKnown() {
			return f
		}
		last = f
	}
	return last
}
