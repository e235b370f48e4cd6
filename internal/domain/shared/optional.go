package shared

import "encoding/json"

// Optional is a patch field that tells an omitted JSON key apart from an
// explicit null. The zero value means omitted.
type Optional[T any] struct {
	Set   bool // key was present
	Null  bool // key was present with a null value
	Value T
}

// Some returns an Optional holding v
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// Null returns an Optional that clears the field
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

// FromPtr maps nil to omitted and anything else to Some
func FromPtr[T any](p *T) Optional[T] {
	if p == nil {
		return Optional[T]{}
	}
	return Some(*p)
}

// UnmarshalJSON implements json.Unmarshaler. It is only invoked for keys present in the payload.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Null = true
		var zero T
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

// MarshalJSON implements json.Marshaler
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Ptr returns nil when omitted or null
func (o Optional[T]) Ptr() *T {
	if !o.Set || o.Null {
		return nil
	}
	v := o.Value
	return &v
}
