package dto

import "encoding/json"

// Field is a tri-state JSON field for partial updates. A key absent from the
// payload leaves the stored value unchanged; an explicit null clears it; a
// value sets it. The distinction between absent and null must survive every
// transformation layer.
type Field[T any] struct {
	Set   bool
	Valid bool
	Value T
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if string(data) == "null" {
		f.Valid = false
		return nil
	}
	if err := json.Unmarshal(data, &f.Value); err != nil {
		return err
	}
	f.Valid = true
	return nil
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Set || !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Ptr returns the value as a pointer: nil when the field was absent or null.
func (f Field[T]) Ptr() *T {
	if !f.Set || !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}

// Apply merges the field into a stored pointer value: absent keeps, null
// clears, value replaces.
func (f Field[T]) Apply(stored **T) {
	if !f.Set {
		return
	}
	if !f.Valid {
		*stored = nil
		return
	}
	v := f.Value
	*stored = &v
}

// Some builds a set, non-null field. Used by the seeder and by tests.
func Some[T any](v T) Field[T] {
	return Field[T]{Set: true, Valid: true, Value: v}
}

// Null builds a set, explicitly-null field.
func Null[T any]() Field[T] {
	return Field[T]{Set: true}
}
