package coerce

import "encoding/json"

// Marshaler is the codec contract for serialized fields. A field may be
// declared with a custom Marshaler, which takes precedence over the
// built-in JSON codec for that field.
type Marshaler interface {
	// Dump encodes a domain value as the string stored on the wire.
	Dump(v any) (string, error)

	// Load decodes a wire string back into the domain value.
	Load(s string) (any, error)
}

// JSON is the built-in codec for serialized fields.
//
// Numbers round-trip as float64 and objects as map[string]any, per the
// usual encoding/json conventions for untyped decoding.
type JSON struct{}

func (JSON) Dump(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (JSON) Load(s string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	return v, nil
}
