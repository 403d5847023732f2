package codec

import (
	"encoding/json"
	"reflect"
)

// Encode converts an application value to its wire form. Mappings, sequences
// and structs become their canonical JSON text; scalars (strings, []byte,
// booleans, numbers) pass through unchanged for the transport to encode.
// nil encodes as the empty string.
func Encode(v any) (any, error) {
	switch v.(type) {
	case nil:
		return "", nil
	case string, []byte, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return v, nil
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	case reflect.Ptr:
		rv := reflect.ValueOf(v)
		if rv.IsNil() {
			return "", nil
		}
		return Encode(rv.Elem().Interface())
	}
	return v, nil
}

// Decode converts a wire payload back to an application value. A payload
// beginning with '{' or '[' is speculatively parsed as JSON; on parse failure,
// or for any other payload, the raw text is returned verbatim.
//
// The prefix check is a shape heuristic, not a type tag: a raw string that
// legitimately starts with one of those characters and happens to be valid
// JSON is decoded as structured. Known ambiguity, kept for wire compatibility
// with payloads written by other readers of the same keys.
func Decode(payload string) any {
	if !looksStructured(payload) {
		return payload
	}
	var v any
	if err := json.Unmarshal([]byte(payload), &v); err != nil {
		return payload
	}
	return v
}

// DecodeEach applies Decode elementwise, preserving order. Used for list
// ranges and set members read back from the store.
func DecodeEach(payloads []string) []any {
	out := make([]any, len(payloads))
	for i, p := range payloads {
		out[i] = Decode(p)
	}
	return out
}

func looksStructured(s string) bool {
	return len(s) > 0 && (s[0] == '{' || s[0] == '[')
}
