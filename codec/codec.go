// Package codec converts application values to and from the store's wire
// representation.
//
// Two layers live here. The package-level Encode/Decode/DecodeEach functions
// implement the dynamic contract used by the fail-soft clients: structured
// values travel as canonical JSON text, scalars pass through, and reads fall
// back to raw text on any parse failure. The Codec[V] interface and its
// implementations (JSON, Msgpack, CBOR, Protobuf, ...) serve the typed
// accessor layer, where the caller owns the value type and wants a real
// round-trip guarantee instead of the shape heuristic.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
