package rediskit

import (
	"context"
	"time"

	"github.com/sisminnmaw/rediskit/codec"
)

// Typed wraps a Store with a Codec[V] for compile-time typed get/set. Writes
// store the codec's exact bytes; reads go through GetRaw, bypassing the
// dynamic shape heuristic, so binary codecs (msgpack, CBOR, protobuf) are
// safe. The fail-soft contract is unchanged: decode failure on read behaves
// like a miss.
type Typed[V any] struct {
	store Store
	codec codec.Codec[V]
}

// NewTyped binds c to s. Both are required.
func NewTyped[V any](s Store, c codec.Codec[V]) Typed[V] {
	return Typed[V]{store: s, codec: c}
}

// Set encodes v and stores it under key. ttl <= 0 means no expiry.
func (t Typed[V]) Set(ctx context.Context, key string, v V, ttl time.Duration) bool {
	b, err := t.codec.Encode(v)
	if err != nil {
		return false
	}
	return t.store.Set(ctx, key, b, ttl)
}

// Get decodes the payload stored under key. ok is false on miss, transport
// failure, or decode failure.
func (t Typed[V]) Get(ctx context.Context, key string) (V, bool) {
	var zero V
	raw, ok := t.store.GetRaw(ctx, key)
	if !ok {
		return zero, false
	}
	v, err := t.codec.Decode([]byte(raw))
	if err != nil {
		return zero, false
	}
	return v, true
}

// Delete removes key.
func (t Typed[V]) Delete(ctx context.Context, key string) bool {
	return t.store.Delete(ctx, key)
}
