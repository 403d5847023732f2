// Package rediskit is a thin access layer over Redis for both single-node and
// cluster deployments. It exposes one operation surface (keys, hashes, lists,
// sets, pub/sub) with transparent structured-value encoding: mappings and
// sequences are stored as canonical JSON text, scalars pass through unchanged,
// and reads speculatively decode payloads that look structured.
//
// The layer is deliberately fail-soft. Transport and codec failures are logged
// and converted to a safe default (nil/false/0/empty collection) instead of
// propagating, so callers cannot distinguish "key absent" from "store
// unreachable" on the soft surface. Callers that need real errors can reach
// the underlying go-redis client via Conn, or observe swallowed errors through
// Hooks.
//
// Components:
//   - Client: single-node store client with a lazily established connection.
//   - ClusterClient: same surface across a sharded deployment, plus
//     conditional writes (NX/XX), multi-key delete/exists, and topology
//     introspection (key slots, slot ranges, node ownership).
//   - codec: dynamic value encoding plus typed Codec[V] implementations
//     (JSON, msgpack, CBOR, protobuf) for the Typed[V] accessor.
//
// Topology queries are a fresh round trip on every call; nothing is cached in
// this layer. Callers needing a stable view must hold the result themselves.
package rediskit
