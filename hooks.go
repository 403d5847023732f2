package rediskit

// Hooks are lightweight callbacks for high-signal events. Implementations
// MUST be cheap and non-blocking; the clients call them on hot paths.
//
// The operation surface swallows transport errors into safe defaults, which
// makes outages invisible to callers. OpDegraded is the escape hatch: it fires
// once per swallowed error with the operation name, the key (or channel/name)
// involved, and the underlying error.
type Hooks interface {
	// OpDegraded reports that op returned its safe default because of err.
	// op ∈ {"set", "get", "delete", "exists", "set_hash", "get_hash",
	// "get_hash_field", "delete_hash_fields", "push_list", "get_list",
	// "add_to_set", "set_members", "publish", "subscribe", "key_slot",
	// "cluster_nodes", "cluster_slots"}
	OpDegraded(op, key string, err error)

	// Connected reports a lazily established connection. addr is the
	// single-node address or the comma-joined cluster seed list.
	Connected(addr string)
}

// NopHooks is the default no-op.
type NopHooks struct{}

func (NopHooks) OpDegraded(string, string, error) {}
func (NopHooks) Connected(string)                 {}
