package rediskit

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sisminnmaw/rediskit/codec"
)

// slotCount is the size of the cluster hash-slot space.
const slotCount = 16384

// ClusterClient extends the single-node operation surface across a sharded
// deployment: conditional writes, multi-key delete/exists, and topology
// introspection. Unlike the single-node client, first contact is verified
// with a PING (and, optionally, a slot-coverage check), because without a
// reachable cluster there is no topology to resolve against; the verification
// error is visible through Conn while the soft surface still degrades to
// defaults.
type ClusterClient struct {
	addrs         []string
	password      string
	useTLS        bool
	checkCoverage bool

	log   Logger
	hooks Hooks

	mu       sync.Mutex
	rdb      redis.UniversalClient
	owns     bool
	injected bool
	verified bool
}

var _ Store = (*ClusterClient)(nil)

// NewClusterClient builds a cluster client from opts. With no explicit seeds
// the REDIS_CLUSTER_HOST/PORT pair is used, defaulting to localhost:6379.
func NewClusterClient(opts ClusterOptions) *ClusterClient {
	addrs := opts.Addrs
	if len(addrs) == 0 {
		addrs = []string{net.JoinHostPort(
			envString(envClusterHost, defaultHost),
			strconv.Itoa(envInt(envClusterPort, defaultPort)),
		)}
	}
	c := &ClusterClient{
		addrs:         addrs,
		password:      coalesce(opts.Password, envString(envClusterPassword, "")),
		useTLS:        opts.TLS || envBool(envClusterTLS, false),
		checkCoverage: opts.CheckSlotCoverage || envBool(envClusterCoverage, false),
		log:           coalesce[Logger](opts.Logger, NopLogger{}),
		hooks:         coalesce[Hooks](opts.Hooks, NopHooks{}),
	}
	if opts.Client != nil {
		c.rdb = opts.Client
		c.owns = opts.CloseClient
		c.injected = true
	}
	return c
}

// Conn returns the underlying cluster client, establishing and verifying it
// first if needed. Verification failure is fatal for the caller: without a
// connection there is no topology, so the error propagates instead of
// degrading.
func (c *ClusterClient) Conn(ctx context.Context) (redis.UniversalClient, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rdb == nil {
		copt := &redis.ClusterOptions{
			Addrs:    c.addrs,
			Password: c.password,
		}
		if c.useTLS {
			copt.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		c.rdb = redis.NewClusterClient(copt)
		c.owns = true
	}
	if !c.verified {
		if err := c.verifyLocked(ctx); err != nil {
			return nil, err
		}
		c.verified = true
		c.hooks.Connected(strings.Join(c.addrs, ","))
	}
	return c.rdb, nil
}

func (c *ClusterClient) verifyLocked(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		c.releaseLocked()
		return err
	}
	if !c.checkCoverage {
		return nil
	}
	slots, err := c.rdb.ClusterSlots(ctx).Result()
	if err != nil {
		c.releaseLocked()
		return err
	}
	covered := make([]bool, slotCount)
	for _, s := range slots {
		for i := s.Start; i <= s.End && i < slotCount; i++ {
			covered[i] = true
		}
	}
	missing := 0
	for _, ok := range covered {
		if !ok {
			missing++
		}
	}
	if missing > 0 {
		c.releaseLocked()
		return &CoverageError{Missing: missing}
	}
	return nil
}

// releaseLocked drops a handle that failed verification so the next call
// retries from scratch. Injected clients are kept (and only closed per the
// ownership flag at Close time).
func (c *ClusterClient) releaseLocked() {
	if c.injected {
		return
	}
	_ = c.rdb.Close()
	c.rdb = nil
	c.owns = false
}

// Close releases the owned connection and clears the handle. Idempotent.
func (c *ClusterClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rdb == nil {
		return nil
	}
	rdb := c.rdb
	c.rdb = nil
	c.verified = false
	if !c.owns {
		return nil
	}
	if err := rdb.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
		return err
	}
	return nil
}

func (c *ClusterClient) fail(op, key string, err error) {
	c.log.Error("operation degraded to safe default", Fields{"op": op, "key": key, "err": err})
	c.hooks.OpDegraded(op, key, err)
}

// Set stores value under key with an optional expiry, unconditionally.
func (c *ClusterClient) Set(ctx context.Context, key string, value any, ttl time.Duration) bool {
	return c.SetWith(ctx, key, value, SetOptions{TTL: ttl})
}

// SetWith stores value under key honoring SetOptions. Conditional variants
// map to the store's NX/XX primitives; the expiry travels with the write, so
// it only takes effect when the write itself succeeds. Asking for both
// conditions is a usage error and writes nothing.
func (c *ClusterClient) SetWith(ctx context.Context, key string, value any, opts SetOptions) bool {
	if opts.IfAbsent && opts.IfPresent {
		c.fail("set", key, ErrConflictingSetFlags)
		return false
	}
	wire, err := codec.Encode(value)
	if err != nil {
		c.fail("set", key, err)
		return false
	}
	ttl := opts.TTL
	if ttl < 0 {
		ttl = 0
	}
	rdb, err := c.Conn(ctx)
	if err != nil {
		c.fail("set", key, err)
		return false
	}

	switch {
	case opts.IfAbsent:
		ok, err := rdb.SetNX(ctx, key, wire, ttl).Result()
		if err != nil {
			c.fail("set", key, err)
			return false
		}
		return ok
	case opts.IfPresent:
		ok, err := rdb.SetXX(ctx, key, wire, ttl).Result()
		if err != nil {
			c.fail("set", key, err)
			return false
		}
		return ok
	default:
		if err := rdb.Set(ctx, key, wire, ttl).Err(); err != nil {
			c.fail("set", key, err)
			return false
		}
		return true
	}
}

// Get returns the decoded value for key, or nil when absent or unreachable.
func (c *ClusterClient) Get(ctx context.Context, key string) any {
	raw, ok := c.GetRaw(ctx, key)
	if !ok {
		return nil
	}
	return codec.Decode(raw)
}

// GetRaw returns the stored payload verbatim, bypassing the decode heuristic.
func (c *ClusterClient) GetRaw(ctx context.Context, key string) (string, bool) {
	rdb, err := c.Conn(ctx)
	if err != nil {
		c.fail("get", key, err)
		return "", false
	}
	raw, err := rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		c.fail("get", key, err)
		return "", false
	}
	return raw, true
}

// Delete removes key, reporting whether a key was actually removed.
func (c *ClusterClient) Delete(ctx context.Context, key string) bool {
	return c.DeleteKeys(ctx, key) > 0
}

// DeleteKeys removes a batch of keys in one round trip, returning the
// aggregate count the store reports. In a sharded deployment the multi-key
// call may behave atomically per shard; this client surfaces whatever count
// comes back and does not compensate.
func (c *ClusterClient) DeleteKeys(ctx context.Context, keys ...string) int64 {
	if len(keys) == 0 {
		return 0
	}
	rdb, err := c.Conn(ctx)
	if err != nil {
		c.fail("delete", strings.Join(keys, ","), err)
		return 0
	}
	n, err := rdb.Del(ctx, keys...).Result()
	if err != nil {
		c.fail("delete", strings.Join(keys, ","), err)
		return 0
	}
	return n
}

// Exists reports whether key exists.
func (c *ClusterClient) Exists(ctx context.Context, key string) bool {
	return c.ExistsCount(ctx, key) > 0
}

// ExistsCount returns how many of the given keys exist.
func (c *ClusterClient) ExistsCount(ctx context.Context, keys ...string) int64 {
	if len(keys) == 0 {
		return 0
	}
	rdb, err := c.Conn(ctx)
	if err != nil {
		c.fail("exists", strings.Join(keys, ","), err)
		return 0
	}
	n, err := rdb.Exists(ctx, keys...).Result()
	if err != nil {
		c.fail("exists", strings.Join(keys, ","), err)
		return 0
	}
	return n
}

// SetHash writes the field->value mapping into hash name.
func (c *ClusterClient) SetHash(ctx context.Context, name string, fields map[string]any) bool {
	if len(fields) == 0 {
		return false
	}
	rdb, err := c.Conn(ctx)
	if err != nil {
		c.fail("set_hash", name, err)
		return false
	}
	flat := make([]any, 0, len(fields)*2)
	for f, v := range fields {
		flat = append(flat, f, v)
	}
	if err := rdb.HSet(ctx, name, flat...).Err(); err != nil {
		c.fail("set_hash", name, err)
		return false
	}
	return true
}

// GetHash returns all field->value pairs of hash name.
func (c *ClusterClient) GetHash(ctx context.Context, name string) map[string]string {
	rdb, err := c.Conn(ctx)
	if err != nil {
		c.fail("get_hash", name, err)
		return map[string]string{}
	}
	m, err := rdb.HGetAll(ctx, name).Result()
	if err != nil {
		c.fail("get_hash", name, err)
		return map[string]string{}
	}
	return m
}

// GetHashField reads a single field from hash name. ok is false when the
// field is absent or the store is unreachable.
func (c *ClusterClient) GetHashField(ctx context.Context, name, field string) (string, bool) {
	rdb, err := c.Conn(ctx)
	if err != nil {
		c.fail("get_hash_field", name, err)
		return "", false
	}
	v, err := rdb.HGet(ctx, name, field).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		c.fail("get_hash_field", name, err)
		return "", false
	}
	return v, true
}

// DeleteHashFields removes fields from hash name, returning the removed count.
func (c *ClusterClient) DeleteHashFields(ctx context.Context, name string, fields ...string) int64 {
	if len(fields) == 0 {
		return 0
	}
	rdb, err := c.Conn(ctx)
	if err != nil {
		c.fail("delete_hash_fields", name, err)
		return 0
	}
	n, err := rdb.HDel(ctx, name, fields...).Result()
	if err != nil {
		c.fail("delete_hash_fields", name, err)
		return 0
	}
	return n
}

// PushList appends values to list name and returns its new length.
func (c *ClusterClient) PushList(ctx context.Context, name string, values ...any) int64 {
	if len(values) == 0 {
		return 0
	}
	wire, err := encodeAll(values)
	if err != nil {
		c.fail("push_list", name, err)
		return 0
	}
	rdb, err := c.Conn(ctx)
	if err != nil {
		c.fail("push_list", name, err)
		return 0
	}
	n, err := rdb.RPush(ctx, name, wire...).Result()
	if err != nil {
		c.fail("push_list", name, err)
		return 0
	}
	return n
}

// GetList returns the decoded elements of list name in [start, stop].
func (c *ClusterClient) GetList(ctx context.Context, name string, start, stop int64) []any {
	rdb, err := c.Conn(ctx)
	if err != nil {
		c.fail("get_list", name, err)
		return []any{}
	}
	vals, err := rdb.LRange(ctx, name, start, stop).Result()
	if err != nil {
		c.fail("get_list", name, err)
		return []any{}
	}
	return codec.DecodeEach(vals)
}

// AddToSet adds members to set name, returning the count of new members.
func (c *ClusterClient) AddToSet(ctx context.Context, name string, members ...any) int64 {
	if len(members) == 0 {
		return 0
	}
	wire, err := encodeAll(members)
	if err != nil {
		c.fail("add_to_set", name, err)
		return 0
	}
	rdb, err := c.Conn(ctx)
	if err != nil {
		c.fail("add_to_set", name, err)
		return 0
	}
	n, err := rdb.SAdd(ctx, name, wire...).Result()
	if err != nil {
		c.fail("add_to_set", name, err)
		return 0
	}
	return n
}

// SetMembers returns the decoded members of set name.
func (c *ClusterClient) SetMembers(ctx context.Context, name string) []any {
	rdb, err := c.Conn(ctx)
	if err != nil {
		c.fail("set_members", name, err)
		return []any{}
	}
	vals, err := rdb.SMembers(ctx, name).Result()
	if err != nil {
		c.fail("set_members", name, err)
		return []any{}
	}
	return codec.DecodeEach(vals)
}

// Publish sends message to channel, returning the subscriber count.
func (c *ClusterClient) Publish(ctx context.Context, channel string, message any) int64 {
	wire, err := codec.Encode(message)
	if err != nil {
		c.fail("publish", channel, err)
		return 0
	}
	rdb, err := c.Conn(ctx)
	if err != nil {
		c.fail("publish", channel, err)
		return 0
	}
	n, err := rdb.Publish(ctx, channel, wire).Result()
	if err != nil {
		c.fail("publish", channel, err)
		return 0
	}
	return n
}

// Subscribe returns a caller-owned subscription handle bound to channel, or
// nil on failure.
func (c *ClusterClient) Subscribe(ctx context.Context, channel string) *redis.PubSub {
	rdb, err := c.Conn(ctx)
	if err != nil {
		c.fail("subscribe", channel, err)
		return nil
	}
	pubsub := rdb.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		c.fail("subscribe", channel, err)
		_ = pubsub.Close()
		return nil
	}
	return pubsub
}

// ClusterNodes returns the full node list as reported by the store; empty on
// failure.
func (c *ClusterClient) ClusterNodes(ctx context.Context) []NodeInfo {
	rdb, err := c.Conn(ctx)
	if err != nil {
		c.fail("cluster_nodes", "", err)
		return nil
	}
	raw, err := rdb.ClusterNodes(ctx).Result()
	if err != nil {
		c.fail("cluster_nodes", "", err)
		return nil
	}
	return parseClusterNodes(raw)
}

// ClusterSlots returns the slot-range assignments; empty on failure. The
// result is a fresh round trip every call — nothing is cached here, callers
// needing stability hold the slice themselves.
func (c *ClusterClient) ClusterSlots(ctx context.Context) []SlotRange {
	rdb, err := c.Conn(ctx)
	if err != nil {
		c.fail("cluster_slots", "", err)
		return nil
	}
	slots, err := rdb.ClusterSlots(ctx).Result()
	if err != nil {
		c.fail("cluster_slots", "", err)
		return nil
	}
	return slotRangesFromRedis(slots)
}

// KeySlot computes the hash slot for key via the store's hashing function.
// Returns -1 on failure; real slots are non-negative.
func (c *ClusterClient) KeySlot(ctx context.Context, key string) int64 {
	rdb, err := c.Conn(ctx)
	if err != nil {
		c.fail("key_slot", key, err)
		return -1
	}
	slot, err := rdb.ClusterKeySlot(ctx, key).Result()
	if err != nil {
		c.fail("key_slot", key, err)
		return -1
	}
	return slot
}

// NodeForKey resolves the primary node owning key: compute the slot, fetch
// the slot table fresh, and linearly scan for the covering range. Returns the
// empty descriptor when the slot lookup fails or no range matches. O(ranges)
// per call; cluster tables are small and this is a diagnostic path, not a
// per-request one.
func (c *ClusterClient) NodeForKey(ctx context.Context, key string) NodeInfo {
	slot := c.KeySlot(ctx, key)
	if slot < 0 {
		return NodeInfo{}
	}
	for _, r := range c.ClusterSlots(ctx) {
		if slot >= r.Start && slot <= r.End {
			if len(r.Nodes) == 0 {
				return NodeInfo{}
			}
			return r.Nodes[0]
		}
	}
	return NodeInfo{}
}
