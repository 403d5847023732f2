package rediskit

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sisminnmaw/rediskit/codec"
)

// Client is the single-node store client. The connection handle is owned
// exclusively by the instance: it is dialed lazily on first use, reused for
// the instance's lifetime, and released by an idempotent Close. go-redis
// connections are goroutine-safe, so one Client may be shared by concurrent
// callers.
type Client struct {
	host     string
	port     int
	db       int
	password string
	useTLS   bool

	log   Logger
	hooks Hooks

	mu   sync.Mutex
	rdb  redis.UniversalClient
	owns bool
}

var _ Store = (*Client)(nil)

// NewClient builds a single-node client from opts. No connection is made
// here; the handle is established on first operation (or first Conn call),
// and dial errors surface per operation as degraded defaults.
func NewClient(opts Options) *Client {
	c := &Client{
		host:     coalesce(opts.Host, envString(envHost, defaultHost)),
		port:     coalesce(opts.Port, envInt(envPort, defaultPort)),
		db:       coalesce(opts.DB, envInt(envDB, 0)),
		password: coalesce(opts.Password, envString(envPassword, "")),
		useTLS:   opts.TLS || envBool(envTLS, false),
		log:      coalesce[Logger](opts.Logger, NopLogger{}),
		hooks:    coalesce[Hooks](opts.Hooks, NopHooks{}),
	}
	if opts.Client != nil {
		c.rdb = opts.Client
		c.owns = opts.CloseClient
	}
	return c
}

// Conn returns the underlying go-redis client, dialing it first if needed.
// This is the strict entry point: callers that cannot live with the fail-soft
// defaults issue commands here and see real errors.
func (c *Client) Conn() redis.UniversalClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connLocked()
}

func (c *Client) connLocked() redis.UniversalClient {
	if c.rdb == nil {
		addr := net.JoinHostPort(c.host, strconv.Itoa(c.port))
		opt := &redis.Options{
			Addr:     addr,
			DB:       c.db,
			Password: c.password,
		}
		if c.useTLS {
			opt.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		c.rdb = redis.NewClient(opt)
		c.owns = true
		c.hooks.Connected(addr)
	}
	return c.rdb
}

// Close releases the owned connection and clears the handle. Calling Close
// again is a no-op. Injected clients are only closed when the ownership flag
// was set at construction.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rdb == nil {
		return nil
	}
	rdb := c.rdb
	c.rdb = nil
	if !c.owns {
		return nil
	}
	if err := rdb.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
		return err
	}
	return nil
}

func (c *Client) fail(op, key string, err error) {
	c.log.Error("operation degraded to safe default", Fields{"op": op, "key": key, "err": err})
	c.hooks.OpDegraded(op, key, err)
}

// Set stores value under key. Structured values are encoded to JSON text by
// the codec; ttl <= 0 means no expiry. The expiry travels with the write in
// one round trip, so a key is never left behind without its TTL.
func (c *Client) Set(ctx context.Context, key string, value any, ttl time.Duration) bool {
	wire, err := codec.Encode(value)
	if err != nil {
		c.fail("set", key, err)
		return false
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := c.Conn().Set(ctx, key, wire, ttl).Err(); err != nil {
		c.fail("set", key, err)
		return false
	}
	return true
}

// Get returns the decoded value for key, or nil when the key is absent or
// the store is unreachable.
func (c *Client) Get(ctx context.Context, key string) any {
	raw, ok := c.GetRaw(ctx, key)
	if !ok {
		return nil
	}
	return codec.Decode(raw)
}

// GetRaw returns the stored payload verbatim, bypassing the decode heuristic.
func (c *Client) GetRaw(ctx context.Context, key string) (string, bool) {
	raw, err := c.Conn().Get(ctx, key).Result()
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
func (c *Client) Delete(ctx context.Context, key string) bool {
	n, err := c.Conn().Del(ctx, key).Result()
	if err != nil {
		c.fail("delete", key, err)
		return false
	}
	return n > 0
}

// Exists reports whether key exists.
func (c *Client) Exists(ctx context.Context, key string) bool {
	n, err := c.Conn().Exists(ctx, key).Result()
	if err != nil {
		c.fail("exists", key, err)
		return false
	}
	return n > 0
}

// SetHash writes the field->value mapping into hash name. Field values are
// passed through as-is; the store encodes scalars itself.
func (c *Client) SetHash(ctx context.Context, name string, fields map[string]any) bool {
	if len(fields) == 0 {
		return false
	}
	flat := make([]any, 0, len(fields)*2)
	for f, v := range fields {
		flat = append(flat, f, v)
	}
	if err := c.Conn().HSet(ctx, name, flat...).Err(); err != nil {
		c.fail("set_hash", name, err)
		return false
	}
	return true
}

// GetHash returns all field->value pairs of hash name; empty when the hash is
// absent or the store is unreachable.
func (c *Client) GetHash(ctx context.Context, name string) map[string]string {
	m, err := c.Conn().HGetAll(ctx, name).Result()
	if err != nil {
		c.fail("get_hash", name, err)
		return map[string]string{}
	}
	return m
}

// DeleteHashFields removes fields from hash name, returning the count of
// fields actually removed.
func (c *Client) DeleteHashFields(ctx context.Context, name string, fields ...string) int64 {
	if len(fields) == 0 {
		return 0
	}
	n, err := c.Conn().HDel(ctx, name, fields...).Result()
	if err != nil {
		c.fail("delete_hash_fields", name, err)
		return 0
	}
	return n
}

// PushList appends values to the tail of list name and returns the list's new
// length.
func (c *Client) PushList(ctx context.Context, name string, values ...any) int64 {
	if len(values) == 0 {
		return 0
	}
	wire, err := encodeAll(values)
	if err != nil {
		c.fail("push_list", name, err)
		return 0
	}
	n, err := c.Conn().RPush(ctx, name, wire...).Result()
	if err != nil {
		c.fail("push_list", name, err)
		return 0
	}
	return n
}

// GetList returns the decoded elements of list name in [start, stop]
// inclusive; negative indices count from the tail, store semantics.
func (c *Client) GetList(ctx context.Context, name string, start, stop int64) []any {
	vals, err := c.Conn().LRange(ctx, name, start, stop).Result()
	if err != nil {
		c.fail("get_list", name, err)
		return []any{}
	}
	return codec.DecodeEach(vals)
}

// AddToSet adds members to set name, returning the count of members that were
// not already present.
func (c *Client) AddToSet(ctx context.Context, name string, members ...any) int64 {
	if len(members) == 0 {
		return 0
	}
	wire, err := encodeAll(members)
	if err != nil {
		c.fail("add_to_set", name, err)
		return 0
	}
	n, err := c.Conn().SAdd(ctx, name, wire...).Result()
	if err != nil {
		c.fail("add_to_set", name, err)
		return 0
	}
	return n
}

// SetMembers returns the decoded members of set name in unspecified order.
func (c *Client) SetMembers(ctx context.Context, name string) []any {
	vals, err := c.Conn().SMembers(ctx, name).Result()
	if err != nil {
		c.fail("set_members", name, err)
		return []any{}
	}
	return codec.DecodeEach(vals)
}

// Publish sends message to channel, returning how many subscribers received
// it. A zero return is ambiguous between "no subscribers" and "publish
// failed"; hooks disambiguate.
func (c *Client) Publish(ctx context.Context, channel string, message any) int64 {
	wire, err := codec.Encode(message)
	if err != nil {
		c.fail("publish", channel, err)
		return 0
	}
	n, err := c.Conn().Publish(ctx, channel, wire).Result()
	if err != nil {
		c.fail("publish", channel, err)
		return 0
	}
	return n
}

// Subscribe returns a live subscription handle bound to channel, confirmed by
// the store, or nil on failure. The handle is caller-owned: reading messages,
// unsubscribing and closing it are the caller's responsibility.
func (c *Client) Subscribe(ctx context.Context, channel string) *redis.PubSub {
	pubsub := c.Conn().Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		c.fail("subscribe", channel, err)
		_ = pubsub.Close()
		return nil
	}
	return pubsub
}

func encodeAll(values []any) ([]any, error) {
	out := make([]any, len(values))
	for i, v := range values {
		w, err := codec.Encode(v)
		if err != nil {
			return nil, err
		}
		out[i] = w
	}
	return out, nil
}
