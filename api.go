package rediskit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the fail-soft operation surface shared by Client and ClusterClient.
// Every read/write converts transport and codec failures into its documented
// safe default instead of returning an error; failures are logged and reported
// through Hooks.OpDegraded.
type Store interface {
	// Set stores value under key, structured values encoded as JSON text.
	// ttl <= 0 means no expiry. Returns false on failure.
	Set(ctx context.Context, key string, value any, ttl time.Duration) bool

	// Get returns the decoded value, or nil when the key is absent or the
	// store is unreachable. Payloads beginning with '{' or '[' are
	// speculatively decoded as structured values.
	Get(ctx context.Context, key string) any

	// GetRaw returns the stored payload verbatim, bypassing the decode
	// heuristic. ok is false on miss or failure.
	GetRaw(ctx context.Context, key string) (raw string, ok bool)

	// Delete removes key; true iff a key was removed.
	Delete(ctx context.Context, key string) bool

	// Exists reports whether key exists.
	Exists(ctx context.Context, key string) bool

	// SetHash writes the field->value mapping into hash name.
	SetHash(ctx context.Context, name string, fields map[string]any) bool

	// GetHash returns all field->value pairs of hash name (empty if absent).
	GetHash(ctx context.Context, name string) map[string]string

	// DeleteHashFields removes fields from hash name, returning the count of
	// fields actually removed.
	DeleteHashFields(ctx context.Context, name string, fields ...string) int64

	// PushList appends values to list name and returns its new length.
	PushList(ctx context.Context, name string, values ...any) int64

	// GetList returns the decoded elements of list name in [start, stop],
	// inclusive; negative indices count from the tail (store semantics).
	GetList(ctx context.Context, name string, start, stop int64) []any

	// AddToSet adds members to set name, returning the count of new members.
	AddToSet(ctx context.Context, name string, members ...any) int64

	// SetMembers returns the decoded members of set name. Order is
	// unspecified; uniqueness is the store's.
	SetMembers(ctx context.Context, name string) []any

	// Publish sends message to channel, returning the number of subscribers
	// that received it.
	Publish(ctx context.Context, channel string, message any) int64

	// Subscribe returns a live subscription handle bound to channel, or nil
	// on failure. The handle is caller-owned: its read loop, unsubscribe and
	// close are the caller's responsibility.
	Subscribe(ctx context.Context, channel string) *redis.PubSub

	// Close releases the owned connection. Idempotent.
	Close() error
}

// Options configure a single-node Client. Zero values fall back to the
// REDIS_* environment variables, then to hard defaults (localhost:6379, no
// auth, DB 0). All fields are immutable after NewClient.
type Options struct {
	Host     string
	Port     int
	DB       int
	Password string
	TLS      bool

	Logger Logger // nil => NopLogger
	Hooks  Hooks  // nil => NopHooks

	// Client, when set, is used instead of dialing Host:Port. Close only
	// releases it when CloseClient is true — set that only if this Client
	// exclusively owns it.
	Client      redis.UniversalClient
	CloseClient bool
}

// ClusterOptions configure a ClusterClient. At least one seed address is
// required unless the REDIS_CLUSTER_* environment provides one.
type ClusterOptions struct {
	// Addrs are seed "host:port" pairs. Multiple seeds improve first-contact
	// resilience; retry across seeds is internal to the cluster transport.
	Addrs    []string
	Password string
	TLS      bool

	// CheckSlotCoverage verifies on first contact that all 16384 slots are
	// assigned, failing construction with *CoverageError otherwise. Off by
	// default: partially covered clusters are usable for the keys they own.
	CheckSlotCoverage bool

	Logger Logger
	Hooks  Hooks

	// Client, when set, is used instead of dialing the seeds. First contact
	// still PINGs it. Close only releases it when CloseClient is true.
	Client      redis.UniversalClient
	CloseClient bool
}

// SetOptions parameterize ClusterClient.SetWith. IfAbsent and IfPresent are
// mutually exclusive; setting both is rejected as a usage error.
type SetOptions struct {
	TTL       time.Duration
	IfAbsent  bool // write only when the key does not exist (NX)
	IfPresent bool // write only when the key already exists (XX)
}
