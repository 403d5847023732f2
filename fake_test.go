package rediskit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var errBoom = errors.New("connection refused")

// fakeRedis implements the slice of redis.UniversalClient the clients use,
// backed by in-process maps. Unused methods come from the embedded interface
// and panic if reached. failAll flips every command into a transport error.
type fakeRedis struct {
	redis.UniversalClient

	mu      sync.Mutex
	strings map[string]string
	ttls    map[string]time.Duration
	hashes  map[string]map[string]string
	lists   map[string][]string
	sets    map[string]map[string]struct{}
	subs    map[string]int64 // channel -> subscriber count reported by Publish

	failAll bool
	pingErr error

	keySlots   map[string]int64
	keySlotErr error
	slots      []redis.ClusterSlot
	nodesRaw   string

	closed bool
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{
		strings:  map[string]string{},
		ttls:     map[string]time.Duration{},
		hashes:   map[string]map[string]string{},
		lists:    map[string][]string{},
		sets:     map[string]map[string]struct{}{},
		subs:     map[string]int64{},
		keySlots: map[string]int64{},
	}
}

func argString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}

func (f *fakeRedis) Ping(context.Context) *redis.StatusCmd {
	if f.failAll {
		return redis.NewStatusResult("", errBoom)
	}
	if f.pingErr != nil {
		return redis.NewStatusResult("", f.pingErr)
	}
	return redis.NewStatusResult("PONG", nil)
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.failAll {
		return redis.NewStringResult("", errBoom)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.strings[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if f.failAll {
		return redis.NewStatusResult("", errBoom)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.strings[key] = argString(value)
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) SetNX(_ context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	if f.failAll {
		return redis.NewBoolResult(false, errBoom)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.strings[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.strings[key] = argString(value)
	f.ttls[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) SetXX(_ context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	if f.failAll {
		return redis.NewBoolResult(false, errBoom)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.strings[key]; !ok {
		return redis.NewBoolResult(false, nil)
	}
	f.strings[key] = argString(value)
	f.ttls[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	if f.failAll {
		return redis.NewIntResult(0, errBoom)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := f.strings[k]; ok {
			delete(f.strings, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeRedis) Exists(_ context.Context, keys ...string) *redis.IntCmd {
	if f.failAll {
		return redis.NewIntResult(0, errBoom)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := f.strings[k]; ok {
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeRedis) HSet(_ context.Context, key string, values ...any) *redis.IntCmd {
	if f.failAll {
		return redis.NewIntResult(0, errBoom)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	h := f.hashes[key]
	if h == nil {
		h = map[string]string{}
		f.hashes[key] = h
	}
	var added int64
	for i := 0; i+1 < len(values); i += 2 {
		field := argString(values[i])
		if _, ok := h[field]; !ok {
			added++
		}
		h[field] = argString(values[i+1])
	}
	return redis.NewIntResult(added, nil)
}

func (f *fakeRedis) HGet(_ context.Context, key, field string) *redis.StringCmd {
	if f.failAll {
		return redis.NewStringResult("", errBoom)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.hashes[key][field]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) HGetAll(_ context.Context, key string) *redis.MapStringStringCmd {
	if f.failAll {
		return redis.NewMapStringStringResult(nil, errBoom)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]string{}
	for k, v := range f.hashes[key] {
		out[k] = v
	}
	return redis.NewMapStringStringResult(out, nil)
}

func (f *fakeRedis) HDel(_ context.Context, key string, fields ...string) *redis.IntCmd {
	if f.failAll {
		return redis.NewIntResult(0, errBoom)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, fl := range fields {
		if _, ok := f.hashes[key][fl]; ok {
			delete(f.hashes[key], fl)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeRedis) RPush(_ context.Context, key string, values ...any) *redis.IntCmd {
	if f.failAll {
		return redis.NewIntResult(0, errBoom)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range values {
		f.lists[key] = append(f.lists[key], argString(v))
	}
	return redis.NewIntResult(int64(len(f.lists[key])), nil)
}

func (f *fakeRedis) LRange(_ context.Context, key string, start, stop int64) *redis.StringSliceCmd {
	if f.failAll {
		return redis.NewStringSliceResult(nil, errBoom)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	l := f.lists[key]
	n := int64(len(l))
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if n == 0 || start > stop || start >= n {
		return redis.NewStringSliceResult([]string{}, nil)
	}
	out := make([]string, stop-start+1)
	copy(out, l[start:stop+1])
	return redis.NewStringSliceResult(out, nil)
}

func (f *fakeRedis) SAdd(_ context.Context, key string, members ...any) *redis.IntCmd {
	if f.failAll {
		return redis.NewIntResult(0, errBoom)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.sets[key]
	if s == nil {
		s = map[string]struct{}{}
		f.sets[key] = s
	}
	var added int64
	for _, m := range members {
		ms := argString(m)
		if _, ok := s[ms]; !ok {
			s[ms] = struct{}{}
			added++
		}
	}
	return redis.NewIntResult(added, nil)
}

func (f *fakeRedis) SMembers(_ context.Context, key string) *redis.StringSliceCmd {
	if f.failAll {
		return redis.NewStringSliceResult(nil, errBoom)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sets[key]))
	for m := range f.sets[key] {
		out = append(out, m)
	}
	return redis.NewStringSliceResult(out, nil)
}

func (f *fakeRedis) Publish(_ context.Context, channel string, _ any) *redis.IntCmd {
	if f.failAll {
		return redis.NewIntResult(0, errBoom)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return redis.NewIntResult(f.subs[channel], nil)
}

func (f *fakeRedis) ClusterKeySlot(_ context.Context, key string) *redis.IntCmd {
	if f.failAll {
		return redis.NewIntResult(0, errBoom)
	}
	if f.keySlotErr != nil {
		return redis.NewIntResult(0, f.keySlotErr)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return redis.NewIntResult(f.keySlots[key], nil)
}

func (f *fakeRedis) ClusterSlots(context.Context) *redis.ClusterSlotsCmd {
	if f.failAll {
		return redis.NewClusterSlotsCmdResult(nil, errBoom)
	}
	return redis.NewClusterSlotsCmdResult(f.slots, nil)
}

func (f *fakeRedis) ClusterNodes(context.Context) *redis.StringCmd {
	if f.failAll {
		return redis.NewStringResult("", errBoom)
	}
	return redis.NewStringResult(f.nodesRaw, nil)
}

func (f *fakeRedis) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// hookRecorder captures Hooks callbacks for assertions.
type hookRecorder struct {
	mu        sync.Mutex
	degraded  []string // "op key"
	errs      []error
	connected []string
}

func (h *hookRecorder) OpDegraded(op, key string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.degraded = append(h.degraded, op+" "+key)
	h.errs = append(h.errs, err)
}

func (h *hookRecorder) Connected(addr string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connected = append(h.connected, addr)
}

func (h *hookRecorder) degradedOps() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.degraded))
	copy(out, h.degraded)
	return out
}
