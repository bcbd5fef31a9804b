// Package cache is a look-aside cache over redis. It is never the source of
// truth: every operation degrades to a miss or a no-op when the backend
// fails, so an outage costs performance, not correctness.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultTTL is the entry lifetime used when a Set does not override it.
// Reads through GetAndRefresh re-issue the same TTL (sliding expiration).
const DefaultTTL = 120 * time.Second

// SetMode conditions a write on key existence.
type SetMode int

const (
	// ModeAlways writes unconditionally.
	ModeAlways SetMode = iota
	// ModeNX writes only if the key does not exist.
	ModeNX
	// ModeXX writes only if the key already exists.
	ModeXX
)

// SetOptions tunes a single Set call.
type SetOptions struct {
	TTL     time.Duration // zero means the store default
	KeepTTL bool          // keep the key's existing TTL instead of re-issuing one
	Mode    SetMode
}

// Store wraps a redis client with cache-aside semantics. All methods are
// safe for concurrent use.
type Store struct {
	client    *redis.Client
	ttl       time.Duration
	opTimeout time.Duration
	log       *zap.Logger
}

// New builds a Store. Zero ttl/opTimeout fall back to sane defaults.
func New(client *redis.Client, ttl, opTimeout time.Duration, log *zap.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if opTimeout <= 0 {
		opTimeout = 2 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{client: client, ttl: ttl, opTimeout: opTimeout, log: log}
}

// TTLDefault returns the store's default entry TTL.
func (s *Store) TTLDefault() time.Duration { return s.ttl }

func (s *Store) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opTimeout)
}

func (s *Store) warn(op, key string, err error) {
	s.log.Warn("cache operation degraded",
		zap.String("op", op),
		zap.String("key", key),
		zap.Error(err),
	)
}

// Set serializes value as JSON and writes it under key. Returns true when
// the write happened (an NX/XX condition may legitimately skip it). Backend
// errors are logged and swallowed.
func (s *Store) Set(ctx context.Context, key string, value any, opts *SetOptions) bool {
	payload, err := json.Marshal(value)
	if err != nil {
		s.warn("set", key, err)
		return false
	}

	ttl := s.ttl
	if opts != nil {
		if opts.TTL > 0 {
			ttl = opts.TTL
		}
		if opts.KeepTTL {
			ttl = redis.KeepTTL
		}
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	mode := ModeAlways
	if opts != nil {
		mode = opts.Mode
	}

	switch mode {
	case ModeNX:
		ok, err := s.client.SetNX(ctx, key, payload, ttl).Result()
		if err != nil {
			s.warn("setnx", key, err)
			return false
		}
		return ok
	case ModeXX:
		ok, err := s.client.SetXX(ctx, key, payload, ttl).Result()
		if err != nil {
			s.warn("setxx", key, err)
			return false
		}
		return ok
	default:
		if err := s.client.Set(ctx, key, payload, ttl).Err(); err != nil {
			s.warn("set", key, err)
			return false
		}
		return true
	}
}

// Get returns the raw serialized entry under key. A backend error reads as
// a miss.
func (s *Store) Get(ctx context.Context, key string) (string, bool) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.warn("get", key, err)
		}
		return "", false
	}
	return val, true
}

// GetAndRefresh returns the entry under key and, on a hit, re-issues the
// default TTL. On a miss it performs no write: the caller repopulates after
// consulting the source of truth.
func (s *Store) GetAndRefresh(ctx context.Context, key string) (string, bool) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.warn("getrefresh", key, err)
		}
		return "", false
	}
	if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
		s.warn("getrefresh", key, err)
	}
	return val, true
}

// Delete removes the given keys. Errors are logged and swallowed.
func (s *Store) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		s.warn("delete", keys[0], err)
	}
}

// DeletePattern removes every key matching the suffix-wildcard pattern
// (e.g. "products:list:*") by enumerating with SCAN and bulk-deleting.
func (s *Store) DeletePattern(ctx context.Context, pattern string) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var keys []string
	iter := s.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		s.warn("scan", pattern, err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		s.warn("deletepattern", pattern, err)
	}
}

// Exists reports whether key is present. A backend error reads as absent.
func (s *Store) Exists(ctx context.Context, key string) bool {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		s.warn("exists", key, err)
		return false
	}
	return n > 0
}

// TTL returns the key's remaining lifetime. ok is false when the key is
// absent, has no expiry, or the backend failed.
func (s *Store) TTL(ctx context.Context, key string) (time.Duration, bool) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	d, err := s.client.TTL(ctx, key).Result()
	if err != nil {
		s.warn("ttl", key, err)
		return 0, false
	}
	if d < 0 {
		return 0, false
	}
	return d, true
}

// GetJSON reads key and unmarshals it into T. Any deserialization problem
// reads as a miss so a poisoned entry cannot fail a request.
func GetJSON[T any](ctx context.Context, s *Store, key string) (*T, bool) {
	raw, ok := s.Get(ctx, key)
	if !ok {
		return nil, false
	}
	return decode[T](s, key, raw)
}

// GetAndRefreshJSON is GetJSON with sliding expiration on hit.
func GetAndRefreshJSON[T any](ctx context.Context, s *Store, key string) (*T, bool) {
	raw, ok := s.GetAndRefresh(ctx, key)
	if !ok {
		return nil, false
	}
	return decode[T](s, key, raw)
}

func decode[T any](s *Store, key, raw string) (*T, bool) {
	var out T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		s.warn("decode", key, err)
		return nil, false
	}
	return &out, true
}
