// Package cache implements the read-through provider cache: a bounded-TTL
// key-value layer in front of the external data providers, plus the Store
// abstraction it (and the rate limiter) runs on.
//
// Two Store implementations are provided. RedisStore is the production
// choice and gives set-with-expiry plus atomic counters shared across
// processes. MemoryStore is a process-local stand-in for development and
// tests, built on patrickmn/go-cache for expiring values.
package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Store.Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Store is the minimal key-value contract the cache and limiter need:
// get, set-with-expiry, and an atomic windowed counter. Implementations
// must be safe for concurrent use and atomic per key; no cross-key
// transactions are required.
type Store interface {
	// Get returns the value for key or ErrMiss.
	Get(ctx context.Context, key string) (string, error)

	// SetEX stores value under key with the given TTL, replacing any
	// previous value (last writer wins).
	SetEX(ctx context.Context, key, value string, ttl time.Duration) error

	// IncrWindow atomically increments the counter at key and returns the
	// new count. The first increment of a fresh key starts a window of the
	// given length; the counter resets when the window lapses.
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

// ---- Redis-backed store ----

// RedisStore implements Store on a shared Redis instance.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore parses a redis URL, configures the connection pool, and
// verifies connectivity with a bounded ping.
func NewRedisStore(redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	opts.PoolSize = 10
	opts.MinIdleConns = 2
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &RedisStore{client: client}, nil
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	return v, err
}

// SetEX implements Store.
func (s *RedisStore) SetEX(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

// IncrWindow implements Store. INCR and the expiry are pipelined; the NX
// expiry only sticks on the increment that created the key, which is what
// pins the window start to the first consumption.
func (s *RedisStore) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error { return s.client.Close() }

// ---- In-process store ----

// MemoryStore implements Store inside the process. Values live in a
// go-cache instance with native expiration; counters are guarded by a
// mutex to keep increments atomic under concurrent submissions.
type MemoryStore struct {
	values *gocache.Cache

	mu       sync.Mutex
	counters map[string]*windowCounter
}

type windowCounter struct {
	count   int64
	resetAt time.Time
}

// NewMemoryStore builds an empty in-process store. Expired values are
// swept opportunistically by go-cache's janitor.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values:   gocache.New(gocache.NoExpiration, 10*time.Minute),
		counters: make(map[string]*windowCounter),
	}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	v, ok := s.values.Get(key)
	if !ok {
		return "", ErrMiss
	}
	str, ok := v.(string)
	if !ok {
		return "", ErrMiss
	}
	return str, nil
}

// SetEX implements Store.
func (s *MemoryStore) SetEX(_ context.Context, key, value string, ttl time.Duration) error {
	s.values.Set(key, value, ttl)
	return nil
}

// IncrWindow implements Store.
func (s *MemoryStore) IncrWindow(_ context.Context, key string, window time.Duration) (int64, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.counters[key]
	if !ok || now.After(c.resetAt) {
		c = &windowCounter{resetAt: now.Add(window)}
		s.counters[key] = c
	}
	c.count++
	return c.count, nil
}
