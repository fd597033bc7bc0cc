// package cache provides the optional read-through cache used for rating aggregates and leaderboards.
//
// A redis [Store] is used when configured. Otherwise every lookup misses and writes are dropped,
// so callers never branch on whether caching is enabled.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/redis/go-redis/v9"
)

// Store is a byte-oriented key/value cache with expiry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// Incr atomically increments the integer stored at key and returns the new value.
	Incr(ctx context.Context, key string) (int64, error)
	Close() error
}

// MemoryAddr selects the in-process [Memory] store instead of redis.
const MemoryAddr = "memory"

// Open returns a redis-backed [Store] for cfg, or a [Nop] store when the cache is disabled or unreachable.
// An addr of [MemoryAddr] gives a [Memory] store.
func Open(ctx context.Context, cfg shared.CacheConfig, logger *log.Logger) Store {
	if !cfg.Enabled {
		return Nop{}
	}
	if cfg.Addr == MemoryAddr {
		logger.Info("using in-process cache")
		return NewMemory()
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unavailable, continuing without cache", "addr", cfg.Addr, "error", err)
		client.Close()
		return Nop{}
	}

	logger.Info("redis connected", "addr", cfg.Addr)
	return NewRedis(client)
}

// Redis implements [Store] with a go-redis client.
type Redis struct {
	client redis.UniversalClient
}

// NewRedis wraps an existing client.
func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: redis get %s: %w", shared.ErrTransient, key, err)
	}
	return b, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: redis set %s: %w", shared.ErrTransient, key, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: redis del: %w", shared.ErrTransient, err)
	}
	return nil
}

func (r *Redis) Incr(ctx context.Context, key string) (int64, error) {
	n, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: redis incr %s: %w", shared.ErrTransient, key, err)
	}
	return n, nil
}

func (r *Redis) Close() error { return r.client.Close() }

// Nop is a [Store] that stores nothing.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (Nop) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (Nop) Delete(context.Context, ...string) error { return nil }
func (Nop) Incr(context.Context, string) (int64, error) { return 0, nil }
func (Nop) Close() error { return nil }

type item struct {
	value   []byte
	expires time.Time
}

// Memory is an in-process [Store] for tests and single-node deployments without redis.
type Memory struct {
	mu    sync.Mutex
	items map[string]item
	now   func() time.Time
}

// NewMemory creates an empty [Memory] store.
func NewMemory() *Memory {
	return &Memory{items: map[string]item{}, now: time.Now}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	it, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}
	if !it.expires.IsZero() && !m.now().Before(it.expires) {
		delete(m.items, key)
		return nil, false, nil
	}
	return it.value, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	it := item{value: append([]byte(nil), value...)}
	if ttl > 0 {
		it.expires = m.now().Add(ttl)
	}
	m.items[key] = it
	return nil
}

func (m *Memory) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.items, k)
	}
	return nil
}

func (m *Memory) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	if it, ok := m.items[key]; ok {
		if _, err := fmt.Sscan(string(it.value), &n); err != nil {
			return 0, fmt.Errorf("value at %s is not an integer: %w", key, err)
		}
	}
	n++
	m.items[key] = item{value: []byte(fmt.Sprint(n))}
	return n, nil
}

func (m *Memory) Close() error { return nil }

// GetJSON decodes the cached value at key into a new T. A miss or undecodable value reports false.
func GetJSON[T any](ctx context.Context, s Store, key string) (*T, bool, error) {
	b, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, false, nil
	}
	return &v, true, nil
}

// SetJSON encodes v and stores it at key.
func SetJSON(ctx context.Context, s Store, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}
	return s.Set(ctx, key, b, ttl)
}

// Counter reads the integer at key as written by [Store.Incr]. A missing key is zero.
func Counter(ctx context.Context, s Store, key string) (int64, error) {
	b, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return 0, err
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("value at %s is not an integer: %w", key, err)
	}
	return n, nil
}

// SummaryKey is the key of a movie's cached rating summary.
func SummaryKey(movieID int64) string {
	return fmt.Sprintf("rating:summary:%d", movieID)
}

// LeaderboardGeneration holds a counter that is part of every leaderboard key. Incrementing it
// orphans all cached pages at once.
const LeaderboardGeneration = "leaderboard:gen"

// LeaderboardKey is the key of one cached leaderboard page.
func LeaderboardKey(gen int64, kind string, limit, page int) string {
	return fmt.Sprintf("leaderboard:%d:%s:%d:%d", gen, kind, limit, page)
}
