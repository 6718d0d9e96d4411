// Package cache is the response cache shared by the HTTP layer. Keys are
// request URIs, so invalidating "/api/content" drops every cached view of
// the catalog.
package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Store is a byte cache with prefix invalidation.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// InvalidatePrefix removes every key starting with prefix and returns how many.
	InvalidatePrefix(ctx context.Context, prefix string) (int, error)
	Flush(ctx context.Context) error
	// Sweep drops expired entries and stale index members.
	Sweep(ctx context.Context) (int, error)
}

// Cache adds TTL defaults and fill deduplication on top of a Store. Each
// invalidated prefix carries a generation so a fill that started before an
// invalidation never lands after it.
type Cache struct {
	store Store
	ttl   time.Duration
	group singleflight.Group

	mu   sync.RWMutex
	gens map[string]uint64
}

func New(store Store, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{store: store, ttl: ttl, gens: make(map[string]uint64)}
}

func (c *Cache) Store() Store {
	return c.store
}

func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Invalidate drops every key under each prefix. Errors are logged, not returned:
// a failed invalidation must not fail the write that triggered it.
func (c *Cache) Invalidate(ctx context.Context, prefixes ...string) {
	c.mu.Lock()
	for _, prefix := range prefixes {
		c.gens[prefix]++
	}
	c.mu.Unlock()

	for _, prefix := range prefixes {
		n, err := c.store.InvalidatePrefix(ctx, prefix)
		if err != nil {
			log.Warn().Err(err).Str("prefix", prefix).Msg("cache invalidation failed")
			continue
		}
		log.Debug().Str("prefix", prefix).Int("keys", n).Msg("cache invalidated")
	}
}

// Generation sums the generations of every invalidated prefix covering key.
// It only grows, so a changed value means key was invalidated in between.
func (c *Cache) Generation(key string) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var gen uint64
	for prefix, n := range c.gens {
		if strings.HasPrefix(key, prefix) {
			gen += n
		}
	}
	return gen
}

// SetIfCurrent stores val unless key was invalidated after gen was read.
// An invalidation racing the write is caught by the second check and the
// entry is dropped again.
func (c *Cache) SetIfCurrent(ctx context.Context, key string, val []byte, gen uint64) (bool, error) {
	if c.Generation(key) != gen {
		return false, nil
	}
	if err := c.store.Set(ctx, key, val, c.ttl); err != nil {
		return false, err
	}
	if c.Generation(key) != gen {
		return false, c.store.Delete(ctx, key)
	}
	return true, nil
}

// Remember returns the cached value for key or fills it with fill. Concurrent
// misses for the same key share one fill.
func Remember[T any](ctx context.Context, c *Cache, key string, fill func(context.Context) (T, error)) (T, error) {
	var out T

	if raw, ok, err := c.store.Get(ctx, key); err == nil && ok {
		if err := json.Unmarshal(raw, &out); err == nil {
			return out, nil
		}
	} else if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache read failed")
	}

	raw, err, _ := c.group.Do(key, func() (interface{}, error) {
		gen := c.Generation(key)
		val, err := fill(ctx)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		if _, err := c.SetIfCurrent(ctx, key, data, gen); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache write failed")
		}
		return data, nil
	})
	if err != nil {
		return out, err
	}

	data, ok := raw.([]byte)
	if !ok {
		return out, errors.New("cache: unexpected fill result")
	}
	err = json.Unmarshal(data, &out)
	return out, err
}
