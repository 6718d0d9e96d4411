package client

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"yemenflix/src/cache"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// QueryCache caches GET responses by request path. Each fetch of a key gets
// a sequence number; only the newest fetch may write the cache, so a slow
// response never replaces a newer one or survives an invalidation.
type QueryCache struct {
	store cache.Store
	ttl   time.Duration
	group singleflight.Group

	mu  sync.Mutex
	seq map[string]uint64
}

func NewQueryCache(ttl time.Duration) *QueryCache {
	return &QueryCache{store: cache.NewMemoryStore(), ttl: ttl, seq: map[string]uint64{}}
}

func (q *QueryCache) begin(key string) uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.seq[key]++
	return q.seq[key]
}

// commit stores data when n is still the newest sequence for key.
func (q *QueryCache) commit(ctx context.Context, key string, n uint64, data []byte) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.seq[key] != n {
		return false
	}
	if err := q.store.Set(ctx, key, data, q.ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("query cache write failed")
	}
	return true
}

// Fetch returns the cached bytes for key or runs fetch. Concurrent misses
// on one key share a single fetch.
func (q *QueryCache) Fetch(ctx context.Context, key string, fetch func(context.Context) ([]byte, error)) ([]byte, error) {
	if data, ok, err := q.store.Get(ctx, key); err == nil && ok {
		return data, nil
	}
	v, err, _ := q.group.Do(key, func() (interface{}, error) {
		n := q.begin(key)
		data, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		if !q.commit(ctx, key, n, data) {
			log.Debug().Str("key", key).Uint64("seq", n).Msg("stale response not cached")
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	data, ok := v.([]byte)
	if !ok {
		return nil, errors.New("query cache: unexpected fetch result")
	}
	return data, nil
}

// Invalidate drops every key under prefix and outdates fetches in flight
// for those keys.
func (q *QueryCache) Invalidate(ctx context.Context, prefix string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for key := range q.seq {
		if strings.HasPrefix(key, prefix) {
			q.seq[key]++
		}
	}
	if _, err := q.store.InvalidatePrefix(ctx, prefix); err != nil {
		log.Warn().Err(err).Str("prefix", prefix).Msg("query cache invalidation failed")
	}
}

func (q *QueryCache) Cached(ctx context.Context, key string) bool {
	_, ok, err := q.store.Get(ctx, key)
	return err == nil && ok
}
