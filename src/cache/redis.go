package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultIndexKey is the set that tracks every key written through RedisStore.
const DefaultIndexKey = "yemenflix:cached_keys"

// RedisStore keeps values under namespace+key and records each key in an
// index set, so prefix invalidation never needs KEYS or SCAN.
type RedisStore struct {
	rdb       *redis.Client
	namespace string
	indexKey  string
}

func NewRedisStore(rdb *redis.Client, namespace string) *RedisStore {
	index := DefaultIndexKey
	if namespace != "" {
		index = namespace + "cached_keys"
	}
	return &RedisStore{rdb: rdb, namespace: namespace, indexKey: index}
}

func (r *RedisStore) key(k string) string {
	return r.namespace + k
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.rdb.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	pipe := r.rdb.Pipeline()
	pipe.Set(ctx, r.key(key), val, ttl)
	pipe.SAdd(ctx, r.indexKey, key)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	members := make([]interface{}, len(keys))
	for i, k := range keys {
		full[i] = r.key(k)
		members[i] = k
	}
	pipe := r.rdb.Pipeline()
	pipe.Del(ctx, full...)
	pipe.SRem(ctx, r.indexKey, members...)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisStore) InvalidatePrefix(ctx context.Context, prefix string) (int, error) {
	keys, err := r.rdb.SMembers(ctx, r.indexKey).Result()
	if err != nil {
		return 0, err
	}

	var matched []string
	for _, k := range keys {
		if strings.HasPrefix(k, prefix) {
			matched = append(matched, k)
		}
	}
	if err := r.Delete(ctx, matched...); err != nil {
		return 0, err
	}
	return len(matched), nil
}

func (r *RedisStore) Flush(ctx context.Context) error {
	keys, err := r.rdb.SMembers(ctx, r.indexKey).Result()
	if err != nil {
		return err
	}
	if err := r.Delete(ctx, keys...); err != nil {
		return err
	}
	return r.rdb.Del(ctx, r.indexKey).Err()
}

// Sweep removes index members whose values already expired.
func (r *RedisStore) Sweep(ctx context.Context) (int, error) {
	keys, err := r.rdb.SMembers(ctx, r.indexKey).Result()
	if err != nil {
		return 0, err
	}

	pipe := r.rdb.Pipeline()
	cmds := make([]*redis.IntCmd, len(keys))
	for i, k := range keys {
		cmds[i] = pipe.Exists(ctx, r.key(k))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return 0, err
	}

	var stale []interface{}
	for i, cmd := range cmds {
		if cmd.Val() == 0 {
			stale = append(stale, keys[i])
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}
	return len(stale), r.rdb.SRem(ctx, r.indexKey, stale...).Err()
}
