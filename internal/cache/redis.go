package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "inflation:series:"

// RedisStore shares cache entries between processes. When Redis is
// unavailable it serves from an in-process MemoryStore instead.
type RedisStore struct {
	rdb *redis.Client
	mem *MemoryStore
}

// NewRedisStore connects and pings Redis.
func NewRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{rdb: rdb, mem: NewMemoryStore()}, nil
}

func redisKey(key string) string { return redisKeyPrefix + key }

func (r *RedisStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	b, err := r.rdb.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return r.mem.Get(ctx, key)
	}
	if err != nil {
		log.Printf("[WARN] redis get %s failed, using memory: %v", key, err)
		return r.mem.Get(ctx, key)
	}
	var e Entry
	if err := json.Unmarshal(b, &e); err != nil {
		return Entry{}, false, fmt.Errorf("decode redis entry %s: %w", key, err)
	}
	return e, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, e Entry, ttl time.Duration) error {
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode redis entry %s: %w", key, err)
	}
	if err := r.rdb.Set(ctx, redisKey(key), b, ttl).Err(); err != nil {
		_ = r.mem.Set(ctx, key, e, ttl)
		return fmt.Errorf("redis set %s, kept in memory: %w", key, err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	_ = r.mem.Delete(ctx, key)
	return r.rdb.Del(ctx, redisKey(key)).Err()
}

// Health pings Redis.
func (r *RedisStore) Health(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func (r *RedisStore) Close() error {
	return r.rdb.Close()
}
