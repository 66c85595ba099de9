package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/ivlev/price2video/internal/model"
)

// Cache stores fetched record lists.
type Cache interface {
	Get(ctx context.Context, key string) ([]model.PriceRecord, bool, error)
	Set(ctx context.Context, key string, recs []model.PriceRecord, ttl time.Duration) error
}

// CachedFetcher serves repeated queries from a cache. Cache failures are logged
// and fall through to the wrapped fetcher; empty results are never cached.
type CachedFetcher struct {
	Inner Fetcher
	Cache Cache
	TTL   time.Duration
}

func NewCachedFetcher(inner Fetcher, cache Cache, ttl time.Duration) *CachedFetcher {
	return &CachedFetcher{Inner: inner, Cache: cache, TTL: ttl}
}

func (c *CachedFetcher) Fetch(ctx context.Context, q Query) ([]model.PriceRecord, error) {
	key := CacheKey(q)

	recs, ok, err := c.Cache.Get(ctx, key)
	if err != nil {
		logx.WithContext(ctx).Errorf("source: cache get %s: %v", key, err)
	} else if ok && len(recs) > 0 {
		return recs, nil
	}

	recs, err = c.Inner.Fetch(ctx, q)
	if err != nil {
		return nil, err
	}
	if err := c.Cache.Set(ctx, key, recs, c.TTL); err != nil {
		logx.WithContext(ctx).Errorf("source: cache set %s: %v", key, err)
	}
	return recs, nil
}

// CacheKey is the cache key of a query.
func CacheKey(q Query) string {
	date, cat := q.Date, q.Category
	if date == "" {
		date = "any"
	}
	if cat == "" {
		cat = "all"
	}
	return fmt.Sprintf("records:%s:%s", date, cat)
}

// RedisCache keeps record lists as JSON strings under a key prefix.
type RedisCache struct {
	client *redis.Client
	prefix string
}

func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

// NewRedisClient connects to addr and pings it.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]model.PriceRecord, bool, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var recs []model.PriceRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, false, fmt.Errorf("decode cached records: %w", err)
	}
	return recs, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, recs []model.PriceRecord, ttl time.Duration) error {
	data, err := json.Marshal(recs)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.prefix+key, data, ttl).Err()
}
