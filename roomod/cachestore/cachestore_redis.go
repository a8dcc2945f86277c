package cachestore

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/cache/v9"
	"github.com/redis/go-redis/v9"
)

// Values are shared through redis, with a small process-local TinyLFU in front.
type RedisCacheStore struct {
	Data   *cache.Cache
	TTL    time.Duration
	Prefix string
}

var _ CacheStore = (*RedisCacheStore)(nil)

// The redis client is owned by the caller, and may be shared with other stores. Keys are namespaced under prefix.
func NewRedisCacheStore(rdb *redis.Client, prefix string, ttl time.Duration) *RedisCacheStore {
	return &RedisCacheStore{
		Data: cache.New(&cache.Options{
			Redis: rdb,
			// local entries expire well before redis ones, so that status written by another process is seen quickly
			LocalCache: cache.NewTinyLFU(1_000, time.Minute),
		}),
		TTL:    ttl,
		Prefix: prefix + "cache/",
	}
}

func (s *RedisCacheStore) Get(ctx context.Context, name, key string) (string, error) {
	var val string
	switch err := s.Data.Get(ctx, s.Prefix+cacheKey(name, key), &val); {
	case errors.Is(err, cache.ErrCacheMiss):
		return "", nil
	case err != nil:
		return "", err
	}
	return val, nil
}

func (s *RedisCacheStore) Set(ctx context.Context, name, key string, val string) error {
	item := cache.Item{
		Ctx:   ctx,
		Key:   s.Prefix + cacheKey(name, key),
		Value: val,
		TTL:   s.TTL,
	}
	return s.Data.Set(&item)
}

func (s *RedisCacheStore) Purge(ctx context.Context, name, key string) error {
	if err := s.Data.Delete(ctx, s.Prefix+cacheKey(name, key)); err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		return err
	}
	return nil
}
