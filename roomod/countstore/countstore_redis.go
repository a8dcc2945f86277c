package countstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis keys for bucketed periods expire a little after the bucket closes. Totals never expire.
var redisPeriodTTL = map[string]time.Duration{
	PeriodTotal: 0,
	PeriodDay:   48 * time.Hour,
	PeriodHour:  2 * time.Hour,
}

type RedisCountStore struct {
	Client *redis.Client
	Prefix string
	Now    func() time.Time
}

var _ CountStore = (*RedisCountStore)(nil)

// The redis client is owned by the caller, and may be shared with other stores. Keys are namespaced under prefix.
func NewRedisCountStore(rdb *redis.Client, prefix string) *RedisCountStore {
	return &RedisCountStore{
		Client: rdb,
		Prefix: prefix + "count/",
		Now:    time.Now,
	}
}

func (s *RedisCountStore) GetCount(ctx context.Context, name, val, period string) (int, error) {
	c, err := s.Client.Get(ctx, s.Prefix+periodBucket(name, val, period, s.Now())).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return c, err
}

// All period buckets are bumped in a single transaction.
func (s *RedisCountStore) Increment(ctx context.Context, name, val string) error {
	now := s.Now()
	_, err := s.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for period, ttl := range redisPeriodTTL {
			key := s.Prefix + periodBucket(name, val, period, now)
			pipe.Incr(ctx, key)
			if ttl > 0 {
				pipe.Expire(ctx, key, ttl)
			}
		}
		return nil
	})
	return err
}
