package flagstore

import (
	"context"
	"slices"

	"github.com/redis/go-redis/v9"
)

// Flags for each key are kept in a redis set.
type RedisFlagStore struct {
	Client *redis.Client
	Prefix string
}

var _ FlagStore = (*RedisFlagStore)(nil)

// The redis client is owned by the caller, and may be shared with other stores. Keys are namespaced under prefix.
func NewRedisFlagStore(rdb *redis.Client, prefix string) *RedisFlagStore {
	return &RedisFlagStore{
		Client: rdb,
		Prefix: prefix + "flag/",
	}
}

func members(flags []string) []any {
	out := make([]any, len(flags))
	for i, f := range flags {
		out[i] = f
	}
	return out
}

func (s *RedisFlagStore) Get(ctx context.Context, key string) ([]string, error) {
	// SMEMBERS on a missing key is an empty set, not redis.Nil
	l, err := s.Client.SMembers(ctx, s.Prefix+key).Result()
	if err != nil {
		return nil, err
	}
	slices.Sort(l)
	return l, nil
}

func (s *RedisFlagStore) Add(ctx context.Context, key string, flags []string) error {
	if len(flags) == 0 {
		return nil
	}
	return s.Client.SAdd(ctx, s.Prefix+key, members(flags)...).Err()
}

func (s *RedisFlagStore) Remove(ctx context.Context, key string, flags []string) error {
	if len(flags) == 0 {
		return nil
	}
	return s.Client.SRem(ctx, s.Prefix+key, members(flags)...).Err()
}
