package cachestore

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Process-local store; least recently used entries are evicted once capacity is reached.
type MemCacheStore struct {
	lru *expirable.LRU[string, string]
}

var _ CacheStore = (*MemCacheStore)(nil)

func NewMemCacheStore(capacity int, ttl time.Duration) *MemCacheStore {
	return &MemCacheStore{lru: expirable.NewLRU[string, string](capacity, nil, ttl)}
}

func (s *MemCacheStore) Get(_ context.Context, name, key string) (string, error) {
	val, _ := s.lru.Get(cacheKey(name, key))
	return val, nil
}

func (s *MemCacheStore) Set(_ context.Context, name, key string, val string) error {
	s.lru.Add(cacheKey(name, key), val)
	return nil
}

func (s *MemCacheStore) Purge(_ context.Context, name, key string) error {
	s.lru.Remove(cacheKey(name, key))
	return nil
}

// Number of live entries, across all namespaces.
func (s *MemCacheStore) Len() int {
	return s.lru.Len()
}
