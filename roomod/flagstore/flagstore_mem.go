package flagstore

import (
	"context"
	"maps"
	"slices"
	"sync"
)

type MemFlagStore struct {
	mu    sync.Mutex
	flags map[string]map[string]struct{}
}

var _ FlagStore = (*MemFlagStore)(nil)

func NewMemFlagStore() *MemFlagStore {
	return &MemFlagStore{flags: map[string]map[string]struct{}{}}
}

// returns flags in sorted order
func (s *MemFlagStore) Get(_ context.Context, key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := slices.Sorted(maps.Keys(s.flags[key]))
	if out == nil {
		out = []string{}
	}
	return out, nil
}

func (s *MemFlagStore) Add(_ context.Context, key string, flags []string) error {
	if len(flags) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.flags[key]
	if set == nil {
		set = make(map[string]struct{}, len(flags))
		s.flags[key] = set
	}
	for _, f := range flags {
		set[f] = struct{}{}
	}
	return nil
}

// removing flags which are not set is not an error
func (s *MemFlagStore) Remove(_ context.Context, key string, flags []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.flags[key]
	for _, f := range flags {
		delete(set, f)
	}
	if len(set) == 0 {
		delete(s.flags, key)
	}
	return nil
}
