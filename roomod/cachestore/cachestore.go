package cachestore

import (
	"context"
)

// Short-lived string values, grouped into named namespaces.
type CacheStore interface {
	// Missing or expired entries come back as the empty string, with no error.
	Get(ctx context.Context, name, key string) (string, error)
	// Writes overwrite any existing value, and reset the expiry.
	Set(ctx context.Context, name, key string, val string) error
	Purge(ctx context.Context, name, key string) error
}

func cacheKey(name, key string) string {
	return name + "/" + key
}
