package flagstore

import (
	"context"
)

// Records which issue kinds have been flagged on a submission. Keys are submission permalinks; flags are issue kind strings.
type FlagStore interface {
	// Sorted; empty (not nil) when nothing is flagged.
	Get(ctx context.Context, key string) ([]string, error)
	Add(ctx context.Context, key string, flags []string) error
	Remove(ctx context.Context, key string, flags []string) error
}
