package cache

import "context"

// Store is a flat namespace of string keys to string values, the same
// interface shape for every physical tier.
type Store interface {
	// Get returns the raw value or pkg/errors.ErrCacheMiss when absent.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
