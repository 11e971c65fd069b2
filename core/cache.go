package core

import (
	"context"
	"time"
)

// Cache is any key/value store used to memoize expensive reads.
// Values are JSON encoded; Get reports whether the key was found.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, val interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
