package cache

import (
	"context"
	"time"
)

// Cache is the TTL key-value contract the session memory is built on.
// Get returns ("", nil) for absent or expired keys; absence is never an
// error at this layer.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
