// Package cache provides the string cache that keeps repeated product
// searches off the catalog API.
package cache

import (
	"context"
	"time"
)

// Cache is a string key/value store with per-entry expiry.
type Cache interface {
	// Set stores value under key for ttl. A zero ttl means no expiry.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	// Get returns the stored value; absent or expired keys error.
	Get(ctx context.Context, key string) (string, error)
	// Del removes key. Deleting an absent key is not an error.
	Del(ctx context.Context, key string) error
}
