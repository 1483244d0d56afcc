// Package cache stores rendered artifacts between CLI runs.
//
// Entries are opaque byte slices under string keys with an optional TTL.
// [FileCache] persists them on disk; [NullCache] disables caching.
// Keys are usually built with [Key] from a content hash of the IR document
// plus the options that influence the artifact:
//
//	key := cache.Key("render", cache.Hash(docBytes), format, detailed)
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the entry for key. A missing or expired entry is a miss,
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}
