// Package cache provides the key-value stores used to keep inventory
// snapshots between runs.
//
// Three backends implement [Cache]:
//
//   - [FileCache]: JSON envelopes under the user cache directory (default)
//   - [RedisCache]: a shared Redis instance
//   - [NullCache]: never stores anything (--no-cache)
//
// Entries carry their own expiry; a Get after the TTL has elapsed is a miss.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key-value store with per-entry TTL.
type Cache interface {
	// Get returns the value and true on a hit. Expired or unreadable
	// entries are reported as a miss, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data for ttl. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key; deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}
