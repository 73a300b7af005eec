// Package cache stores fetched documents between runs.
//
// mizgra only caches remote RDF sources: a run that names an http(s) URL can
// reuse the body fetched by an earlier run instead of downloading it again.
// Caching is opt-in; without a cache directory or Redis URL the [NullCache]
// is used and every run fetches afresh.
//
// Backends:
//   - [FileCache]: one JSON file per entry under a directory
//   - [RedisCache]: a shared Redis instance
//   - [NullCache]: stores nothing
//
// [Observe] wraps any backend so hits, misses and writes reach the
// observability hooks.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the stored value and true, or false on a miss. Expired
	// entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	// HTTPKey returns the key of a response fetched from url.
	HTTPKey(namespace, url string) string
}

// DefaultKeyer builds plain, readable keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey returns "http:<namespace>:<url>".
func (DefaultKeyer) HTTPKey(namespace, url string) string {
	return "http:" + namespace + ":" + url
}
