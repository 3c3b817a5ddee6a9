package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrCacheMiss is returned by Cache.Get when the key is absent or expired.
// It is an expected condition, not a failure.
var ErrCacheMiss = errors.New("cache: miss")

// ErrCacheUnavailable indicates the cache backend could not be reached.
// Callers decide whether to degrade to the source of truth or to fail the
// request; see the catalogcache service for the policy.
var ErrCacheUnavailable = errors.New("cache: unavailable")

// ErrInvalidResultType indicates a cached or fetched value did not match the
// type the caller expected.
var ErrInvalidResultType = errors.New("cache: invalid result type")

// Cache is a volatile key/value store with per-entry TTL. Entries expire via
// the substrate's own mechanism; this interface never re-checks expiry.
//
// All methods must be safe for concurrent use. Delete and DeleteByPrefix are
// idempotent: removing an absent key is a no-op, not an error.
type Cache interface {
	// Get returns the stored bytes for key, or ErrCacheMiss when absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key. The entry expires after ttl; substrates
	// that only support a store-wide TTL may approximate it.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a single entry.
	Delete(ctx context.Context, key string) error

	// DeleteByPrefix removes every entry whose key starts with prefix.
	// Used for namespace-wide invalidation.
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// Unavailable wraps err as an ErrCacheUnavailable so callers can detect
// connectivity loss with errors.Is.
func Unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
}
