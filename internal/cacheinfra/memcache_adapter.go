package cacheinfra

import (
	"context"
	"strings"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/goliatone/go-catalog-cache/cache"
)

var _ cache.Cache = (*MemcacheCache)(nil)

// MemcacheCache implements cache.Cache against an external memcached
// instance, giving every process that shares the server a single view of the
// cached catalog. TTL expiry is enforced server side, per entry.
//
// memcached has no key scan, so the adapter tracks the keys it has written
// and resolves DeleteByPrefix from that registry. The registry is local to
// this process; entries written by other clients age out via TTL instead.
type MemcacheCache struct {
	client *memcache.Client
	keys   *xsync.MapOf[string, struct{}]
}

// NewMemcacheCache builds a memcached-backed cache talking to the given
// server addresses.
func NewMemcacheCache(addrs ...string) *MemcacheCache {
	return &MemcacheCache{
		client: memcache.New(addrs...),
		keys:   xsync.NewMapOf[string, struct{}](),
	}
}

// Get returns the bytes stored under key. Misses map to cache.ErrCacheMiss;
// every other failure is connectivity loss and maps to ErrCacheUnavailable.
func (m *MemcacheCache) Get(ctx context.Context, key string) ([]byte, error) {
	item, err := m.client.Get(key)
	if err != nil {
		if err == memcache.ErrCacheMiss {
			return nil, cache.ErrCacheMiss
		}
		return nil, cache.Unavailable(err)
	}
	return item.Value, nil
}

// Set stores value under key with the given ttl. memcached expirations have
// one second granularity; sub-second TTLs round up so an entry never outlives
// the requested bound by omission of expiry.
func (m *MemcacheCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	expiration := int32(ttl / time.Second)
	if ttl > 0 && expiration == 0 {
		expiration = 1
	}

	err := m.client.Set(&memcache.Item{
		Key:        key,
		Value:      value,
		Expiration: expiration,
	})
	if err != nil {
		return cache.Unavailable(err)
	}

	m.keys.Store(key, struct{}{})
	return nil
}

// Delete removes a single entry. Deleting an absent key is a no-op.
func (m *MemcacheCache) Delete(ctx context.Context, key string) error {
	m.keys.Delete(key)

	err := m.client.Delete(key)
	if err != nil && err != memcache.ErrCacheMiss {
		return cache.Unavailable(err)
	}
	return nil
}

// DeleteByPrefix removes every tracked entry whose key starts with prefix.
func (m *MemcacheCache) DeleteByPrefix(ctx context.Context, prefix string) error {
	var toDelete []string
	m.keys.Range(func(key string, _ struct{}) bool {
		if strings.HasPrefix(key, prefix) {
			toDelete = append(toDelete, key)
		}
		return true
	})

	var firstErr error
	for _, key := range toDelete {
		if err := m.Delete(ctx, key); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
