package cacheinfra

import (
	"context"
	"strings"
	"time"

	"github.com/viccon/sturdyc"

	"github.com/goliatone/go-catalog-cache/cache"
)

// Interface assertion to ensure the adapter satisfies cache.Cache.
var _ cache.Cache = (*SturdycCache)(nil)

// SturdycCache implements cache.Cache on top of an in-process sturdyc
// client. It is the backend of choice for single-process deployments and for
// tests; multi-process deployments should share a MemcacheCache instead.
type SturdycCache struct {
	client *sturdyc.Client[[]byte]
}

// NewSturdycCache validates cfg and builds the sturdyc-backed cache.
//
// sturdyc applies one TTL to the whole client, so the per-call ttl passed to
// Set is not honored entry by entry; cfg.TTL is the effective expiry for
// every entry. The catalog service writes all entries with a single TTL, so
// the approximation is exact in practice.
func NewSturdycCache(cfg Config) (*SturdycCache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var opts []sturdyc.Option
	if cfg.EvictionInterval > 0 {
		opts = append(opts, sturdyc.WithEvictionInterval(cfg.EvictionInterval))
	}

	client := sturdyc.New[[]byte](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		opts...,
	)

	return &SturdycCache{client: client}, nil
}

// Get returns the bytes stored under key, or cache.ErrCacheMiss when the
// entry is absent or has expired.
func (s *SturdycCache) Get(ctx context.Context, key string) ([]byte, error) {
	value, ok := s.client.Get(key)
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return value, nil
}

// Set stores value under key. See NewSturdycCache for how ttl is applied.
func (s *SturdycCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.client.Set(key, value)
	return nil
}

// Delete removes a single entry. Deleting an absent key is a no-op.
func (s *SturdycCache) Delete(ctx context.Context, key string) error {
	s.client.Delete(key)
	return nil
}

// DeleteByPrefix removes every entry whose key starts with prefix.
func (s *SturdycCache) DeleteByPrefix(ctx context.Context, prefix string) error {
	for _, key := range s.client.ScanKeys() {
		if strings.HasPrefix(key, prefix) {
			s.client.Delete(key)
		}
	}
	return nil
}

// Size reports the current number of entries, exposed for tests and
// diagnostics.
func (s *SturdycCache) Size() int {
	return s.client.Size()
}
