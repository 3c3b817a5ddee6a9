package catalogcache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-catalog-cache/cache"
	"github.com/goliatone/go-catalog-cache/catalog"
)

// Operation names, namespaced into cache keys. A read with no arguments uses
// the operation name itself as its sentinel key.
const (
	OpListAll    = "ListAll"
	OpFindByName = "FindByName"
)

// Config tunes the cache-aside behavior of the Service.
type Config struct {
	// TTL bounds the staleness of every cached read. Default 5s.
	TTL time.Duration

	// Namespace prefixes every key this service writes, isolating it from
	// other users of the same Cache instance. Default "coffee".
	Namespace string

	// Strict propagates cache connectivity failures to the caller instead of
	// degrading to the store.
	Strict bool

	// CacheEmptyResults caches empty and absent results. Off by default so a
	// transient empty read is never mistaken for a stable empty catalog.
	CacheEmptyResults bool
}

func (c Config) withDefaults() Config {
	if c.TTL <= 0 {
		c.TTL = 5 * time.Second
	}
	if c.Namespace == "" {
		c.Namespace = "coffee"
	}
	return c
}

// Service is the cache-aside layer in front of the catalog stores. All
// cache-check, populate and evict logic is inline here; the stores never see
// the cache and the cache never sees the stores.
//
// The service holds no mutable state of its own beyond the single-flight
// group; shared state lives in the external Cache and the stores, and no
// lock is held across either of those calls.
type Service struct {
	coffees catalog.CoffeeStore
	orders  catalog.OrderStore
	store   cache.Cache
	codec   cache.Codec
	keys    cache.KeySerializer
	cfg     Config
	flight  singleflight.Group
}

// New wires a Service from its collaborators. The msgpack codec and the
// default key serializer are fixed; writers and readers of a namespace must
// agree on both.
func New(coffees catalog.CoffeeStore, orders catalog.OrderStore, store cache.Cache, cfg Config) *Service {
	return &Service{
		coffees: coffees,
		orders:  orders,
		store:   store,
		codec:   cache.NewMsgpackCodec(),
		keys:    cache.NewDefaultKeySerializer(),
		cfg:     cfg.withDefaults(),
	}
}

func (s *Service) key(operation string, args ...any) string {
	return s.cfg.Namespace + cache.KeySeparator + s.keys.SerializeKey(operation, args...)
}

// ListAll returns every coffee in the catalog, serving from cache within the
// TTL window.
func (s *Service) ListAll(ctx context.Context) ([]*catalog.Coffee, error) {
	key := s.key(OpListAll)
	return readThrough(ctx, s, key,
		func(coffees []*catalog.Coffee) bool {
			return len(coffees) > 0 || s.cfg.CacheEmptyResults
		},
		s.coffees.FindAll,
	)
}

// FindByName returns the coffee with the given name, or nil when no such
// coffee exists. The match is exact but case-insensitive, and the key is
// normalized so "Espresso" and "espresso" share one cache entry.
func (s *Service) FindByName(ctx context.Context, name string) (*catalog.Coffee, error) {
	key := s.key(OpFindByName, strings.ToLower(name))
	return readThrough(ctx, s, key,
		func(coffee *catalog.Coffee) bool {
			return coffee != nil || s.cfg.CacheEmptyResults
		},
		func(ctx context.Context) (*catalog.Coffee, error) {
			coffee, err := s.coffees.FindByName(ctx, name)
			if errors.Is(err, catalog.ErrNotFound) {
				return nil, nil
			}
			return coffee, err
		},
	)
}

// SaveCoffee persists the coffee and evicts the namespace so the next read
// repopulates from the store. Eviction-on-write keeps a single copy of the
// encoding logic at the cost of one extra store read per write.
//
// The store write commits before the eviction runs, so in strict mode a
// failed eviction is returned alongside the saved record rather than
// discarding its assigned identity.
func (s *Service) SaveCoffee(ctx context.Context, coffee *catalog.Coffee) (*catalog.Coffee, error) {
	saved, err := s.coffees.Save(ctx, coffee)
	if err != nil {
		return nil, err
	}
	if err := s.evictNamespace(ctx); err != nil {
		return saved, err
	}
	return saved, nil
}

// RemoveCoffee deletes the coffee and evicts the namespace.
func (s *Service) RemoveCoffee(ctx context.Context, id uuid.UUID) error {
	if err := s.coffees.DeleteByID(ctx, id); err != nil {
		return err
	}
	return s.evictNamespace(ctx)
}

// Invalidate evicts the single entry for the given operation and arguments,
// leaving the rest of the namespace intact. Invalidating an absent entry is a
// no-op.
func (s *Service) Invalidate(ctx context.Context, operation string, args ...any) error {
	key := s.key(operation, args...)
	if err := s.store.Delete(ctx, key); err != nil {
		if s.cfg.Strict {
			return err
		}
		glog.Warningf("catalogcache: invalidating %s failed: %v", key, err)
	}
	return nil
}

// Refresh drops every cached entry in the namespace without touching the
// store. Refreshing an already-empty namespace is a no-op.
func (s *Service) Refresh(ctx context.Context) error {
	glog.V(1).Infof("catalogcache: refreshing namespace %s", s.cfg.Namespace)
	return s.evictNamespace(ctx)
}

func (s *Service) evictNamespace(ctx context.Context) error {
	err := s.store.DeleteByPrefix(ctx, s.cfg.Namespace+cache.KeySeparator)
	if err != nil {
		if s.cfg.Strict {
			return err
		}
		// Entries we failed to evict still age out via TTL.
		glog.Warningf("catalogcache: namespace eviction failed: %v", err)
	}
	return nil
}

// CreateOrder persists a new order in the Init state.
func (s *Service) CreateOrder(ctx context.Context, customer string, items ...*catalog.Coffee) (*catalog.Order, error) {
	order := &catalog.Order{
		Customer: customer,
		State:    catalog.OrderInit,
		Items:    items,
	}
	saved, err := s.orders.Save(ctx, order)
	if err != nil {
		return nil, err
	}
	glog.Infof("catalogcache: new order %s for %q (%d items)", saved.ID, customer, len(items))
	return saved, nil
}

// UpdateOrderState moves the order to state and persists it. Requesting the
// state the order is already in is a silent no-op: it returns false without
// touching the store.
func (s *Service) UpdateOrderState(ctx context.Context, order *catalog.Order, state catalog.OrderState) (bool, error) {
	if !state.Valid() {
		return false, fmt.Errorf("catalogcache: unknown order state %d", int(state))
	}
	if order.State == state {
		glog.Warningf("catalogcache: order %s is already in state %s", order.ID, state)
		return false, nil
	}

	previous := order.State
	order.State = state
	if _, err := s.orders.Save(ctx, order); err != nil {
		order.State = previous
		return false, err
	}
	glog.Infof("catalogcache: order %s moved %s -> %s", order.ID, previous, state)
	return true, nil
}

// GetOrder fetches an order with its items from the store.
func (s *Service) GetOrder(ctx context.Context, id uuid.UUID) (*catalog.Order, error) {
	return s.orders.FindByID(ctx, id)
}

// readThrough is the cache-aside read path: one cache read per call, and on
// a miss at most one store load and one cache write. Concurrent misses for
// the same key collapse into a single load via the single-flight group.
//
// cacheable decides whether a loaded value is worth writing back; it gates
// the empty-result policy.
func readThrough[T any](ctx context.Context, s *Service, key string, cacheable func(T) bool, load func(context.Context) (T, error)) (T, error) {
	var zero T

	data, err := s.store.Get(ctx, key)
	switch {
	case err == nil:
		value, decErr := cache.Decode[T](s.codec, key, data)
		if decErr == nil {
			return value, nil
		}
		// Corrupted entry. Evict it and fall through to the store rather
		// than surfacing garbage; the next write replaces it wholesale.
		glog.Errorf("catalogcache: dropping undecodable entry %s: %v", key, decErr)
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			glog.Warningf("catalogcache: evicting corrupted entry %s failed: %v", key, delErr)
		}

	case errors.Is(err, cache.ErrCacheMiss):
		// Expected; load from the store below.

	default:
		if s.cfg.Strict {
			return zero, err
		}
		// The cache is unreachable: serve from the store and skip the
		// write-back, since it would fail the same way.
		glog.Warningf("catalogcache: cache read for %s failed, degrading to store: %v", key, err)
		return load(ctx)
	}

	// The shared load runs on the first caller's ctx. If that caller cancels
	// mid-flight, every collapsed waiter sees the cancellation error; the
	// next read starts a fresh flight.
	result, err, _ := s.flight.Do(key, func() (any, error) {
		value, err := load(ctx)
		if err != nil {
			return nil, err
		}

		if cacheable == nil || cacheable(value) {
			data, encErr := cache.Encode(s.codec, key, value)
			if encErr != nil {
				// An unencodable value is a schema bug, not a cache hiccup.
				return nil, encErr
			}
			if setErr := s.store.Set(ctx, key, data, s.cfg.TTL); setErr != nil {
				if s.cfg.Strict {
					return nil, setErr
				}
				glog.Warningf("catalogcache: cache write for %s failed: %v", key, setErr)
			}
		}
		return value, nil
	})
	if err != nil {
		return zero, err
	}

	value, ok := result.(T)
	if !ok {
		return zero, cache.ErrInvalidResultType
	}
	return value, nil
}
