package di

import (
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-catalog-cache/cache"
	"github.com/goliatone/go-catalog-cache/catalog"
	"github.com/goliatone/go-catalog-cache/catalogcache"
	"github.com/goliatone/go-catalog-cache/internal/cacheinfra"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Database drivers and cache backends the container can wire.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	BackendMemory   = "memory"
	BackendMemcache = "memcache"
)

// DatabaseConfig selects the durable store.
type DatabaseConfig struct {
	Driver string
	DSN    string
}

// CacheConfig selects the cache substrate. Memory is in-process (sturdyc);
// Memcache points at one shared external instance so invalidation is visible
// to every process using it.
type CacheConfig struct {
	Backend  string
	Memory   cacheinfra.Config
	Memcache []string
}

// Config is the full wiring configuration for a Container.
type Config struct {
	Database DatabaseConfig
	Cache    CacheConfig
	Service  catalogcache.Config
}

// DefaultConfig wires an in-memory sqlite store with the in-process cache,
// the configuration the demo and the tests run with.
func DefaultConfig() Config {
	return Config{
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			DSN:    "file::memory:?cache=shared",
		},
		Cache: CacheConfig{
			Backend: BackendMemory,
			Memory:  cacheinfra.DefaultConfig(),
		},
	}
}

// Container owns the explicitly constructed dependencies of the service:
// the database handle, the cache handle and the stores. Connect at startup
// via NewContainer, release via Close.
type Container struct {
	db      *bun.DB
	cache   cache.Cache
	coffees catalog.CoffeeStore
	orders  catalog.OrderStore
	service *catalogcache.Service
}

// NewContainer opens the database, builds the configured cache backend and
// wires the catalog service on top of both.
func NewContainer(cfg Config) (*Container, error) {
	db, err := openDB(cfg.Database)
	if err != nil {
		return nil, err
	}

	store, err := newCache(cfg.Cache)
	if err != nil {
		db.Close()
		return nil, err
	}

	coffees := catalog.NewBunCoffeeStore(db)
	orders := catalog.NewBunOrderStore(db)

	return &Container{
		db:      db,
		cache:   store,
		coffees: coffees,
		orders:  orders,
		service: catalogcache.New(coffees, orders, store, cfg.Service),
	}, nil
}

// NewContainerWithDefaults builds a container from DefaultConfig.
func NewContainerWithDefaults() (*Container, error) {
	return NewContainer(DefaultConfig())
}

func openDB(cfg DatabaseConfig) (*bun.DB, error) {
	switch cfg.Driver {
	case DriverSQLite, "":
		dsn := cfg.DSN
		if dsn == "" {
			dsn = "file::memory:?cache=shared"
		}
		sqldb, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("di: open sqlite: %w", err)
		}
		// Shared-cache in-memory databases vanish when the last connection
		// closes; keep connections alive for the container's lifetime.
		sqldb.SetMaxIdleConns(1000)
		sqldb.SetConnMaxLifetime(0)
		return bun.NewDB(sqldb, sqlitedialect.New()), nil

	case DriverPostgres:
		sqldb, err := sql.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("di: open postgres: %w", err)
		}
		return bun.NewDB(sqldb, pgdialect.New()), nil

	default:
		return nil, fmt.Errorf("di: unknown database driver %q", cfg.Driver)
	}
}

func newCache(cfg CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case BackendMemory, "":
		return cacheinfra.NewSturdycCache(cfg.Memory)

	case BackendMemcache:
		if len(cfg.Memcache) == 0 {
			return nil, fmt.Errorf("di: memcache backend requires at least one server address")
		}
		return cacheinfra.NewMemcacheCache(cfg.Memcache...), nil

	default:
		return nil, fmt.Errorf("di: unknown cache backend %q", cfg.Backend)
	}
}

// Service returns the wired cache-aside catalog service.
func (c *Container) Service() *catalogcache.Service {
	return c.service
}

// DB exposes the database handle for schema bootstrap and tests.
func (c *Container) DB() *bun.DB {
	return c.db
}

// Cache exposes the cache handle for diagnostics and tests.
func (c *Container) Cache() cache.Cache {
	return c.cache
}

// CoffeeStore exposes the uncached store, useful for observing cache hits
// versus misses in tests.
func (c *Container) CoffeeStore() catalog.CoffeeStore {
	return c.coffees
}

// Close releases the database handle.
func (c *Container) Close() error {
	return c.db.Close()
}
