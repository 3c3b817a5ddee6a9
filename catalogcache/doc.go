// Package catalogcache implements the cache-aside service in front of the
// catalog stores.
//
// # Overview
//
// Service composes a CoffeeStore, an OrderStore and a byte-level Cache. Read
// operations check the cache first and fall back to the store on a miss,
// writing the loaded value back under a deterministic key with the
// configured TTL. Write operations pass through to the store and then evict
// the whole namespace, so the next read repopulates. Nothing here is
// intercepted or proxied: every cache decision is ordinary, visible code.
//
// # Read path
//
//  1. Derive the key: {namespace}::{operation}[::{argumentFingerprint}].
//  2. Cache.Get. A hit decodes and returns without touching the store.
//  3. A miss loads from the store (concurrent misses for the same key
//     collapse into one load), encodes, writes back with the TTL, returns.
//  4. An undecodable entry is evicted and treated as a miss.
//  5. Cache connectivity failures degrade to the store unless Strict is set.
//
// A value served from cache is at most TTL old relative to the last store
// state this service observed. Externally applied store mutations become
// visible after TTL expiry or an explicit Refresh, whichever comes first.
//
// # Empty results
//
// Empty lists and absent lookups are not written back by default, so a
// transient empty read cannot masquerade as a stable empty catalog. Set
// Config.CacheEmptyResults to cache them, trading that risk for protection
// against repeated lookups of names that do not exist.
//
// # Orders
//
// Orders are write-path only and never cached. UpdateOrderState is a silent
// no-op (false, nil) when the requested state equals the current one.
package catalogcache
