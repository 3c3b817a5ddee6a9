// Package cache defines the contracts shared by every cache backend: the
// byte-level Cache store, the Codec used to serialize entries, and the
// KeySerializer that derives deterministic keys from operation arguments.
//
// # Key layout
//
// Keys follow the layout
//
//	{namespace}::{operation}[::{argumentFingerprint}]
//
// The namespace isolates cached operations that share one Cache instance.
// An operation invoked without arguments maps to a fixed sentinel key (the
// operation name); argument tuples serialize deterministically, so two calls
// with structurally equal arguments always produce the same key. Oversized
// argument strings collapse into an xxhash fingerprint to stay within the
// key limits of external substrates such as memcached.
//
// # Entry lifecycle
//
// An entry is created by a miss-then-load write, and destroyed either by the
// substrate's own TTL expiry or by explicit Delete/DeleteByPrefix. Entries
// are never mutated in place; a fresh load replaces them wholesale.
//
// # Errors
//
//   - ErrCacheMiss: expected absence, callers load from the source of truth.
//   - ErrCacheUnavailable: connectivity loss; callers choose between
//     degrading to the source of truth and failing the request.
//   - SerializationError: schema mismatch between writer and reader of an
//     entry; the entry must be evicted, never returned corrupted.
//
// Concrete backends live in internal/cacheinfra; the read-through service
// composing them with a store lives in catalogcache.
package cache
