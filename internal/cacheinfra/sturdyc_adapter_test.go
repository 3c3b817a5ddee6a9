package cacheinfra

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-catalog-cache/cache"
)

func testConfig() Config {
	return Config{
		Capacity:           100,
		NumShards:          4,
		TTL:                time.Minute,
		EvictionPercentage: 10,
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zero capacity", func(c *Config) { c.Capacity = 0 }, "Capacity"},
		{"negative capacity", func(c *Config) { c.Capacity = -1 }, "Capacity"},
		{"zero shards", func(c *Config) { c.NumShards = 0 }, "NumShards"},
		{"zero ttl", func(c *Config) { c.TTL = 0 }, "TTL"},
		{"eviction percentage too low", func(c *Config) { c.EvictionPercentage = 0 }, "EvictionPercentage"},
		{"eviction percentage too high", func(c *Config) { c.EvictionPercentage = 101 }, "EvictionPercentage"},
		{"negative eviction interval", func(c *Config) { c.EvictionInterval = -time.Second }, "EvictionInterval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}

			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigError, got %T", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("expected error on field %s, got %s", tt.field, cfgErr.Field)
			}
		})
	}

	if err := testConfig().Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config rejected: %v", err)
	}
}

func TestNewSturdycCache_RejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Capacity = 0

	if _, err := NewSturdycCache(cfg); err == nil {
		t.Fatal("expected constructor to reject invalid config")
	}
}

func TestSturdycCache_SetGetDelete(t *testing.T) {
	store, err := NewSturdycCache(testConfig())
	if err != nil {
		t.Fatalf("failed to build cache: %v", err)
	}
	ctx := context.Background()

	if _, err := store.Get(ctx, "coffee::ListAll"); !errors.Is(err, cache.ErrCacheMiss) {
		t.Fatalf("expected miss on empty cache, got %v", err)
	}

	value := []byte("payload")
	if err := store.Set(ctx, "coffee::ListAll", value, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	got, err := store.Get(ctx, "coffee::ListAll")
	if err != nil {
		t.Fatalf("get after set failed: %v", err)
	}
	if string(got) != "payload" {
		t.Errorf("got %q, want %q", got, value)
	}

	if err := store.Delete(ctx, "coffee::ListAll"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := store.Get(ctx, "coffee::ListAll"); !errors.Is(err, cache.ErrCacheMiss) {
		t.Fatalf("expected miss after delete, got %v", err)
	}

	// Deleting an absent key is a silent no-op.
	if err := store.Delete(ctx, "coffee::ListAll"); err != nil {
		t.Errorf("double delete should be a no-op, got %v", err)
	}
}

func TestSturdycCache_DeleteByPrefix(t *testing.T) {
	store, err := NewSturdycCache(testConfig())
	if err != nil {
		t.Fatalf("failed to build cache: %v", err)
	}
	ctx := context.Background()

	entries := map[string]string{
		"coffee::ListAll":              "a",
		"coffee::FindByName::espresso": "b",
		"coffee::FindByName::latte":    "c",
		"orders::FindByID::1234abcd":   "d",
		"orders::FindByID::5678efgh":   "e",
	}
	for key, value := range entries {
		if err := store.Set(ctx, key, []byte(value), time.Minute); err != nil {
			t.Fatalf("set %s failed: %v", key, err)
		}
	}

	if err := store.DeleteByPrefix(ctx, "coffee::"); err != nil {
		t.Fatalf("delete by prefix failed: %v", err)
	}

	for key := range entries {
		_, err := store.Get(ctx, key)
		isCoffee := len(key) >= 8 && key[:8] == "coffee::"
		if isCoffee && !errors.Is(err, cache.ErrCacheMiss) {
			t.Errorf("expected %s to be evicted, got %v", key, err)
		}
		if !isCoffee && err != nil {
			t.Errorf("expected %s to survive, got %v", key, err)
		}
	}
}

func TestSturdycCache_TTLExpiry(t *testing.T) {
	cfg := testConfig()
	cfg.TTL = 100 * time.Millisecond
	cfg.EvictionInterval = 50 * time.Millisecond

	store, err := NewSturdycCache(cfg)
	if err != nil {
		t.Fatalf("failed to build cache: %v", err)
	}
	ctx := context.Background()

	if err := store.Set(ctx, "coffee::ListAll", []byte("payload"), cfg.TTL); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if _, err := store.Get(ctx, "coffee::ListAll"); err != nil {
		t.Fatalf("get inside TTL window failed: %v", err)
	}

	time.Sleep(250 * time.Millisecond)

	if _, err := store.Get(ctx, "coffee::ListAll"); !errors.Is(err, cache.ErrCacheMiss) {
		t.Fatalf("expected miss after TTL expiry, got %v", err)
	}
}
