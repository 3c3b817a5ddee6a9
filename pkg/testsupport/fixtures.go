package testsupport

import (
	"context"
	"database/sql"
	"testing"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-catalog-cache/catalog"

	_ "github.com/mattn/go-sqlite3"
)

// NewTestDB opens a private in-memory sqlite database with the catalog
// schema created, and closes it when the test finishes.
func NewTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open("sqlite3", "file::memory:?_fk=1")
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	// A single connection keeps the in-memory database alive and serializes
	// access, which is all the tests need.
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	if err := catalog.CreateSchema(context.Background(), db); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	return db
}

// DefaultMenu returns the canonical five-coffee menu used across the tests,
// prices in minor units.
func DefaultMenu() []*catalog.Coffee {
	return []*catalog.Coffee{
		{Name: "espresso", Price: catalog.Money(100)},
		{Name: "latte", Price: catalog.Money(125)},
		{Name: "capuccino", Price: catalog.Money(125)},
		{Name: "mocha", Price: catalog.Money(150)},
		{Name: "macchiato", Price: catalog.Money(150)},
	}
}

// SeedMenu saves the default menu through the store and returns the saved
// records with their assigned ids.
func SeedMenu(t *testing.T, store catalog.CoffeeStore) []*catalog.Coffee {
	t.Helper()

	menu := DefaultMenu()
	for i, coffee := range menu {
		saved, err := store.Save(context.Background(), coffee)
		if err != nil {
			t.Fatalf("failed to seed coffee %q: %v", coffee.Name, err)
		}
		menu[i] = saved
	}
	return menu
}
