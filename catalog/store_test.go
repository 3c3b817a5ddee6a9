package catalog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/goliatone/go-catalog-cache/catalog"
	"github.com/goliatone/go-catalog-cache/pkg/testsupport"
)

func TestCoffeeStore_FindAll(t *testing.T) {
	db := testsupport.NewTestDB(t)
	store := catalog.NewBunCoffeeStore(db)
	testsupport.SeedMenu(t, store)

	coffees, err := store.FindAll(context.Background())
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if len(coffees) != 5 {
		t.Fatalf("expected 5 coffees, got %d", len(coffees))
	}

	wantOrder := []string{"capuccino", "espresso", "latte", "macchiato", "mocha"}
	for i, coffee := range coffees {
		if coffee.Name != wantOrder[i] {
			t.Errorf("position %d: got %q, want %q", i, coffee.Name, wantOrder[i])
		}
	}
}

func TestCoffeeStore_FindByName(t *testing.T) {
	db := testsupport.NewTestDB(t)
	store := catalog.NewBunCoffeeStore(db)
	testsupport.SeedMenu(t, store)

	// The match is exact but case-insensitive.
	for _, name := range []string{"espresso", "Espresso", "ESPRESSO"} {
		coffee, err := store.FindByName(context.Background(), name)
		if err != nil {
			t.Fatalf("FindByName(%q) failed: %v", name, err)
		}
		if coffee.Name != "espresso" {
			t.Errorf("FindByName(%q) returned %q", name, coffee.Name)
		}
		if coffee.Price != catalog.Money(100) {
			t.Errorf("espresso price: got %s, want 1.00", coffee.Price)
		}
	}

	// Prefixes must not match.
	if _, err := store.FindByName(context.Background(), "espress"); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("expected ErrNotFound for partial name, got %v", err)
	}
}

func TestCoffeeStore_Save(t *testing.T) {
	db := testsupport.NewTestDB(t)
	store := catalog.NewBunCoffeeStore(db)
	ctx := context.Background()

	saved, err := store.Save(ctx, &catalog.Coffee{Name: "flat-white", Price: catalog.Money(175)})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if saved.ID == uuid.Nil {
		t.Error("expected an assigned id")
	}
	if saved.CreatedAt.IsZero() || saved.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}

	// Updates reuse the assigned identity.
	saved.Price = catalog.Money(200)
	updated, err := store.Save(ctx, saved)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.ID != saved.ID {
		t.Errorf("update changed identity: %s vs %s", updated.ID, saved.ID)
	}

	fetched, err := store.FindByName(ctx, "flat-white")
	if err != nil {
		t.Fatalf("FindByName after update failed: %v", err)
	}
	if fetched.Price != catalog.Money(200) {
		t.Errorf("update not persisted: got %s", fetched.Price)
	}
}

func TestCoffeeStore_Save_DuplicateName(t *testing.T) {
	db := testsupport.NewTestDB(t)
	store := catalog.NewBunCoffeeStore(db)
	testsupport.SeedMenu(t, store)

	_, err := store.Save(context.Background(), &catalog.Coffee{Name: "espresso", Price: catalog.Money(90)})
	if !errors.Is(err, catalog.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate name, got %v", err)
	}
}

func TestCoffeeStore_Save_ValidatesRecord(t *testing.T) {
	db := testsupport.NewTestDB(t)
	store := catalog.NewBunCoffeeStore(db)

	if _, err := store.Save(context.Background(), &catalog.Coffee{Price: catalog.Money(100)}); err == nil {
		t.Error("expected a nameless coffee to be rejected")
	}
	if _, err := store.Save(context.Background(), &catalog.Coffee{Name: "gratis", Price: catalog.Money(-1)}); err == nil {
		t.Error("expected a negative price to be rejected")
	}
}

func TestCoffeeStore_Save_UpdateMissing(t *testing.T) {
	db := testsupport.NewTestDB(t)
	store := catalog.NewBunCoffeeStore(db)

	ghost := &catalog.Coffee{ID: uuid.New(), Name: "ghost", Price: catalog.Money(100)}
	if _, err := store.Save(context.Background(), ghost); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound updating a missing record, got %v", err)
	}
}

func TestCoffeeStore_DeleteByID(t *testing.T) {
	db := testsupport.NewTestDB(t)
	store := catalog.NewBunCoffeeStore(db)
	menu := testsupport.SeedMenu(t, store)
	ctx := context.Background()

	if err := store.DeleteByID(ctx, menu[0].ID); err != nil {
		t.Fatalf("DeleteByID failed: %v", err)
	}
	if _, err := store.FindByName(ctx, menu[0].Name); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("expected deleted coffee to be gone, got %v", err)
	}

	// Deleting a nonexistent id is an error, unlike cache eviction.
	if err := store.DeleteByID(ctx, uuid.New()); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown id, got %v", err)
	}
}

func TestOrderStore_SaveAndFindByID(t *testing.T) {
	db := testsupport.NewTestDB(t)
	coffees := catalog.NewBunCoffeeStore(db)
	orders := catalog.NewBunOrderStore(db)
	menu := testsupport.SeedMenu(t, coffees)
	ctx := context.Background()

	saved, err := orders.Save(ctx, &catalog.Order{
		Customer: "Li Lei",
		State:    catalog.OrderInit,
		Items:    []*catalog.Coffee{menu[0], menu[1]},
	})
	if err != nil {
		t.Fatalf("Save order failed: %v", err)
	}
	if saved.ID == uuid.Nil {
		t.Fatal("expected an assigned order id")
	}

	fetched, err := orders.FindByID(ctx, saved.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if fetched.Customer != "Li Lei" {
		t.Errorf("customer: got %q", fetched.Customer)
	}
	if fetched.State != catalog.OrderInit {
		t.Errorf("state: got %s, want INIT", fetched.State)
	}
	if len(fetched.Items) != 2 {
		t.Errorf("expected 2 items, got %d", len(fetched.Items))
	}
}

func TestOrderStore_UpdatePersistsState(t *testing.T) {
	db := testsupport.NewTestDB(t)
	coffees := catalog.NewBunCoffeeStore(db)
	orders := catalog.NewBunOrderStore(db)
	menu := testsupport.SeedMenu(t, coffees)
	ctx := context.Background()

	saved, err := orders.Save(ctx, &catalog.Order{
		Customer: "Han Meimei",
		State:    catalog.OrderInit,
		Items:    []*catalog.Coffee{menu[2]},
	})
	if err != nil {
		t.Fatalf("Save order failed: %v", err)
	}

	saved.State = catalog.OrderPaid
	if _, err := orders.Save(ctx, saved); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	fetched, err := orders.FindByID(ctx, saved.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if fetched.State != catalog.OrderPaid {
		t.Errorf("state not persisted: got %s, want PAID", fetched.State)
	}
}

func TestOrderStore_FindByID_Missing(t *testing.T) {
	db := testsupport.NewTestDB(t)
	orders := catalog.NewBunOrderStore(db)

	if _, err := orders.FindByID(context.Background(), uuid.New()); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOrderStore_RejectsEmptyOrder(t *testing.T) {
	db := testsupport.NewTestDB(t)
	orders := catalog.NewBunOrderStore(db)

	if _, err := orders.Save(context.Background(), &catalog.Order{Customer: "Li Lei"}); err == nil {
		t.Error("expected an order without items to be rejected")
	}
	if _, err := orders.Save(context.Background(), &catalog.Order{Items: []*catalog.Coffee{{}}}); err == nil {
		t.Error("expected an order without customer to be rejected")
	}
}
