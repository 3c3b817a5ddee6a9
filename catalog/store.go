package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a record does not exist. Read paths surface it
// to callers as an absent result, not as a request failure.
var ErrNotFound = errors.New("catalog: record not found")

// ErrConflict is returned when a save violates a storage constraint, such as
// a duplicate coffee name.
var ErrConflict = errors.New("catalog: constraint violation")

// CoffeeStore is the durable source of truth for catalog items. Every method
// issues at most one storage round trip.
type CoffeeStore interface {
	// FindAll returns all coffees ordered by name.
	FindAll(ctx context.Context) ([]*Coffee, error)

	// FindByName returns the coffee with the given name. The match is exact
	// but case-insensitive. Returns ErrNotFound when absent.
	FindByName(ctx context.Context, name string) (*Coffee, error)

	// Save inserts the coffee when its ID is unset and updates it otherwise.
	// Returns ErrConflict on constraint violations and ErrNotFound when
	// updating a record that no longer exists.
	Save(ctx context.Context, coffee *Coffee) (*Coffee, error)

	// DeleteByID removes a coffee. Returns ErrNotFound for unknown ids.
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

// OrderStore is the durable source of truth for orders.
type OrderStore interface {
	// Save inserts the order (with its item links) when its ID is unset and
	// updates the order row otherwise.
	Save(ctx context.Context, order *Order) (*Order, error)

	// FindByID returns the order with its items. Returns ErrNotFound when
	// absent.
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
}
