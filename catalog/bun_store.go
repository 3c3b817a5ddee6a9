package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
)

var (
	_ CoffeeStore = (*BunCoffeeStore)(nil)
	_ OrderStore  = (*BunOrderStore)(nil)
)

// BunCoffeeStore implements CoffeeStore against a bun-managed database
// (sqlite or postgres, chosen by the dialect the *bun.DB was opened with).
type BunCoffeeStore struct {
	db *bun.DB
}

// NewBunCoffeeStore creates a coffee store backed by db.
func NewBunCoffeeStore(db *bun.DB) *BunCoffeeStore {
	return &BunCoffeeStore{db: db}
}

// FindAll returns all coffees ordered by name.
func (s *BunCoffeeStore) FindAll(ctx context.Context) ([]*Coffee, error) {
	var coffees []*Coffee
	if err := s.db.NewSelect().Model(&coffees).Order("name ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("catalog: find all coffees: %w", err)
	}
	return coffees, nil
}

// FindByName returns the coffee matching name, case-insensitively.
func (s *BunCoffeeStore) FindByName(ctx context.Context, name string) (*Coffee, error) {
	coffee := new(Coffee)
	err := s.db.NewSelect().
		Model(coffee).
		Where("lower(name) = lower(?)", name).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("catalog: find coffee by name: %w", err)
	}
	return coffee, nil
}

// Save inserts the coffee when its ID is unset and updates it otherwise.
func (s *BunCoffeeStore) Save(ctx context.Context, coffee *Coffee) (*Coffee, error) {
	if err := coffee.Validate(); err != nil {
		return nil, fmt.Errorf("catalog: invalid coffee: %w", err)
	}

	now := time.Now()
	coffee.UpdatedAt = now

	if coffee.ID == uuid.Nil {
		coffee.ID = uuid.New()
		coffee.CreatedAt = now
		if _, err := s.db.NewInsert().Model(coffee).Exec(ctx); err != nil {
			if isConstraintViolation(err) {
				return nil, fmt.Errorf("%w: coffee %q", ErrConflict, coffee.Name)
			}
			return nil, fmt.Errorf("catalog: insert coffee: %w", err)
		}
		return coffee, nil
	}

	res, err := s.db.NewUpdate().Model(coffee).WherePK().Exec(ctx)
	if err != nil {
		if isConstraintViolation(err) {
			return nil, fmt.Errorf("%w: coffee %q", ErrConflict, coffee.Name)
		}
		return nil, fmt.Errorf("catalog: update coffee: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, ErrNotFound
	}
	return coffee, nil
}

// DeleteByID removes a coffee by id.
func (s *BunCoffeeStore) DeleteByID(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.NewDelete().
		Model((*Coffee)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("catalog: delete coffee: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

// BunOrderStore implements OrderStore against a bun-managed database.
type BunOrderStore struct {
	db *bun.DB
}

// NewBunOrderStore creates an order store backed by db. The m2m join model
// must be registered before any relation query runs.
func NewBunOrderStore(db *bun.DB) *BunOrderStore {
	db.RegisterModel((*OrderCoffee)(nil))
	return &BunOrderStore{db: db}
}

// Save inserts the order and its item links when its ID is unset, and
// updates the order row otherwise. Item links are immutable after creation.
func (s *BunOrderStore) Save(ctx context.Context, order *Order) (*Order, error) {
	if err := order.Validate(); err != nil {
		return nil, fmt.Errorf("catalog: invalid order: %w", err)
	}

	now := time.Now()
	order.UpdatedAt = now

	if order.ID != uuid.Nil {
		res, err := s.db.NewUpdate().Model(order).WherePK().Exec(ctx)
		if err != nil {
			return nil, fmt.Errorf("catalog: update order: %w", err)
		}
		if affected, err := res.RowsAffected(); err == nil && affected == 0 {
			return nil, ErrNotFound
		}
		return order, nil
	}

	order.ID = uuid.New()
	order.CreatedAt = now

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(order).Exec(ctx); err != nil {
			return err
		}

		links := make([]*OrderCoffee, 0, len(order.Items))
		for _, item := range order.Items {
			links = append(links, &OrderCoffee{OrderID: order.ID, CoffeeID: item.ID})
		}
		_, err := tx.NewInsert().Model(&links).Exec(ctx)
		return err
	})
	if err != nil {
		if isConstraintViolation(err) {
			return nil, fmt.Errorf("%w: order for %q", ErrConflict, order.Customer)
		}
		return nil, fmt.Errorf("catalog: insert order: %w", err)
	}
	return order, nil
}

// FindByID returns the order with its items loaded.
func (s *BunOrderStore) FindByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	order := new(Order)
	err := s.db.NewSelect().
		Model(order).
		Relation("Items").
		Where("o.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("catalog: find order: %w", err)
	}
	return order, nil
}

// CreateSchema creates the catalog tables when they do not exist yet. Meant
// for the demo and for tests; production deployments manage migrations
// elsewhere.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	db.RegisterModel((*OrderCoffee)(nil))

	models := []any{
		(*Coffee)(nil),
		(*Order)(nil),
		(*OrderCoffee)(nil),
	}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("catalog: create schema: %w", err)
		}
	}
	return nil
}

// isConstraintViolation detects unique/constraint failures for the drivers
// the store supports.
func isConstraintViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// 23xxx is the integrity constraint violation class.
		return len(pqErr.Code) >= 2 && pqErr.Code[:2] == "23"
	}
	return false
}
