package catalog

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Money is a monetary amount in exact minor units (cents). Prices are never
// represented as floating point.
type Money int64

// String formats the amount in major units, e.g. Money(125) -> "1.25".
func (m Money) String() string {
	sign := ""
	if m < 0 {
		sign = "-"
		m = -m
	}
	return fmt.Sprintf("%s%d.%02d", sign, m/100, m%100)
}

// Coffee is a priced catalog item. Identity is immutable once assigned; name
// and price may change, with the store as sole source of truth.
type Coffee struct {
	bun.BaseModel `bun:"table:t_coffee,alias:c" msgpack:"-"`

	ID        uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Name      string    `bun:"name,notnull,unique" json:"name"`
	Price     Money     `bun:"price,notnull" json:"price"`
	CreatedAt time.Time `bun:"create_time,notnull" json:"create_time"`
	UpdatedAt time.Time `bun:"update_time,notnull" json:"update_time"`
}

// Validate checks the invariants a coffee must satisfy before it is saved.
func (c *Coffee) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Name, validation.Required, validation.Length(1, 128)),
		validation.Field(&c.Price, validation.Min(Money(0))),
	)
}

// OrderState tracks an order through its lifecycle.
type OrderState int

const (
	OrderInit OrderState = iota
	OrderPaid
	OrderBrewing
	OrderBrewed
	OrderTaken
	OrderCancelled
)

var orderStateNames = map[OrderState]string{
	OrderInit:      "INIT",
	OrderPaid:      "PAID",
	OrderBrewing:   "BREWING",
	OrderBrewed:    "BREWED",
	OrderTaken:     "TAKEN",
	OrderCancelled: "CANCELLED",
}

func (s OrderState) String() string {
	if name, ok := orderStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("OrderState(%d)", int(s))
}

// Valid reports whether s is a known state.
func (s OrderState) Valid() bool {
	_, ok := orderStateNames[s]
	return ok
}

// Order is a customer order referencing catalog items.
type Order struct {
	bun.BaseModel `bun:"table:t_order,alias:o" msgpack:"-"`

	ID        uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	Customer  string     `bun:"customer,notnull" json:"customer"`
	State     OrderState `bun:"state,notnull" json:"state"`
	Items     []*Coffee  `bun:"m2m:t_order_coffee,join:Order=Coffee" json:"items"`
	CreatedAt time.Time  `bun:"create_time,notnull" json:"create_time"`
	UpdatedAt time.Time  `bun:"update_time,notnull" json:"update_time"`
}

// Validate checks the invariants an order must satisfy before it is saved.
func (o *Order) Validate() error {
	return validation.ValidateStruct(o,
		validation.Field(&o.Customer, validation.Required, validation.Length(1, 128)),
		validation.Field(&o.Items, validation.Required),
	)
}

// OrderCoffee is the join table row linking orders to their items.
type OrderCoffee struct {
	bun.BaseModel `bun:"table:t_order_coffee" msgpack:"-"`

	OrderID  uuid.UUID `bun:"order_id,pk,type:uuid"`
	Order    *Order    `bun:"rel:belongs-to,join:order_id=id"`
	CoffeeID uuid.UUID `bun:"coffee_id,pk,type:uuid"`
	Coffee   *Coffee   `bun:"rel:belongs-to,join:coffee_id=id"`
}
