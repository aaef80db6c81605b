package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine is one (user, product) row of a cart. The primary key on
// (user_id, product_id) guarantees at most one line per pair; adding
// the same product again merges quantities.
type CartLine struct {
	UserID    int64     `db:"user_id"`
	ProductID int64     `db:"product_id"`
	Quantity  int32     `db:"quantity"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// CartItem is a cart line joined with the live product row, as
// returned to clients and consumed by checkout.
type CartItem struct {
	ProductID   int64
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int32
	Available   int64
	Status      ProductStatus
}

type CartView struct {
	Items    []CartItem
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}
