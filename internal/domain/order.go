package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusShipped   OrderStatus = "shipped"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// Order is immutable once committed: items and totals are snapshots
// taken at checkout time and are never re-derived from live products.
// Only the status fields transition afterwards.
type Order struct {
	ID              int64           `db:"id"`
	Number          string          `db:"order_number"`
	UserID          int64           `db:"user_id"`
	Status          OrderStatus     `db:"status"`
	PaymentStatus   PaymentStatus   `db:"payment_status"`
	Items           []OrderItem     `db:"items"`
	Subtotal        decimal.Decimal `db:"subtotal"`
	Tax             decimal.Decimal `db:"tax"`
	Total           decimal.Decimal `db:"total"`
	ShippingAddress string          `db:"shipping_address"`
	CheckoutKey     *string         `db:"checkout_key"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

type OrderItem struct {
	ID          int64           `db:"id"`
	OrderID     int64           `db:"order_id"`
	ProductID   int64           `db:"product_id"`
	ProductName string          `db:"product_name"`
	UnitPrice   decimal.Decimal `db:"unit_price"`
	Quantity    int32           `db:"quantity"`
	Subtotal    decimal.Decimal `db:"subtotal"`
}
