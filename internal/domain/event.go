package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventID on consumed events is the producer's outbox row id. It keys
// the processed_events dedup claim; zero means the envelope carried no
// id and the handler runs without one.
type UserRegisteredEvent struct {
	EventID         int64  `json:"event_id,omitempty"`
	UserID          int64  `json:"user_id"`
	Email           string `json:"email"`
	Name            string `json:"name"`
	ShippingAddress string `json:"shipping_address"`
}

type OrderCreatedEvent struct {
	OrderID     int64           `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	UserID      int64           `json:"user_id"`
	Total       decimal.Decimal `json:"total"`
	Items       []OrderItem     `json:"items"`
}

type OrderCancelledEvent struct {
	OrderID     int64       `json:"order_id"`
	OrderNumber string      `json:"order_number"`
	Items       []OrderItem `json:"items"`
}

type PaymentSucceededEvent struct {
	EventID   int64     `json:"event_id,omitempty"`
	OrderID   int64     `json:"order_id"`
	PaymentID int64     `json:"payment_id"`
	PaidAt    time.Time `json:"paid_at"`
}

type PaymentFailedEvent struct {
	EventID   int64     `json:"event_id,omitempty"`
	OrderID   int64     `json:"order_id"`
	PaymentID int64     `json:"payment_id"`
	FailedAt  time.Time `json:"failed_at"`
}
