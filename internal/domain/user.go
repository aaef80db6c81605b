package domain

import "time"

type User struct {
	ID              int64     `db:"id"`
	Email           string    `db:"email"`
	Name            string    `db:"name"`
	ShippingAddress string    `db:"shipping_address"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}
