package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductStatus string

const (
	ProductStatusActive       ProductStatus = "active"
	ProductStatusInactive     ProductStatus = "inactive"
	ProductStatusDiscontinued ProductStatus = "discontinued"
)

type Product struct {
	ID                int64           `db:"id"`
	SellerID          int64           `db:"seller_id"`
	Name              string          `db:"name"`
	Description       string          `db:"description"`
	Price             decimal.Decimal `db:"price"`
	AvailableQuantity int64           `db:"available_quantity"`
	Status            ProductStatus   `db:"status"`
	ImageUrl          string          `db:"image_url"`
	Category          string          `db:"category"`
	CreatedAt         time.Time       `db:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"`
	DeletedAt         time.Time       `db:"deleted_at" json:"-"`
}

// Purchasable reports whether the product can be added to a cart or
// checked out. Only active products are sellable.
func (p *Product) Purchasable() bool {
	return p.Status == ProductStatusActive
}

type UpdateProductInput struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Status      *ProductStatus   `json:"status"`
	ImageUrl    *string          `json:"image_url"`
	Category    *string          `json:"category"`
}
