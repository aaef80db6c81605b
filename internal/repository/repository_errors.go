package repository

import "errors"

var (
	ErrProductNotFound       = errors.New("product not found")
	ErrProductNotPurchasable = errors.New("product not purchasable")
	ErrInsufficientStock     = errors.New("insufficient stock")
	ErrCartLineNotFound      = errors.New("cart line not found")
	ErrOrderNotFound         = errors.New("order not found")
	ErrUserNotFound          = errors.New("user not found")
	ErrSequencerUnavailable  = errors.New("order sequencer unavailable")
	ErrDuplicateCheckoutKey  = errors.New("duplicate checkout key")
)
