package handler

import (
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/imnamix/be-payplex/internal/repository"
	"github.com/imnamix/be-payplex/internal/service"
	"github.com/stretchr/testify/assert"
)

func TestStatusForError(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{service.ErrInvalidQuantity, fiber.StatusBadRequest},
		{service.ErrEmptyCart, fiber.StatusUnprocessableEntity},
		{service.ErrNotOrderOwner, fiber.StatusForbidden},
		{repository.ErrProductNotFound, fiber.StatusNotFound},
		{repository.ErrCartLineNotFound, fiber.StatusNotFound},
		{repository.ErrOrderNotFound, fiber.StatusNotFound},
		{repository.ErrInsufficientStock, fiber.StatusConflict},
		{repository.ErrProductNotPurchasable, fiber.StatusConflict},
		{repository.ErrSequencerUnavailable, fiber.StatusServiceUnavailable},
		{fmt.Errorf("boom"), fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusForError(tc.err), "error %v", tc.err)
	}
}

func TestStatusForError_Wrapped(t *testing.T) {
	err := fmt.Errorf("product 7: requested 3, available 1: %w", repository.ErrInsufficientStock)
	assert.Equal(t, fiber.StatusConflict, StatusForError(err))
}
