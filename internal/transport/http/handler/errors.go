package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/imnamix/be-payplex/internal/repository"
	"github.com/imnamix/be-payplex/internal/service"
	"go.uber.org/zap"
)

// StatusForError maps domain errors onto HTTP codes, playing the role
// a gRPC code mapping would play in a multi-service deployment.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidQuantity):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrEmptyCart):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, service.ErrNotOrderOwner):
		return fiber.StatusForbidden
	case errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, repository.ErrCartLineNotFound),
		errors.Is(err, repository.ErrOrderNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, repository.ErrInsufficientStock),
		errors.Is(err, repository.ErrProductNotPurchasable):
		return fiber.StatusConflict
	case errors.Is(err, repository.ErrSequencerUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func respondServiceError(c *fiber.Ctx, logger *zap.Logger, msg string, err error) error {
	status := StatusForError(err)

	logger.Warn(
		msg,
		zap.Int("http_code", status),
		zap.Error(err),
	)

	if status == fiber.StatusInternalServerError {
		return c.Status(status).JSON(fiber.Map{"error": "internal error"})
	}

	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
