package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/imnamix/be-payplex/internal/service"
	"github.com/imnamix/be-payplex/pkg/utils"
	"go.uber.org/zap"
)

type UserHandler struct {
	userService service.UserService
	validate    *validator.Validate
	logger      *zap.Logger
}

func NewUserHandler(userService service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		validate:    validator.New(),
		logger:      logger,
	}
}

func (h *UserHandler) GetMe(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(int64)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "userId parsing error"})
	}

	user, err := h.userService.GetMe(c.UserContext(), userID)
	if err != nil {
		return respondServiceError(c, h.logger, "get me failed", err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"id":               user.ID,
		"email":            user.Email,
		"name":             user.Name,
		"shipping_address": user.ShippingAddress,
	})
}

func (h *UserHandler) UpdateShippingAddress(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(int64)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "userId parsing error"})
	}

	input := new(struct {
		ShippingAddress string `json:"shipping_address" validate:"required,min=3"`
	})
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "error parsing body"})
	}

	if err := h.validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": utils.FormatValidationError(err)})
	}

	if err := h.userService.UpdateShippingAddress(c.UserContext(), userID, input.ShippingAddress); err != nil {
		return respondServiceError(c, h.logger, "update shipping address failed", err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
