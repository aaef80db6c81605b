package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/imnamix/be-payplex/internal/service"
	"github.com/imnamix/be-payplex/pkg/utils"
	"go.uber.org/zap"
)

type CartHandler struct {
	cartService service.CartService
	validate    *validator.Validate
	logger      *zap.Logger
}

func NewCartHandler(cartService service.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		validate:    validator.New(),
		logger:      logger,
	}
}

type cartLineInput struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int32 `json:"quantity" validate:"required,gt=0"`
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(int64)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "userId parsing error"})
	}

	input := new(cartLineInput)
	if err := c.BodyParser(input); err != nil {
		h.logger.Warn("failed to parse body in cart add", zap.Error(err))

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "error parsing body"})
	}

	if err := h.validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": utils.FormatValidationError(err)})
	}

	view, err := h.cartService.AddToCart(c.UserContext(), userID, input.ProductID, input.Quantity)
	if err != nil {
		return respondServiceError(c, h.logger, "add to cart failed", err)
	}

	return c.Status(fiber.StatusOK).JSON(cartViewResponse(view))
}

func (h *CartHandler) UpdateQuantity(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(int64)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "userId parsing error"})
	}

	productID, err := c.ParamsInt("productId")
	if err != nil || productID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}

	input := new(struct {
		Quantity int32 `json:"quantity" validate:"required,gt=0"`
	})
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "error parsing body"})
	}

	if err := h.validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": utils.FormatValidationError(err)})
	}

	view, err := h.cartService.UpdateQuantity(c.UserContext(), userID, int64(productID), input.Quantity)
	if err != nil {
		return respondServiceError(c, h.logger, "update cart quantity failed", err)
	}

	return c.Status(fiber.StatusOK).JSON(cartViewResponse(view))
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(int64)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "userId parsing error"})
	}

	productID, err := c.ParamsInt("productId")
	if err != nil || productID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}

	view, err := h.cartService.RemoveFromCart(c.UserContext(), userID, int64(productID))
	if err != nil {
		return respondServiceError(c, h.logger, "remove from cart failed", err)
	}

	return c.Status(fiber.StatusOK).JSON(cartViewResponse(view))
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(int64)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "userId parsing error"})
	}

	if err := h.cartService.ClearCart(c.UserContext(), userID); err != nil {
		return respondServiceError(c, h.logger, "clear cart failed", err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CartHandler) Get(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(int64)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "userId parsing error"})
	}

	view, err := h.cartService.GetCart(c.UserContext(), userID)
	if err != nil {
		return respondServiceError(c, h.logger, "get cart failed", err)
	}

	return c.Status(fiber.StatusOK).JSON(cartViewResponse(view))
}
