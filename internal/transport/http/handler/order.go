package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/imnamix/be-payplex/internal/service"
	"github.com/imnamix/be-payplex/pkg/mylogger"
	"go.uber.org/zap"
)

type OrderHandler struct {
	checkoutService service.CheckoutService
	orderService    service.OrderService
	logger          *zap.Logger
}

func NewOrderHandler(
	checkoutService service.CheckoutService,
	orderService service.OrderService,
	logger *zap.Logger,
) *OrderHandler {
	return &OrderHandler{
		checkoutService: checkoutService,
		orderService:    orderService,
		logger:          logger,
	}
}

// Checkout commits the caller's cart into an order. An optional
// Idempotency-Key header (UUID) makes a retry of the same attempt
// return the already committed order instead of charging twice.
func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(int64)
	if !ok {
		mylogger.Info(c.UserContext(), h.logger, "user_id get failed")

		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "userId parsing error"})
	}

	checkoutKey := c.Get("Idempotency-Key")
	if checkoutKey != "" {
		if _, err := uuid.Parse(checkoutKey); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Idempotency-Key must be a UUID"})
		}
	}

	order, err := h.checkoutService.Checkout(c.UserContext(), userID, checkoutKey)
	if err != nil {
		return respondServiceError(c, h.logger, "checkout failed", err)
	}

	mylogger.Info(
		c.UserContext(),
		h.logger,
		"checkout succeeded",
		zap.String("order_number", order.Number),
		zap.Int64("user_id", userID),
	)

	return c.Status(fiber.StatusCreated).JSON(orderResponse(order))
}

func (h *OrderHandler) Get(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(int64)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "userId parsing error"})
	}

	orderNumber := c.Params("orderNumber")
	if orderNumber == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing order number"})
	}

	order, err := h.orderService.GetOrder(c.UserContext(), orderNumber, userID)
	if err != nil {
		return respondServiceError(c, h.logger, "get order failed", err)
	}

	return c.Status(fiber.StatusOK).JSON(orderResponse(order))
}
