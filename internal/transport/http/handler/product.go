package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/imnamix/be-payplex/internal/domain"
	"github.com/imnamix/be-payplex/internal/service"
	"github.com/imnamix/be-payplex/pkg/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ProductHandler struct {
	productService service.ProductService
	validate       *validator.Validate
	logger         *zap.Logger
}

func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		validate:       validator.New(),
		logger:         logger,
	}
}

type createProductInput struct {
	Name              string          `json:"name" validate:"required,min=2"`
	Description       string          `json:"description"`
	Price             decimal.Decimal `json:"price" validate:"required"`
	AvailableQuantity int64           `json:"available_quantity" validate:"gte=0"`
	ImageUrl          string          `json:"image_url" validate:"omitempty,url"`
	Category          string          `json:"category"`
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(int64)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "userId parsing error"})
	}

	input := new(createProductInput)
	if err := c.BodyParser(input); err != nil {
		h.logger.Warn("failed to parse body in product create", zap.Error(err))

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "error parsing body"})
	}

	if err := h.validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": utils.FormatValidationError(err)})
	}

	if input.Price.IsNegative() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "price must not be negative"})
	}

	product := &domain.Product{
		SellerID:          userID,
		Name:              input.Name,
		Description:       input.Description,
		Price:             input.Price,
		AvailableQuantity: input.AvailableQuantity,
		Status:            domain.ProductStatusActive,
		ImageUrl:          input.ImageUrl,
		Category:          input.Category,
	}

	id, err := h.productService.Create(c.UserContext(), product)
	if err != nil {
		return respondServiceError(c, h.logger, "create product failed", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

func (h *ProductHandler) FindByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}

	product, err := h.productService.FindByID(c.UserContext(), int64(id))
	if err != nil {
		return respondServiceError(c, h.logger, "find product failed", err)
	}

	return c.Status(fiber.StatusOK).JSON(product)
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	limit := int64(c.QueryInt("limit", 20))
	offset := int64(c.QueryInt("offset", 0))
	search := c.Query("search")

	products, total, err := h.productService.List(c.UserContext(), limit, offset, search)
	if err != nil {
		return respondServiceError(c, h.logger, "list products failed", err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"products": products,
		"total":    total,
	})
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}

	input := new(domain.UpdateProductInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "error parsing body"})
	}

	if err := h.productService.Update(c.UserContext(), int64(id), input); err != nil {
		return respondServiceError(c, h.logger, "update product failed", err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}

	if err := h.productService.Delete(c.UserContext(), int64(id)); err != nil {
		return respondServiceError(c, h.logger, "delete product failed", err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ProductHandler) Restock(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
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

	if err := h.productService.Restock(c.UserContext(), int64(id), input.Quantity); err != nil {
		return respondServiceError(c, h.logger, "restock product failed", err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
