package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/imnamix/be-payplex/internal/domain"
)

func cartViewResponse(view *domain.CartView) fiber.Map {
	items := make([]fiber.Map, 0, len(view.Items))
	for _, item := range view.Items {
		items = append(items, fiber.Map{
			"product_id":   item.ProductID,
			"product_name": item.ProductName,
			"unit_price":   item.UnitPrice,
			"quantity":     item.Quantity,
		})
	}

	return fiber.Map{
		"items":    items,
		"subtotal": view.Subtotal,
		"tax":      view.Tax,
		"total":    view.Total,
	}
}

func orderResponse(order *domain.Order) fiber.Map {
	items := make([]fiber.Map, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, fiber.Map{
			"product_id":   item.ProductID,
			"product_name": item.ProductName,
			"unit_price":   item.UnitPrice,
			"quantity":     item.Quantity,
			"subtotal":     item.Subtotal,
		})
	}

	return fiber.Map{
		"order_id":         order.Number,
		"items":            items,
		"subtotal":         order.Subtotal,
		"tax":              order.Tax,
		"total":            order.Total,
		"status":           order.Status,
		"payment_status":   order.PaymentStatus,
		"shipping_address": order.ShippingAddress,
		"created_at":       order.CreatedAt.Format(time.RFC3339),
	}
}
