package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/imnamix/be-payplex/internal/transport/http/handler"
	"github.com/imnamix/be-payplex/internal/transport/http/middleware"
)

type Handlers struct {
	Product *handler.ProductHandler
	Cart    *handler.CartHandler
	Order   *handler.OrderHandler
	User    *handler.UserHandler
}

func RegisterRoutes(app *fiber.App, h *Handlers, accessSecret string) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	api := app.Group("/api", middleware.NewAuthMiddleware(accessSecret))
	api.Get("/me", h.User.GetMe)
	api.Patch("/me/shipping-address", h.User.UpdateShippingAddress)

	product := api.Group("/products")
	product.Post("", h.Product.Create)
	product.Get("", h.Product.List)
	product.Get("/:id", h.Product.FindByID)
	product.Patch("/:id", h.Product.Update)
	product.Delete("/:id", h.Product.Delete)
	product.Post("/restock/:id", h.Product.Restock)

	cart := api.Group("/cart")
	cart.Get("", h.Cart.Get)
	cart.Post("/items", h.Cart.Add)
	cart.Patch("/items/:productId", h.Cart.UpdateQuantity)
	cart.Delete("/items/:productId", h.Cart.Remove)
	cart.Delete("", h.Cart.Clear)

	order := api.Group("/orders")
	order.Post("/checkout", h.Order.Checkout)
	order.Get("/:orderNumber", h.Order.Get)
}
