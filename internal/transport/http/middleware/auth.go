package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/imnamix/be-payplex/pkg/utils"
)

// NewAuthMiddleware validates the bearer token locally and stashes the
// user id for handlers. Token issuance is the auth provider's job.
func NewAuthMiddleware(accessSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized: missed header"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized: Invalid header format"})
		}

		claims, err := utils.ParseAccessToken(parts[1], accessSecret)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized: Invalid token"})
		}

		c.Locals("userId", claims.UserID)
		return c.Next()
	}
}
