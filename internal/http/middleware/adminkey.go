package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

// AdminKeyHeader carries the shared secret for administrative endpoints.
const AdminKeyHeader = "X-Admin-Key"

// AdminKey guards administrative routes with a shared secret. The key is
// accepted from the X-Admin-Key header or, for browser convenience, from the
// adminKey query parameter. When the configured key is empty the guard
// rejects everything, so admin routes stay closed unless explicitly enabled.
func AdminKey(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		provided := c.Get(AdminKeyHeader)
		if provided == "" {
			provided = c.Query("adminKey")
		}

		if key == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "admin key missing or invalid",
			})
		}
		return c.Next()
	}
}
