package middleware

import (
	"crypto/subtle"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// AdminSecretMiddleware rejects requests that do not carry the admin secret,
// either as X-Admin-Secret or as an Authorization bearer token. The
// comparison runs in constant time.
func AdminSecretMiddleware(secret string) fiber.Handler {
	expected := []byte(secret)

	return func(c *fiber.Ctx) error {
		provided := c.Get("X-Admin-Secret")
		if provided == "" {
			provided = strings.TrimPrefix(c.Get("Authorization"), "Bearer ")
		}

		if len(expected) == 0 || provided == "" {
			log.Printf("🚫 [ADMIN_AUTH] Missing admin secret for %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "admin secret missing",
			})
		}

		if subtle.ConstantTimeCompare([]byte(provided), expected) != 1 {
			log.Printf("❌ [ADMIN_AUTH] Invalid admin secret for %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid admin secret",
			})
		}

		return c.Next()
	}
}
