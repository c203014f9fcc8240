package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// PlayerContextMiddleware reads the player identity asserted by the gateway
// in X-Player-Name and exposes it to handlers as Locals("player_name").
// Routes using it require the header.
func PlayerContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		player := strings.TrimSpace(c.Get("X-Player-Name"))
		if player == "" {
			log.Printf("❌ [PLAYER_CTX] X-Player-Name missing on %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-Player-Name: request must come through gateway with player context",
			})
		}

		c.Locals("player_name", player)
		return c.Next()
	}
}

// PlayerName returns the identity stored by PlayerContextMiddleware.
func PlayerName(c *fiber.Ctx) string {
	name, _ := c.Locals("player_name").(string)
	return name
}
