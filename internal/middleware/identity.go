package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
)

// IdentityMiddleware extracts the caller identity and injects it into Fiber
// locals. Authentication itself happens upstream (gateway, session layer);
// this service only needs a trustworthy user id to enforce ownership and
// sharing rules.
//
// The id is read from the X-User-ID header; requests without one are
// rejected before any handler runs.
func IdentityMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		userID := strings.TrimSpace(c.Get("X-User-ID"))
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-User-ID header",
			})
		}
		c.Locals("user_id", userID)
		return c.Next()
	}
}

// GetUserID extracts the caller identity from Fiber locals. Empty means the
// identity middleware did not run.
func GetUserID(c fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}
