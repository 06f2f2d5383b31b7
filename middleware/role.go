package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// RequireRole returns a middleware that gates a route on the role claim
// set by JWTMiddleware.
func RequireRole(requiredRole string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("userRole").(string)
		if !ok || role != requiredRole {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"status":  false,
				"message": "You do not have permission to access this resource!",
				"data":    nil,
			})
		}
		return c.Next()
	}
}

// IsAdmin reports whether the current request carries the ADMIN role.
func IsAdmin(c *fiber.Ctx) bool {
	role, ok := c.Locals("userRole").(string)
	return ok && role == "ADMIN"
}
