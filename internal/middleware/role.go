package middleware

import (
	"github.com/agrimarket/backend/internal/access"
	"github.com/agrimarket/backend/internal/apperr"
	"github.com/gofiber/fiber/v2"
)

// RequireRole rejects principals of any other role with 403.
func RequireRole(role access.Role, message string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := access.Current(c)
		if err != nil {
			return err
		}
		if p.Role() != role {
			return apperr.Forbidden(message)
		}
		return c.Next()
	}
}
