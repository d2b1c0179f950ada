package access

import (
	"github.com/agrimarket/backend/internal/apperr"
	"github.com/gofiber/fiber/v2"
)

const localsKey = "principal"

// Set stores the resolved principal on the request.
func Set(c *fiber.Ctx, p Principal) {
	c.Locals(localsKey, p)
}

// Current returns the principal resolved for this request.
func Current(c *fiber.Ctx) (Principal, error) {
	if p, ok := c.Locals(localsKey).(Principal); ok && p != nil {
		return p, nil
	}
	return nil, apperr.Unauthorized("Not authenticated")
}
