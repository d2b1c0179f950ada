package middleware

import (
	"log/slog"

	"github.com/agrimarket/backend/internal/access"
	"github.com/agrimarket/backend/internal/apperr"
	"github.com/agrimarket/backend/internal/config"
	"github.com/agrimarket/backend/internal/services"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTProtected validates the bearer token and stores it under Locals("user").
func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
			return apperr.Unauthorized("Could not validate credentials")
		},
	})
}

// ResolvePrincipal loads the token's user and stores the access.Principal.
// Must run after JWTProtected.
func ResolvePrincipal(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := c.Locals("user").(*jwt.Token)
		if !ok || token == nil {
			return apperr.Unauthorized("Could not validate credentials")
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return apperr.Unauthorized("Invalid claims")
		}
		sub, _ := claims["sub"].(string)
		userID, err := uuid.Parse(sub)
		if err != nil {
			return apperr.Unauthorized("Invalid subject")
		}

		user, err := authService.FindByID(userID)
		if err != nil {
			return err
		}
		if !user.IsActive {
			return services.ErrInactiveUser
		}

		p, err := access.FromUser(user)
		if err != nil {
			slog.Error("principal resolution failed", "username", user.Username, "error", err)
			return apperr.Internal("failed to resolve principal", err)
		}
		access.Set(c, p)
		return c.Next()
	}
}

// Authenticated chains token validation and principal resolution.
func Authenticated(cfg *config.Config, authService *services.AuthService) []fiber.Handler {
	return []fiber.Handler{JWTProtected(cfg), ResolvePrincipal(authService)}
}
