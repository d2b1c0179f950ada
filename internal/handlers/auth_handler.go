package handlers

import (
	"github.com/agrimarket/backend/internal/access"
	"github.com/agrimarket/backend/internal/apperr"
	"github.com/agrimarket/backend/internal/dto"
	"github.com/agrimarket/backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) RegisterFarmer(c *fiber.Ctx) error {
	var req dto.RegisterFarmerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("Invalid request body")
	}

	user, err := h.authService.RegisterFarmer(&req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(services.ToUserResponse(user))
}

func (h *AuthHandler) RegisterCompany(c *fiber.Ctx) error {
	var req dto.RegisterCompanyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("Invalid request body")
	}

	user, err := h.authService.RegisterCompany(&req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(services.ToUserResponse(user))
}

// Token exchanges username/password (form or JSON) for a bearer token.
func (h *AuthHandler) Token(c *fiber.Ctx) error {
	var req dto.TokenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("Invalid request body")
	}
	if req.Username == "" || req.Password == "" {
		return apperr.BadRequest("username and password are required")
	}

	resp, err := h.authService.Authenticate(&req)
	if err != nil {
		if apperr.Is(err, apperr.KindUnauthorized) {
			c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
		}
		return err
	}
	return c.JSON(resp)
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	p, err := access.Current(c)
	if err != nil {
		return err
	}
	user, err := h.authService.FindByID(p.UserID())
	if err != nil {
		return err
	}
	return c.JSON(services.ToUserResponse(user))
}
