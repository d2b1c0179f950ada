package schemes

import (
	"strconv"

	"github.com/agrimarket/backend/internal/access"
	"github.com/agrimarket/backend/internal/apperr"
	"github.com/gofiber/fiber/v2"
)

type SchemeHandler struct {
	schemeService *SchemeService
}

func NewSchemeHandler(schemeService *SchemeService) *SchemeHandler {
	return &SchemeHandler{schemeService: schemeService}
}

func (h *SchemeHandler) List(c *fiber.Ctx) error {
	list, err := h.schemeService.List(c.Query("scheme_type"))
	if err != nil {
		return err
	}
	return c.JSON(list)
}

func (h *SchemeHandler) Get(c *fiber.Ctx) error {
	id, err := schemeID(c)
	if err != nil {
		return err
	}
	scheme, err := h.schemeService.Get(id)
	if err != nil {
		return err
	}
	return c.JSON(scheme)
}

func (h *SchemeHandler) Create(c *fiber.Ctx) error {
	p, err := access.Current(c)
	if err != nil {
		return err
	}

	var req SchemeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("Invalid request body")
	}

	scheme, err := h.schemeService.Create(p, &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(scheme)
}

func (h *SchemeHandler) CreateBulk(c *fiber.Ctx) error {
	p, err := access.Current(c)
	if err != nil {
		return err
	}

	var reqs []SchemeRequest
	if err := c.BodyParser(&reqs); err != nil {
		return apperr.BadRequest("Expected a JSON array of schemes")
	}

	list, err := h.schemeService.CreateBulk(p, reqs)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(list)
}

func (h *SchemeHandler) Update(c *fiber.Ctx) error {
	p, err := access.Current(c)
	if err != nil {
		return err
	}
	id, err := schemeID(c)
	if err != nil {
		return err
	}

	var req SchemeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("Invalid request body")
	}

	scheme, err := h.schemeService.Update(id, p, &req)
	if err != nil {
		return err
	}
	return c.JSON(scheme)
}

func (h *SchemeHandler) Delete(c *fiber.Ctx) error {
	p, err := access.Current(c)
	if err != nil {
		return err
	}
	id, err := schemeID(c)
	if err != nil {
		return err
	}

	if err := h.schemeService.Delete(id, p); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func schemeID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.BadRequest("Invalid scheme ID")
	}
	return uint(id), nil
}
