package crophealth

import (
	"io"
	"strings"

	"github.com/agrimarket/backend/internal/access"
	"github.com/agrimarket/backend/internal/apperr"
	"github.com/agrimarket/backend/internal/apps"
	"github.com/gofiber/fiber/v2"
)

type CropHealthHandler struct {
	service *CropHealthService
}

func NewCropHealthHandler(service *CropHealthService) *CropHealthHandler {
	return &CropHealthHandler{service: service}
}

// Identify reads the multipart "image" field and an optional "notes" field.
func (h *CropHealthHandler) Identify(c *fiber.Ctx) error {
	p, err := access.Current(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("image")
	if err != nil {
		return apperr.BadRequest("Multipart field 'image' is required")
	}
	f, err := fh.Open()
	if err != nil {
		return apperr.Internal("failed to read upload", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return apperr.Internal("failed to read upload", err)
	}

	var notes *string
	if v := strings.TrimSpace(c.FormValue("notes")); v != "" {
		notes = &v
	}

	resp, err := h.service.Identify(c.UserContext(), p, Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, notes)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

func (h *CropHealthHandler) History(c *fiber.Ctx) error {
	p, err := access.Current(c)
	if err != nil {
		return err
	}
	skip, limit := apps.Pagination(c)

	records, err := h.service.History(p, skip, limit)
	if err != nil {
		return err
	}
	return c.JSON(records)
}
