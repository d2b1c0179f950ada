package farms

import (
	"mime/multipart"
	"sort"
	"strconv"

	"github.com/agrimarket/backend/internal/access"
	"github.com/agrimarket/backend/internal/apperr"
	"github.com/agrimarket/backend/internal/apps"
	"github.com/gofiber/fiber/v2"
)

type FarmHandler struct {
	farmService *FarmService
}

func NewFarmHandler(farmService *FarmService) *FarmHandler {
	return &FarmHandler{farmService: farmService}
}

func (h *FarmHandler) Create(c *fiber.Ctx) error {
	p, err := access.Current(c)
	if err != nil {
		return err
	}

	var req FarmFields
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("Invalid request body")
	}

	farm, err := h.farmService.Create(p, &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(farm)
}

func (h *FarmHandler) List(c *fiber.Ctx) error {
	filter, err := parseFilter(c)
	if err != nil {
		return err
	}

	farms, err := h.farmService.List(filter)
	if err != nil {
		return err
	}
	return c.JSON(farms)
}

// Map returns the filtered listing as a GeoJSON FeatureCollection.
func (h *FarmHandler) Map(c *fiber.Ctx) error {
	filter, err := parseFilter(c)
	if err != nil {
		return err
	}
	filter.Located = true

	farms, err := h.farmService.List(filter)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/geo+json")
	return c.JSON(FeatureCollection(farms, filter.Near))
}

func (h *FarmHandler) MyFarms(c *fiber.Ctx) error {
	p, err := access.Current(c)
	if err != nil {
		return err
	}

	farms, err := h.farmService.ListByOwner(p)
	if err != nil {
		return err
	}
	return c.JSON(farms)
}

func (h *FarmHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c, "id", "farm")
	if err != nil {
		return err
	}

	farm, err := h.farmService.Get(id)
	if err != nil {
		return err
	}
	return c.JSON(farm)
}

func (h *FarmHandler) Update(c *fiber.Ctx) error {
	p, err := access.Current(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "farm")
	if err != nil {
		return err
	}

	var patch FarmFields
	if err := c.BodyParser(&patch); err != nil {
		return apperr.BadRequest("Invalid request body")
	}

	farm, err := h.farmService.Update(id, p, &patch)
	if err != nil {
		return err
	}
	return c.JSON(farm)
}

func (h *FarmHandler) Delete(c *fiber.Ctx) error {
	p, err := access.Current(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "farm")
	if err != nil {
		return err
	}

	if err := h.farmService.Delete(c.UserContext(), id, p); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UploadImages accepts any number of multipart files in any field.
func (h *FarmHandler) UploadImages(c *fiber.Ctx) error {
	p, err := access.Current(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "farm")
	if err != nil {
		return err
	}

	form, err := c.MultipartForm()
	if err != nil {
		return apperr.BadRequest("Expected a multipart form with image files")
	}
	fields := make([]string, 0, len(form.File))
	for field := range form.File {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var files []*multipart.FileHeader
	for _, field := range fields {
		files = append(files, form.File[field]...)
	}
	if len(files) == 0 {
		return apperr.BadRequest("No files uploaded")
	}

	images, err := h.farmService.UploadImages(c.UserContext(), id, p, files)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(images)
}

func (h *FarmHandler) ListImages(c *fiber.Ctx) error {
	id, err := pathID(c, "id", "farm")
	if err != nil {
		return err
	}

	images, err := h.farmService.ListImages(id)
	if err != nil {
		return err
	}
	return c.JSON(images)
}

func (h *FarmHandler) DeleteImage(c *fiber.Ctx) error {
	p, err := access.Current(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "image")
	if err != nil {
		return err
	}

	if err := h.farmService.DeleteImage(c.UserContext(), id, p); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func parseFilter(c *fiber.Ctx) (Filter, error) {
	skip, limit := apps.Pagination(c)
	f := Filter{
		CropType:     c.Query("crop_type"),
		LocationLike: c.Query("farm_location"),
		Status:       FarmStatus(c.Query("farm_status")),
		Skip:         skip,
		Limit:        limit,
	}
	if f.Status != "" && !f.Status.Valid() {
		return f, apperr.BadRequest("farm_status must be one of empty, growing, harvested")
	}
	if raw := c.Query("is_organic"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return f, apperr.BadRequest("is_organic must be true or false")
		}
		f.IsOrganic = &v
	}

	lat, lng, radius := c.Query("near_lat"), c.Query("near_lng"), c.Query("radius_km")
	if lat != "" || lng != "" || radius != "" {
		near, err := parseNear(lat, lng, radius)
		if err != nil {
			return f, err
		}
		f.Near = near
	}
	return f, nil
}

func parseNear(lat, lng, radius string) (*NearFilter, error) {
	la, err1 := strconv.ParseFloat(lat, 64)
	lo, err2 := strconv.ParseFloat(lng, 64)
	r, err3 := strconv.ParseFloat(radius, 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return nil, apperr.BadRequest("near_lat, near_lng and radius_km must all be numbers")
	}
	if la < -90 || la > 90 || lo < -180 || lo > 180 || r <= 0 {
		return nil, apperr.BadRequest("near_lat/near_lng out of range or radius_km not positive")
	}
	return &NearFilter{Lat: la, Lng: lo, RadiusKm: r}, nil
}

func pathID(c *fiber.Ctx, param, entity string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(param), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.BadRequest("Invalid " + entity + " ID")
	}
	return uint(id), nil
}
