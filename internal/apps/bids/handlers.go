package bids

import (
	"strconv"
	"time"

	"github.com/agrimarket/backend/internal/access"
	"github.com/agrimarket/backend/internal/apperr"
	"github.com/agrimarket/backend/internal/apps"
	"github.com/gofiber/fiber/v2"
)

type BidHandler struct {
	bidService *BidService
}

func NewBidHandler(bidService *BidService) *BidHandler {
	return &BidHandler{bidService: bidService}
}

func (h *BidHandler) Create(c *fiber.Ctx) error {
	p, err := access.Current(c)
	if err != nil {
		return err
	}

	var req CreateBidRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("Invalid request body")
	}

	bid, err := h.bidService.Create(p, &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(bid)
}

func (h *BidHandler) List(c *fiber.Ctx) error {
	p, err := access.Current(c)
	if err != nil {
		return err
	}
	filter, err := parseFilter(c, true)
	if err != nil {
		return err
	}

	bids, err := h.bidService.List(p, filter)
	if err != nil {
		return err
	}
	return c.JSON(bids)
}

func (h *BidHandler) MyBids(c *fiber.Ctx) error {
	p, err := access.Current(c)
	if err != nil {
		return err
	}
	filter, err := parseFilter(c, false)
	if err != nil {
		return err
	}

	bids, err := h.bidService.ListMine(p, filter)
	if err != nil {
		return err
	}
	return c.JSON(bids)
}

// Export streams the caller's visible bids as a spreadsheet.
func (h *BidHandler) Export(c *fiber.Ctx) error {
	p, err := access.Current(c)
	if err != nil {
		return err
	}
	filter, err := parseFilter(c, false)
	if err != nil {
		return err
	}

	bids, err := h.bidService.List(p, filter)
	if err != nil {
		return err
	}
	buf, err := WriteWorkbook(bids)
	if err != nil {
		return apperr.Internal("failed to build bid export", err)
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, "attachment; filename="+exportFilename(time.Now()))
	return c.Send(buf.Bytes())
}

func (h *BidHandler) Get(c *fiber.Ctx) error {
	p, err := access.Current(c)
	if err != nil {
		return err
	}
	id, err := bidID(c)
	if err != nil {
		return err
	}

	bid, err := h.bidService.Get(id, p)
	if err != nil {
		return err
	}
	return c.JSON(bid)
}

func (h *BidHandler) Update(c *fiber.Ctx) error {
	p, err := access.Current(c)
	if err != nil {
		return err
	}
	id, err := bidID(c)
	if err != nil {
		return err
	}

	var req UpdateBidRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("Invalid request body")
	}

	bid, err := h.bidService.Update(id, p, &req)
	if err != nil {
		return err
	}
	return c.JSON(bid)
}

func (h *BidHandler) Delete(c *fiber.Ctx) error {
	p, err := access.Current(c)
	if err != nil {
		return err
	}
	id, err := bidID(c)
	if err != nil {
		return err
	}

	if err := h.bidService.Delete(id, p); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// parseFilter reads farm_id, status and, when paged, skip/limit.
func parseFilter(c *fiber.Ctx, paged bool) (Filter, error) {
	var f Filter
	if paged {
		f.Skip, f.Limit = apps.Pagination(c)
	}
	if raw := c.Query("farm_id"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return f, apperr.BadRequest("farm_id must be a positive integer")
		}
		id := uint(v)
		f.FarmID = &id
	}
	if raw := c.Query("status"); raw != "" {
		f.Status = BidStatus(raw)
		if !f.Status.Valid() {
			return f, apperr.BadRequest("status must be one of pending, accepted, rejected")
		}
	}
	return f, nil
}

func bidID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.BadRequest("Invalid bid ID")
	}
	return uint(id), nil
}
