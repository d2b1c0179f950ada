package handlers

import (
	"time"

	"github.com/agrimarket/backend/internal/database"
	"github.com/agrimarket/backend/internal/dto"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db          *gorm.DB
	moduleCount int
}

func NewHealthHandler(db *gorm.DB, moduleCount int) *HealthHandler {
	return &HealthHandler{db: db, moduleCount: moduleCount}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status := "ok"
	dbStatus := "ok"
	if err := database.Ping(h.db); err != nil {
		status = "degraded"
		dbStatus = "unhealthy: " + err.Error()
	}

	return c.JSON(dto.HealthResponse{
		Status:      status,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		DB:          dbStatus,
		ModuleCount: h.moduleCount,
	})
}
