package farms

import (
	"github.com/agrimarket/backend/internal/access"
	"github.com/agrimarket/backend/internal/config"
	"github.com/agrimarket/backend/internal/middleware"
	"github.com/agrimarket/backend/internal/storage"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type FarmsModule struct {
	store   storage.Store
	service *FarmService
}

func New(store storage.Store) *FarmsModule {
	return &FarmsModule{store: store}
}

func (m *FarmsModule) ID() string { return "farms" }

func (m *FarmsModule) Models() []interface{} {
	return []interface{}{
		&Farm{},
		&FarmImage{},
	}
}

// Service returns the farm service shared with modules that read farm
// ownership. Valid after RegisterRoutes.
func (m *FarmsModule) Service(db *gorm.DB) *FarmService {
	if m.service == nil {
		m.service = NewFarmService(db, m.store)
	}
	return m.service
}

func (m *FarmsModule) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	h := NewFarmHandler(m.Service(db))

	// Static segments before :id.
	router.Post("/farms", h.Create)
	router.Get("/farms", h.List)
	router.Get("/farms/my-farms", middleware.RequireRole(access.RoleFarmer, "Only farmers can access this endpoint"), h.MyFarms)
	router.Get("/farms/map", h.Map)
	router.Delete("/farms/images/:id", h.DeleteImage)

	router.Get("/farms/:id", h.Get)
	router.Put("/farms/:id", h.Update)
	router.Delete("/farms/:id", h.Delete)
	router.Post("/farms/:id/images", h.UploadImages)
	router.Get("/farms/:id/images", h.ListImages)
}
