package schemes

import (
	"github.com/agrimarket/backend/internal/access"
	"github.com/agrimarket/backend/internal/config"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SchemesModule struct{}

func New() *SchemesModule {
	return &SchemesModule{}
}

func (m *SchemesModule) ID() string { return "schemes" }

func (m *SchemesModule) Models() []interface{} {
	return []interface{}{
		&GovScheme{},
	}
}

func (m *SchemesModule) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	policy := access.SchemePolicy{AdminUsernames: cfg.SchemeAdminUsernames}
	h := NewSchemeHandler(NewSchemeService(db, policy))

	router.Get("/schemes", h.List)
	router.Post("/schemes", h.Create)
	router.Post("/schemes/bulk", h.CreateBulk)

	router.Get("/schemes/:id", h.Get)
	router.Put("/schemes/:id", h.Update)
	router.Delete("/schemes/:id", h.Delete)
}
