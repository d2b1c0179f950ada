package bids

import (
	"github.com/agrimarket/backend/internal/access"
	"github.com/agrimarket/backend/internal/config"
	"github.com/agrimarket/backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type BidsModule struct {
	farms FarmDirectory
}

// New needs the farm catalog to resolve which farms a farmer owns.
func New(farms FarmDirectory) *BidsModule {
	return &BidsModule{farms: farms}
}

func (m *BidsModule) ID() string { return "bids" }

func (m *BidsModule) Models() []interface{} {
	return []interface{}{
		&Bid{},
	}
}

// MigrateIndexes creates the partial unique index that allows one pending
// bid per (farm, company). Postgres and SQLite both support it.
func (m *BidsModule) MigrateIndexes(db *gorm.DB) error {
	return db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_bids_one_pending
		ON bids (farm_id, company_username) WHERE status = 'pending'`).Error
}

func (m *BidsModule) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	h := NewBidHandler(NewBidService(db, m.farms))

	router.Post("/bids", h.Create)
	router.Get("/bids", h.List)
	router.Get("/bids/my-bids", middleware.RequireRole(access.RoleCompany, "Only companies can access this endpoint"), h.MyBids)
	router.Get("/bids/export", h.Export)

	router.Get("/bids/:id", h.Get)
	router.Put("/bids/:id", h.Update)
	router.Delete("/bids/:id", h.Delete)
}
