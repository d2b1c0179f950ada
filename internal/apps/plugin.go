package apps

import (
	"github.com/agrimarket/backend/internal/config"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Module is one marketplace component (farms, bids, schemes, crop health).
type Module interface {
	// ID returns the module identifier used in logs.
	ID() string

	// Models returns the list of GORM model pointers for AutoMigrate.
	Models() []interface{}

	// RegisterRoutes mounts module routes on the given Fiber group.
	// The group is already prefixed with /api and resolves the principal.
	RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config)
}

// IndexMigrator is implemented by modules that need schema objects
// AutoMigrate cannot express, such as partial unique indexes.
type IndexMigrator interface {
	Module

	MigrateIndexes(db *gorm.DB) error
}
