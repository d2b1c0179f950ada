package crophealth

import (
	"log/slog"

	"github.com/agrimarket/backend/internal/config"
	"github.com/agrimarket/backend/internal/storage"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CropHealthModule struct {
	store storage.Store
}

func New(store storage.Store) *CropHealthModule {
	return &CropHealthModule{store: store}
}

func (m *CropHealthModule) ID() string { return "crophealth" }

func (m *CropHealthModule) Models() []interface{} {
	return []interface{}{
		&CropHealthRecord{},
	}
}

// NewClassifier picks the HTTP classifier when configured, else the mock.
func NewClassifier(cfg *config.Config) Classifier {
	if !cfg.ClassifierConfigured() {
		slog.Warn("crop disease API not configured, serving mock diagnoses")
		return MockClassifier{}
	}
	return NewHTTPClassifier(cfg.CropDiseaseAPIURL, cfg.CropDiseaseAPIKey, cfg.CropDiseaseTimeout)
}

func (m *CropHealthModule) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	h := NewCropHealthHandler(NewCropHealthService(db, m.store, NewClassifier(cfg)))

	// Both paths share one authenticated contract.
	router.Post("/identify-disease", h.Identify)
	router.Post("/crop-disease-identify", h.Identify)
	router.Get("/crop-health/history", h.History)
}
