package crophealth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CropHealthRecord is an append-only log entry of one identification.
type CropHealthRecord struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	UserID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	ImagePath       string         `gorm:"size:500;not null" json:"image_path"`
	DetectedDisease string         `gorm:"size:255" json:"detected_disease"`
	ScientificName  string         `gorm:"size:255" json:"scientific_name"`
	ConfidenceScore float64        `json:"confidence_score"`
	Treatment       datatypes.JSON `json:"treatment"`
	Notes           *string        `gorm:"type:text" json:"notes"`
	Timestamp       time.Time      `gorm:"not null;index" json:"timestamp"`
}

func (CropHealthRecord) TableName() string {
	return "crop_health_records"
}

// Treatment groups remedies the way the mobile client renders them.
type Treatment struct {
	Prevention []string `json:"prevention"`
	Chemical   []string `json:"chemical"`
	Biological []string `json:"biological"`
}

// Diagnosis is the single best match returned by a classifier.
type Diagnosis struct {
	Name           string    `json:"name"`
	ScientificName string    `json:"scientific_name"`
	Probability    float64   `json:"probability"`
	Treatment      Treatment `json:"treatment"`
}

type IdentifyResponse struct {
	RecordID uint `json:"record_id"`
	Diagnosis
}
