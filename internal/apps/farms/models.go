package farms

import (
	"time"
)

type FarmStatus string

const (
	StatusEmpty     FarmStatus = "empty"
	StatusGrowing   FarmStatus = "growing"
	StatusHarvested FarmStatus = "harvested"
)

func (s FarmStatus) Valid() bool {
	switch s {
	case StatusEmpty, StatusGrowing, StatusHarvested:
		return true
	}
	return false
}

// Farm is a listing owned by exactly one farmer.
type Farm struct {
	ID                  uint        `gorm:"primaryKey" json:"id"`
	FarmerUsername      string      `gorm:"size:100;not null;index" json:"farmer_username"`
	FarmLocation        string      `gorm:"size:500;not null" json:"farm_location"`
	Latitude            *float64    `json:"latitude"`
	Longitude           *float64    `json:"longitude"`
	FarmArea            float64     `gorm:"not null;check:farm_area > 0" json:"farm_area"`
	CropType            string      `gorm:"size:100;not null;index" json:"crop_type"`
	IsOrganic           bool        `gorm:"not null;default:false" json:"is_organic"`
	PesticidesUsed      *string     `gorm:"type:text" json:"pesticides_used"`
	ExpectedHarvestDate *Date       `gorm:"type:date" json:"expected_harvest_date"`
	ExpectedQuantity    *float64    `json:"expected_quantity"`
	MinAskingPrice      *float64    `json:"min_asking_price"`
	FarmStatus          FarmStatus  `gorm:"size:20;not null;default:'empty';index" json:"farm_status"`
	Images              []FarmImage `gorm:"foreignKey:FarmID;constraint:OnDelete:CASCADE" json:"images"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

func (Farm) TableName() string {
	return "farms"
}

// FarmImage references a stored photo of a farm.
type FarmImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FarmID    uint      `gorm:"not null;index" json:"farm_id"`
	ImageURL  string    `gorm:"size:500;not null" json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}

func (FarmImage) TableName() string {
	return "farm_images"
}

// --- DTOs ---

// FarmFields is the body of create and update. On update only the fields
// present in the request are applied.
type FarmFields struct {
	FarmLocation        *string     `json:"farm_location"`
	Latitude            *float64    `json:"latitude"`
	Longitude           *float64    `json:"longitude"`
	FarmArea            *float64    `json:"farm_area"`
	CropType            *string     `json:"crop_type"`
	IsOrganic           *bool       `json:"is_organic"`
	PesticidesUsed      *string     `json:"pesticides_used"`
	ExpectedHarvestDate *Date       `json:"expected_harvest_date"`
	ExpectedQuantity    *float64    `json:"expected_quantity"`
	MinAskingPrice      *float64    `json:"min_asking_price"`
	FarmStatus          *FarmStatus `json:"farm_status"`
}

// Filter narrows the public farm listing.
type Filter struct {
	CropType     string
	IsOrganic    *bool
	LocationLike string
	Status       FarmStatus
	Near         *NearFilter
	// Located keeps only farms with both coordinates set.
	Located bool
	Skip    int
	Limit   int
}

type NearFilter struct {
	Lat      float64
	Lng      float64
	RadiusKm float64
}
