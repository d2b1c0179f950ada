package schemes

import "time"

// GovScheme is reference data describing a government programme.
type GovScheme struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	SchemeName          string    `gorm:"size:255;not null;index" json:"scheme_name"`
	DetailedDescription string    `gorm:"type:text;not null" json:"detailed_description"`
	Type                string    `gorm:"size:100;not null;index" json:"type"`
	URL                 string    `gorm:"column:url;size:500" json:"url"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (GovScheme) TableName() string {
	return "gov_schemes"
}

type SchemeRequest struct {
	SchemeName          string `json:"scheme_name"`
	DetailedDescription string `json:"detailed_description"`
	Type                string `json:"type"`
	URL                 string `json:"url"`
}
