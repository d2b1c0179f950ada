package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleFarmer  = "farmer"
	RoleCompany = "company"
)

// User is an account in the identity store. Role-specific attributes live in
// exactly one of FarmerProfile or CompanyProfile, matching Role.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username     string    `gorm:"size:100;not null;uniqueIndex" json:"username"`
	Email        string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Password     string    `gorm:"not null" json:"-"`
	Role         string    `gorm:"size:20;not null;index" json:"user_type"`
	FullName     string    `gorm:"size:255;not null" json:"full_name"`
	MobileNumber string    `gorm:"size:30;not null" json:"mobile_number"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	FarmerProfile  *FarmerProfile  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"farmer_profile,omitempty"`
	CompanyProfile *CompanyProfile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"company_profile,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

type FarmerProfile struct {
	ID           uint      `gorm:"primaryKey" json:"-"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"-"`
	FarmLocation string    `gorm:"size:500;not null" json:"farm_location"`
	FarmArea     float64   `gorm:"not null" json:"farm_area"`
	GovernmentID *string   `gorm:"size:255" json:"government_id,omitempty"`
}

type CompanyProfile struct {
	ID                       uint      `gorm:"primaryKey" json:"-"`
	UserID                   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"-"`
	CompanyName              string    `gorm:"size:255;not null" json:"company_name"`
	CompanyType              string    `gorm:"size:100;not null" json:"company_type"`
	CompanyLocation          string    `gorm:"size:500;not null" json:"company_location"`
	ContactPersonDesignation string    `gorm:"size:100;not null" json:"contact_person_designation"`
	CompanyGSTID             *string   `gorm:"column:company_gst_id;size:255" json:"company_gst_id,omitempty"`
}
