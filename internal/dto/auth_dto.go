package dto

import (
	"time"

	"github.com/google/uuid"
)

type RegisterFarmerRequest struct {
	Username     string  `json:"username"`
	Email        string  `json:"email"`
	Password     string  `json:"password"`
	FullName     string  `json:"full_name"`
	MobileNumber string  `json:"mobile_number"`
	FarmLocation string  `json:"farm_location"`
	FarmArea     float64 `json:"farm_area"`
	GovernmentID *string `json:"government_id,omitempty"`
}

type RegisterCompanyRequest struct {
	Username                 string  `json:"username"`
	Email                    string  `json:"email"`
	Password                 string  `json:"password"`
	FullName                 string  `json:"full_name"`
	MobileNumber             string  `json:"mobile_number"`
	CompanyName              string  `json:"company_name"`
	CompanyType              string  `json:"company_type"`
	CompanyLocation          string  `json:"company_location"`
	ContactPersonDesignation string  `json:"contact_person_designation"`
	CompanyGSTID             *string `json:"company_gst_id,omitempty"`
}

// TokenRequest accepts both OAuth2 password form fields and JSON.
type TokenRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// UserResponse flattens the role profile the same way for both roles;
// fields of the other role are omitted.
type UserResponse struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	MobileNumber string    `json:"mobile_number"`
	UserType     string    `json:"user_type"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`

	FarmLocation *string  `json:"farm_location,omitempty"`
	FarmArea     *float64 `json:"farm_area,omitempty"`
	GovernmentID *string  `json:"government_id,omitempty"`

	CompanyName              *string `json:"company_name,omitempty"`
	CompanyType              *string `json:"company_type,omitempty"`
	CompanyLocation          *string `json:"company_location,omitempty"`
	ContactPersonDesignation *string `json:"contact_person_designation,omitempty"`
	CompanyGSTID             *string `json:"company_gst_id,omitempty"`
}

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	DB          string `json:"db"`
	ModuleCount int    `json:"module_count"`
}
