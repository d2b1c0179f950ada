// Package access resolves who is calling and decides what they may do.
package access

import (
	"errors"

	"github.com/agrimarket/backend/internal/models"
	"github.com/google/uuid"
)

type Role string

const (
	RoleFarmer  Role = models.RoleFarmer
	RoleCompany Role = models.RoleCompany
)

// Principal is the authenticated caller: either a Farmer or a Company.
type Principal interface {
	UserID() uuid.UUID
	Name() string
	Role() Role
}

type Farmer struct {
	ID           uuid.UUID
	Username     string
	FarmLocation string
	FarmArea     float64
	GovernmentID string
}

func (f Farmer) UserID() uuid.UUID { return f.ID }
func (f Farmer) Name() string      { return f.Username }
func (Farmer) Role() Role          { return RoleFarmer }

type Company struct {
	ID                       uuid.UUID
	Username                 string
	CompanyName              string
	CompanyType              string
	CompanyLocation          string
	ContactPersonDesignation string
	GSTID                    string
}

func (c Company) UserID() uuid.UUID { return c.ID }
func (c Company) Name() string      { return c.Username }
func (Company) Role() Role          { return RoleCompany }

var ErrProfileMissing = errors.New("user has no profile for its role")

// FromUser builds the Principal for a stored user. The matching role profile
// must be preloaded.
func FromUser(u *models.User) (Principal, error) {
	switch u.Role {
	case models.RoleFarmer:
		if u.FarmerProfile == nil {
			return nil, ErrProfileMissing
		}
		f := Farmer{
			ID:           u.ID,
			Username:     u.Username,
			FarmLocation: u.FarmerProfile.FarmLocation,
			FarmArea:     u.FarmerProfile.FarmArea,
		}
		if u.FarmerProfile.GovernmentID != nil {
			f.GovernmentID = *u.FarmerProfile.GovernmentID
		}
		return f, nil
	case models.RoleCompany:
		if u.CompanyProfile == nil {
			return nil, ErrProfileMissing
		}
		c := Company{
			ID:                       u.ID,
			Username:                 u.Username,
			CompanyName:              u.CompanyProfile.CompanyName,
			CompanyType:              u.CompanyProfile.CompanyType,
			CompanyLocation:          u.CompanyProfile.CompanyLocation,
			ContactPersonDesignation: u.CompanyProfile.ContactPersonDesignation,
		}
		if u.CompanyProfile.CompanyGSTID != nil {
			c.GSTID = *u.CompanyProfile.CompanyGSTID
		}
		return c, nil
	default:
		return nil, errors.New("unknown role " + u.Role)
	}
}
