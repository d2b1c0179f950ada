package bids

import (
	"time"

	"github.com/agrimarket/backend/internal/apps/farms"
)

type BidStatus string

const (
	StatusPending  BidStatus = "pending"
	StatusAccepted BidStatus = "accepted"
	StatusRejected BidStatus = "rejected"
)

func (s BidStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// CanTransitionTo reports whether the status machine allows s -> next.
// Only a pending bid moves, and only to a terminal state.
func (s BidStatus) CanTransitionTo(next BidStatus) bool {
	return s == StatusPending && (next == StatusAccepted || next == StatusRejected)
}

// Bid is a company's offer on a farm. At most one pending bid exists per
// (farm, company); see MigrateIndexes.
type Bid struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	FarmID          uint        `gorm:"not null;index" json:"farm_id"`
	Farm            *farms.Farm `gorm:"foreignKey:FarmID;constraint:OnDelete:CASCADE" json:"farm,omitempty"`
	CompanyUsername string      `gorm:"size:100;not null;index" json:"company_username"`
	BidAmount       float64     `gorm:"not null;check:bid_amount > 0" json:"bid_amount"`
	Status          BidStatus   `gorm:"size:20;not null;default:'pending';index" json:"status"`
	BidDate         time.Time   `gorm:"autoCreateTime;<-:create" json:"bid_date"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

func (Bid) TableName() string {
	return "bids"
}

// --- DTOs ---

type CreateBidRequest struct {
	FarmID    uint    `json:"farm_id"`
	BidAmount float64 `json:"bid_amount"`
}

// UpdateBidRequest carries the two independently gated fields.
type UpdateBidRequest struct {
	BidAmount *float64   `json:"bid_amount"`
	Status    *BidStatus `json:"status"`
}

type Filter struct {
	FarmID *uint
	Status BidStatus
	Skip   int
	Limit  int
}
