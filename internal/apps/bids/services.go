package bids

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/agrimarket/backend/internal/access"
	"github.com/agrimarket/backend/internal/apperr"
	"github.com/agrimarket/backend/internal/apps/farms"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrBidNotFound      = apperr.NotFound("Bid not found")
	ErrDuplicatePending = apperr.Conflict("You already have a pending bid for this farm")
	ErrNotPending       = apperr.Conflict("Bid is no longer pending")
)

// FarmDirectory is the part of the farm catalog the ledger reads.
type FarmDirectory interface {
	OwnedFarmIDs(username string) ([]uint, error)
}

type BidService struct {
	db    *gorm.DB
	farms FarmDirectory
}

func NewBidService(db *gorm.DB, farms FarmDirectory) *BidService {
	return &BidService{db: db, farms: farms}
}

// Create places a pending bid. The pre-check gives the friendly error; the
// partial unique index closes the race between concurrent requests.
func (s *BidService) Create(p access.Principal, req *CreateBidRequest) (*Bid, error) {
	if !access.CanPlaceBid(p) {
		return nil, apperr.Forbidden("Only companies can place bids")
	}
	if req.FarmID == 0 {
		return nil, apperr.BadRequest("farm_id is required")
	}
	if req.BidAmount <= 0 {
		return nil, apperr.BadRequest("bid_amount must be greater than 0")
	}

	bid := &Bid{
		FarmID:          req.FarmID,
		CompanyUsername: p.Name(),
		BidAmount:       req.BidAmount,
		Status:          StatusPending,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := farms.OwnerTx(tx, req.FarmID); err != nil {
			return err
		}

		var pending int64
		err := tx.Model(&Bid{}).
			Where("farm_id = ? AND company_username = ? AND status = ?", req.FarmID, p.Name(), StatusPending).
			Count(&pending).Error
		if err != nil {
			return apperr.Internal("failed to check pending bids", err)
		}
		if pending > 0 {
			return ErrDuplicatePending
		}

		if err := tx.Omit(clause.Associations).Create(bid).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicatePending
			}
			return apperr.Internal("failed to create bid", err)
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicatePending
		}
		return nil, err
	}

	slog.Info("bid placed", "action", "bid_create", "username", p.Name(), "bid_id", bid.ID, "farm_id", bid.FarmID, "amount", bid.BidAmount)
	return bid, nil
}

// List is role scoped: companies see their own bids, farmers the bids on
// farms they own.
func (s *BidService) List(p access.Principal, f Filter) ([]Bid, error) {
	query := s.db.Model(&Bid{})

	switch {
	case access.IsCompany(p):
		query = query.Where("company_username = ?", p.Name())
	case access.IsFarmer(p):
		ids, err := s.farms.OwnedFarmIDs(p.Name())
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return []Bid{}, nil
		}
		query = query.Where("farm_id IN ?", ids)
	default:
		return nil, apperr.Forbidden("Unknown role")
	}

	return s.find(query, f)
}

// ListMine is the company-only view of its own bids.
func (s *BidService) ListMine(p access.Principal, f Filter) ([]Bid, error) {
	if !access.IsCompany(p) {
		return nil, apperr.Forbidden("Only companies can access this endpoint")
	}
	return s.find(s.db.Model(&Bid{}).Where("company_username = ?", p.Name()), f)
}

func (s *BidService) find(query *gorm.DB, f Filter) ([]Bid, error) {
	if f.FarmID != nil {
		query = query.Where("farm_id = ?", *f.FarmID)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.Limit > 0 {
		query = query.Offset(f.Skip).Limit(f.Limit)
	}

	bids := []Bid{}
	if err := query.Order("id ASC").Find(&bids).Error; err != nil {
		return nil, apperr.Internal("failed to list bids", err)
	}
	return bids, nil
}

// Get returns the bid joined with its farm.
func (s *BidService) Get(id uint, p access.Principal) (*Bid, error) {
	var bid Bid
	if err := s.db.Preload("Farm.Images").First(&bid, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBidNotFound
		}
		return nil, apperr.Internal("failed to load bid", err)
	}
	if !access.CanViewBid(p, bid.CompanyUsername, farmOwner(&bid)) {
		return nil, apperr.Forbidden("You don't have permission to view this bid")
	}
	return &bid, nil
}

// Update validates every present field before writing anything. The write
// is conditional on the bid still being pending.
func (s *BidService) Update(id uint, p access.Principal, req *UpdateBidRequest) (*Bid, error) {
	bid, err := s.load(id)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if req.BidAmount != nil {
		if !access.CanEditBidAmount(p, bid.CompanyUsername) {
			return nil, apperr.Forbidden("Only the company that made the bid can update the amount")
		}
		if bid.Status != StatusPending {
			return nil, apperr.Conflict("Cannot update the amount of a non-pending bid")
		}
		if *req.BidAmount <= 0 {
			return nil, apperr.BadRequest("bid_amount must be greater than 0")
		}
		changes["bid_amount"] = *req.BidAmount
	}
	if req.Status != nil {
		if !access.CanSetBidStatus(p, farmOwner(bid)) {
			return nil, apperr.Forbidden("Only the farm owner can update the bid status")
		}
		next := *req.Status
		if next != StatusAccepted && next != StatusRejected {
			return nil, apperr.BadRequest("status must be accepted or rejected")
		}
		if !bid.Status.CanTransitionTo(next) {
			return nil, apperr.Conflict("Cannot change the status of a " + string(bid.Status) + " bid")
		}
		changes["status"] = string(next)
	}
	if len(changes) == 0 {
		bid.Farm = nil
		return bid, nil
	}

	res := s.db.Model(&Bid{}).Where("id = ? AND status = ?", id, StatusPending).Updates(changes)
	if res.Error != nil {
		return nil, apperr.Internal("failed to update bid", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotPending
	}

	slog.Info("bid updated", "action", "bid_update", "username", p.Name(), "bid_id", id, "fields", keys(changes))

	updated, err := s.load(id)
	if err != nil {
		return nil, err
	}
	updated.Farm = nil
	return updated, nil
}

// Delete withdraws a pending bid; only its author may do so.
func (s *BidService) Delete(id uint, p access.Principal) error {
	var bid Bid
	if err := s.db.First(&bid, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBidNotFound
		}
		return apperr.Internal("failed to load bid", err)
	}
	if !access.CanWithdrawBid(p, bid.CompanyUsername) {
		return apperr.Forbidden("Only the company that made the bid can delete it")
	}
	if bid.Status != StatusPending {
		return apperr.Conflict("Cannot delete a non-pending bid")
	}

	res := s.db.Where("id = ? AND status = ?", id, StatusPending).Delete(&Bid{})
	if res.Error != nil {
		return apperr.Internal("failed to delete bid", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotPending
	}

	slog.Info("bid withdrawn", "action", "bid_delete", "username", p.Name(), "bid_id", id)
	return nil
}

// load fetches the bid with the farm owner needed for authorization.
func (s *BidService) load(id uint) (*Bid, error) {
	var bid Bid
	err := s.db.Preload("Farm", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "farmer_username")
	}).First(&bid, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBidNotFound
		}
		return nil, apperr.Internal("failed to load bid", err)
	}
	return &bid, nil
}

func farmOwner(b *Bid) string {
	if b.Farm == nil {
		return ""
	}
	return b.Farm.FarmerUsername
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}

func keys(m map[string]interface{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
