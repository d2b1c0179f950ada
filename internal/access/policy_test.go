package access

import (
	"testing"

	"github.com/agrimarket/backend/internal/models"
	"github.com/google/uuid"
)

var (
	f1 = Farmer{ID: uuid.New(), Username: "f1"}
	f2 = Farmer{ID: uuid.New(), Username: "f2"}
	c1 = Company{ID: uuid.New(), Username: "c1"}
	c2 = Company{ID: uuid.New(), Username: "c2"}
)

func TestFarmPredicates(t *testing.T) {
	tests := []struct {
		name   string
		p      Principal
		owner  string
		create bool
		mutate bool
	}{
		{"owner farmer", f1, "f1", true, true},
		{"other farmer", f2, "f1", true, false},
		{"company", c1, "f1", false, false},
		{"company sharing owner name", Company{Username: "f1"}, "f1", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanCreateFarm(tt.p); got != tt.create {
				t.Errorf("CanCreateFarm = %v, expected %v", got, tt.create)
			}
			if got := CanMutateFarm(tt.p, tt.owner); got != tt.mutate {
				t.Errorf("CanMutateFarm = %v, expected %v", got, tt.mutate)
			}
		})
	}
}

func TestBidPredicates(t *testing.T) {
	const author, farmOwner = "c1", "f1"

	tests := []struct {
		name      string
		p         Principal
		place     bool
		view      bool
		amount    bool
		withdraw  bool
		setStatus bool
	}{
		{"authoring company", c1, true, true, true, true, false},
		{"other company", c2, true, false, false, false, false},
		{"farm owner", f1, false, true, false, false, true},
		{"other farmer", f2, false, false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanPlaceBid(tt.p); got != tt.place {
				t.Errorf("CanPlaceBid = %v, expected %v", got, tt.place)
			}
			if got := CanViewBid(tt.p, author, farmOwner); got != tt.view {
				t.Errorf("CanViewBid = %v, expected %v", got, tt.view)
			}
			if got := CanEditBidAmount(tt.p, author); got != tt.amount {
				t.Errorf("CanEditBidAmount = %v, expected %v", got, tt.amount)
			}
			if got := CanWithdrawBid(tt.p, author); got != tt.withdraw {
				t.Errorf("CanWithdrawBid = %v, expected %v", got, tt.withdraw)
			}
			if got := CanSetBidStatus(tt.p, farmOwner); got != tt.setStatus {
				t.Errorf("CanSetBidStatus = %v, expected %v", got, tt.setStatus)
			}
		})
	}
}

func TestSchemePolicy(t *testing.T) {
	open := SchemePolicy{}
	restricted := SchemePolicy{AdminUsernames: []string{"f2", "ops"}}

	tests := []struct {
		name   string
		policy SchemePolicy
		p      Principal
		want   bool
	}{
		{"company without admin list", open, c1, true},
		{"farmer without admin list", open, f1, false},
		{"nil principal", open, nil, false},
		{"company not in admin list", restricted, c1, false},
		{"farmer in admin list", restricted, f2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.CanManageSchemes(tt.p); got != tt.want {
				t.Errorf("CanManageSchemes = %v, expected %v", got, tt.want)
			}
		})
	}
}

func TestFromUser(t *testing.T) {
	gst := "GST123"
	company := &models.User{
		ID:       uuid.New(),
		Username: "c1",
		Role:     models.RoleCompany,
		CompanyProfile: &models.CompanyProfile{
			CompanyName:  "Acme Foods",
			CompanyGSTID: &gst,
		},
	}

	p, err := FromUser(company)
	if err != nil {
		t.Fatalf("FromUser: %v", err)
	}
	c, ok := p.(Company)
	if !ok {
		t.Fatalf("expected Company, got %T", p)
	}
	if c.CompanyName != "Acme Foods" || c.GSTID != "GST123" || c.Role() != RoleCompany {
		t.Fatalf("unexpected company principal: %+v", c)
	}

	orphan := &models.User{Username: "f9", Role: models.RoleFarmer}
	if _, err := FromUser(orphan); err != ErrProfileMissing {
		t.Fatalf("expected ErrProfileMissing, got %v", err)
	}
}
