package schemes

import (
	"testing"

	"github.com/agrimarket/backend/internal/access"
	"github.com/agrimarket/backend/internal/apperr"
	"github.com/agrimarket/backend/internal/testutil"
	"github.com/google/uuid"
)

var (
	farmer  = access.Farmer{ID: uuid.New(), Username: "f1"}
	company = access.Company{ID: uuid.New(), Username: "c1"}
	admin   = access.Company{ID: uuid.New(), Username: "ministry"}
)

func pmkisan() SchemeRequest {
	return SchemeRequest{
		SchemeName:          "PM-KISAN",
		DetailedDescription: "Income support for landholding farmers.",
		Type:                "Central",
		URL:                 "https://pmkisan.gov.in/",
	}
}

func TestSchemeCRUD(t *testing.T) {
	db := testutil.DB(t, New())
	svc := NewSchemeService(db, access.SchemePolicy{})

	if _, err := svc.Create(farmer, &SchemeRequest{}); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("farmer create: want forbidden, got %v", err)
	}

	req := pmkisan()
	created, err := svc.Create(company, &req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	state := SchemeRequest{SchemeName: "Rythu Bandhu", DetailedDescription: "Investment support.", Type: "State"}
	if _, err := svc.CreateBulk(company, []SchemeRequest{state}); err != nil {
		t.Fatalf("bulk: %v", err)
	}

	central, err := svc.List("Central")
	if err != nil || len(central) != 1 {
		t.Fatalf("type filter: %v, %v", central, err)
	}
	all, _ := svc.List("")
	if len(all) != 2 {
		t.Fatalf("want 2 schemes, got %d", len(all))
	}

	req.Type = "Central Sector"
	updated, err := svc.Update(created.ID, company, &req)
	if err != nil || updated.Type != "Central Sector" {
		t.Fatalf("update: %+v, %v", updated, err)
	}
	if _, err := svc.Update(created.ID, farmer, &req); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("farmer update: want forbidden, got %v", err)
	}

	if err := svc.Delete(created.ID, company); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(created.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("get deleted: want not found, got %v", err)
	}
	if err := svc.Delete(created.ID, company); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("second delete: want not found, got %v", err)
	}
}

func TestBulkIsAllOrNothing(t *testing.T) {
	db := testutil.DB(t, New())
	svc := NewSchemeService(db, access.SchemePolicy{})

	bad := pmkisan()
	bad.URL = "not a url"
	if _, err := svc.CreateBulk(company, []SchemeRequest{pmkisan(), bad}); !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("want bad request, got %v", err)
	}
	if _, err := svc.CreateBulk(company, nil); !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("empty bulk: want bad request, got %v", err)
	}
	list, _ := svc.List("")
	if len(list) != 0 {
		t.Fatalf("nothing should be stored, got %d", len(list))
	}
}

func TestAdminUsernamesRestrictWrites(t *testing.T) {
	db := testutil.DB(t, New())
	svc := NewSchemeService(db, access.SchemePolicy{AdminUsernames: []string{"ministry"}})

	req := pmkisan()
	if _, err := svc.Create(company, &req); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("non-admin company: want forbidden, got %v", err)
	}
	if _, err := svc.Create(admin, &req); err != nil {
		t.Fatalf("admin create: %v", err)
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	db := testutil.DB(t, New())

	n, err := Seed(db)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if n == 0 {
		t.Fatal("seed inserted nothing")
	}
	again, err := Seed(db)
	if err != nil || again != 0 {
		t.Fatalf("second seed inserted %d, %v", again, err)
	}

	var count int64
	db.Model(&GovScheme{}).Count(&count)
	if int(count) != n {
		t.Fatalf("stored %d schemes, seeded %d", count, n)
	}
}
