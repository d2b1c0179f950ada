package farms

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"testing"

	"github.com/agrimarket/backend/internal/access"
	"github.com/agrimarket/backend/internal/apperr"
	"github.com/agrimarket/backend/internal/storage"
	"github.com/agrimarket/backend/internal/testutil"
	"github.com/google/uuid"
)

var (
	alice = access.Farmer{ID: uuid.New(), Username: "alice"}
	bob   = access.Farmer{ID: uuid.New(), Username: "bob"}
	acme  = access.Company{ID: uuid.New(), Username: "acme"}
)

func newService(t *testing.T) (*FarmService, *storage.LocalStore) {
	t.Helper()
	store := testutil.Store(t)
	db := testutil.DB(t, New(store))
	return NewFarmService(db, store), store
}

func strp(s string) *string   { return &s }
func f64p(f float64) *float64 { return &f }
func boolp(b bool) *bool      { return &b }

func wheat(location string) *FarmFields {
	return &FarmFields{
		FarmLocation: strp(location),
		FarmArea:     f64p(2.5),
		CropType:     strp("wheat"),
	}
}

func TestCreateFarm(t *testing.T) {
	svc, _ := newService(t)

	farm, err := svc.Create(alice, wheat("Nashik"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if farm.ID == 0 || farm.FarmerUsername != "alice" || farm.FarmStatus != StatusEmpty {
		t.Fatalf("unexpected farm %+v", farm)
	}
	if farm.Images == nil || len(farm.Images) != 0 {
		t.Fatalf("new farm should have an empty image list, got %v", farm.Images)
	}

	if _, err := svc.Create(acme, wheat("Pune")); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("company create: want forbidden, got %v", err)
	}

	bad := wheat("Pune")
	bad.FarmArea = f64p(0)
	if _, err := svc.Create(alice, bad); !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("zero area: want bad request, got %v", err)
	}

	missing := &FarmFields{FarmLocation: strp("Pune"), FarmArea: f64p(1)}
	if _, err := svc.Create(alice, missing); !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("missing crop_type: want bad request, got %v", err)
	}
}

func TestListFilters(t *testing.T) {
	svc, _ := newService(t)

	organic := wheat("Nashik District")
	organic.IsOrganic = boolp(true)
	mustCreate(t, svc, alice, organic)

	rice := wheat("Pune")
	rice.CropType = strp("rice")
	mustCreate(t, svc, bob, rice)

	mustCreate(t, svc, bob, wheat("nashik road"))

	pct := wheat("Plot_7 100% rain-fed")
	pct.Latitude, pct.Longitude = f64p(19.99), f64p(73.79)
	mustCreate(t, svc, bob, pct)

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"all", Filter{Limit: 100}, 4},
		{"crop", Filter{CropType: "wheat", Limit: 100}, 3},
		{"organic", Filter{IsOrganic: boolp(true), Limit: 100}, 1},
		{"not organic", Filter{IsOrganic: boolp(false), Limit: 100}, 3},
		{"location substring case-insensitive", Filter{LocationLike: "NASHIK", Limit: 100}, 2},
		{"percent is literal", Filter{LocationLike: "100%", Limit: 100}, 1},
		{"lone percent is literal", Filter{LocationLike: "%", Limit: 100}, 1},
		{"underscore is literal", Filter{LocationLike: "t_7", Limit: 100}, 1},
		{"underscore matches no other char", Filter{LocationLike: "Plot__", Limit: 100}, 0},
		{"located only", Filter{Located: true, Limit: 100}, 1},
		{"located before paging", Filter{Located: true, Limit: 1}, 1},
		{"status", Filter{Status: StatusGrowing, Limit: 100}, 0},
		{"skip", Filter{Skip: 3, Limit: 100}, 1},
		{"limit", Filter{Limit: 1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.List(tt.filter)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(got) != tt.want {
				t.Fatalf("got %d farms, want %d", len(got), tt.want)
			}
		})
	}
}

func TestListNear(t *testing.T) {
	svc, _ := newService(t)

	near := wheat("Pune")
	near.Latitude, near.Longitude = f64p(18.52), f64p(73.85)
	mustCreate(t, svc, alice, near)

	far := wheat("Delhi")
	far.Latitude, far.Longitude = f64p(28.61), f64p(77.21)
	mustCreate(t, svc, alice, far)

	mustCreate(t, svc, alice, wheat("Unknown"))

	got, err := svc.List(Filter{Near: &NearFilter{Lat: 18.50, Lng: 73.80, RadiusKm: 25}, Limit: 100})
	if err != nil {
		t.Fatalf("list near: %v", err)
	}
	if len(got) != 1 || got[0].FarmLocation != "Pune" {
		t.Fatalf("near filter returned %+v", got)
	}

	fc := FeatureCollection([]Farm{got[0], {ID: 99, FarmLocation: "no coords"}}, nil)
	if len(fc.Features) != 1 {
		t.Fatalf("farms without coordinates must be left off the map, got %d features", len(fc.Features))
	}
	if _, ok := fc.Features[0].Properties["distance_km"]; ok {
		t.Fatal("distance_km set without a radius search")
	}

	centre := &NearFilter{Lat: 18.52, Lng: 73.85, RadiusKm: 25}
	fc = FeatureCollection(got, centre)
	if d, ok := fc.Features[0].Properties["distance_km"].(float64); !ok || d != 0 {
		t.Fatalf("distance_km at the centre = %v", fc.Features[0].Properties["distance_km"])
	}
}

func TestListNearAntimeridian(t *testing.T) {
	svc, _ := newService(t)

	east := wheat("Labasa")
	east.Latitude, east.Longitude = f64p(-16.80), f64p(179.90)
	mustCreate(t, svc, alice, east)

	west := wheat("Taveuni east")
	west.Latitude, west.Longitude = f64p(-16.80), f64p(-179.90)
	mustCreate(t, svc, alice, west)

	far := wheat("Suva")
	far.Latitude, far.Longitude = f64p(-18.14), f64p(178.44)
	mustCreate(t, svc, alice, far)

	tests := []struct {
		name string
		near NearFilter
		want int
	}{
		{"centre east of the line", NearFilter{Lat: -16.80, Lng: 179.90, RadiusKm: 50}, 2},
		{"centre west of the line", NearFilter{Lat: -16.80, Lng: -179.90, RadiusKm: 50}, 2},
		{"centre on the line", NearFilter{Lat: -16.80, Lng: 180, RadiusKm: 15}, 2},
		{"too small to reach either side", NearFilter{Lat: -16.80, Lng: 180, RadiusKm: 5}, 0},
		{"polar cap spans every longitude", NearFilter{Lat: 89.99, Lng: 0, RadiusKm: 100}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			near := tt.near
			got, err := svc.List(Filter{Near: &near, Limit: 100})
			if err != nil {
				t.Fatalf("list near: %v", err)
			}
			if len(got) != tt.want {
				t.Fatalf("got %d farms, want %d: %+v", len(got), tt.want, got)
			}
		})
	}
}

func TestLonClause(t *testing.T) {
	tests := []struct {
		name   string
		near   NearFilter
		clause string
	}{
		{"ordinary", NearFilter{Lat: 18.5, Lng: 73.8, RadiusKm: 25}, "longitude BETWEEN ? AND ?"},
		{"wraps east", NearFilter{Lat: -16.8, Lng: 179.9, RadiusKm: 50}, "(longitude >= ? OR longitude <= ?)"},
		{"wraps west", NearFilter{Lat: -16.8, Lng: -179.9, RadiusKm: 50}, "(longitude >= ? OR longitude <= ?)"},
		{"near pole", NearFilter{Lat: 89.99, Lng: 10, RadiusKm: 100}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clause, _ := lonClause(tt.near.searchBound())
			if clause != tt.clause {
				t.Fatalf("clause = %q, want %q", clause, tt.clause)
			}
		})
	}
}

func TestListByOwner(t *testing.T) {
	svc, _ := newService(t)
	mustCreate(t, svc, alice, wheat("A"))
	mustCreate(t, svc, bob, wheat("B"))

	got, err := svc.ListByOwner(alice)
	if err != nil {
		t.Fatalf("list by owner: %v", err)
	}
	if len(got) != 1 || got[0].FarmerUsername != "alice" {
		t.Fatalf("unexpected farms %+v", got)
	}

	if _, err := svc.ListByOwner(acme); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("company: want forbidden, got %v", err)
	}
}

func TestUpdateFarm(t *testing.T) {
	svc, _ := newService(t)
	farm := mustCreate(t, svc, alice, wheat("Nashik"))

	growing := StatusGrowing
	updated, err := svc.Update(farm.ID, alice, &FarmFields{FarmStatus: &growing, MinAskingPrice: f64p(1800)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.FarmStatus != StatusGrowing || *updated.MinAskingPrice != 1800 || updated.CropType != "wheat" {
		t.Fatalf("partial update applied wrongly: %+v", updated)
	}

	if _, err := svc.Update(farm.ID, bob, &FarmFields{CropType: strp("rice")}); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("other farmer: want forbidden, got %v", err)
	}
	if _, err := svc.Update(farm.ID, acme, &FarmFields{CropType: strp("rice")}); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("company: want forbidden, got %v", err)
	}

	bad := FarmStatus("sold")
	if _, err := svc.Update(farm.ID, alice, &FarmFields{FarmStatus: &bad}); !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("invalid status: want bad request, got %v", err)
	}
	if _, err := svc.Update(404, alice, &FarmFields{}); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("missing farm: want not found, got %v", err)
	}

	after, _ := svc.Get(farm.ID)
	if after.CropType != "wheat" || after.FarmStatus != StatusGrowing {
		t.Fatalf("rejected updates must not persist: %+v", after)
	}
}

func TestImagesAndDelete(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t)
	farm := mustCreate(t, svc, alice, wheat("Nashik"))

	files := fileHeaders(t,
		upload{"files", "a.jpg", "image/jpeg"},
		upload{"files", "notes.txt", "text/plain"},
		upload{"files", "b.png", "image/png"},
	)

	if _, err := svc.UploadImages(ctx, farm.ID, bob, files); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("other farmer upload: want forbidden, got %v", err)
	}

	images, err := svc.UploadImages(ctx, farm.ID, alice, files)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("non-image files must be skipped, got %d images", len(images))
	}

	listed, err := svc.ListImages(farm.ID)
	if err != nil || len(listed) != 2 {
		t.Fatalf("list images = %d, %v", len(listed), err)
	}

	if err := svc.DeleteImage(ctx, images[0].ID, bob); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("other farmer image delete: want forbidden, got %v", err)
	}
	if err := svc.DeleteImage(ctx, images[0].ID, alice); err != nil {
		t.Fatalf("delete image: %v", err)
	}
	assertGone(t, store, images[0].ImageURL)

	if err := svc.Delete(ctx, farm.ID, acme); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("company delete: want forbidden, got %v", err)
	}
	if err := svc.Delete(ctx, farm.ID, alice); err != nil {
		t.Fatalf("delete farm: %v", err)
	}
	assertGone(t, store, images[1].ImageURL)

	if _, err := svc.Get(farm.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("deleted farm: want not found, got %v", err)
	}
	var count int64
	svc.db.Model(&FarmImage{}).Where("farm_id = ?", farm.ID).Count(&count)
	if count != 0 {
		t.Fatalf("%d image rows left after farm delete", count)
	}
}

func mustCreate(t *testing.T, svc *FarmService, p access.Principal, in *FarmFields) *Farm {
	t.Helper()
	farm, err := svc.Create(p, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return farm
}

func assertGone(t *testing.T, store *storage.LocalStore, url string) {
	t.Helper()
	p, err := store.Path(url)
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if _, err := os.Stat(p); !os.IsNotExist(err) {
		t.Fatalf("file %s still present", url)
	}
}

type upload struct {
	field, name, contentType string
}

// fileHeaders builds parsed multipart file headers as a request would carry.
func fileHeaders(t *testing.T, uploads ...upload) []*multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, u := range uploads {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+u.field+`"; filename="`+u.name+`"`)
		h.Set("Content-Type", u.contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		part.Write([]byte("data-" + u.name))
	}
	w.Close()

	req, _ := http.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatalf("parse multipart: %v", err)
	}
	return req.MultipartForm.File["files"]
}
