package farms

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"strings"

	"github.com/agrimarket/backend/internal/access"
	"github.com/agrimarket/backend/internal/apperr"
	"github.com/agrimarket/backend/internal/storage"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrFarmNotFound  = apperr.NotFound("Farm not found")
	ErrImageNotFound = apperr.NotFound("Image not found")
)

type FarmService struct {
	db    *gorm.DB
	store storage.Store
}

func NewFarmService(db *gorm.DB, store storage.Store) *FarmService {
	return &FarmService{db: db, store: store}
}

func (s *FarmService) Create(p access.Principal, req *FarmFields) (*Farm, error) {
	if !access.CanCreateFarm(p) {
		return nil, apperr.Forbidden("Only farmers can create farm listings")
	}
	if req.FarmLocation == nil || strings.TrimSpace(*req.FarmLocation) == "" {
		return nil, apperr.BadRequest("farm_location is required")
	}
	if req.FarmArea == nil {
		return nil, apperr.BadRequest("farm_area is required")
	}
	if req.CropType == nil || strings.TrimSpace(*req.CropType) == "" {
		return nil, apperr.BadRequest("crop_type is required")
	}

	farm := &Farm{
		FarmerUsername: p.Name(),
		FarmStatus:     StatusEmpty,
	}
	applyFields(farm, req)
	if err := validate(farm); err != nil {
		return nil, err
	}

	if err := s.db.Omit(clause.Associations).Create(farm).Error; err != nil {
		return nil, apperr.Internal("failed to create farm", err)
	}
	farm.Images = []FarmImage{}

	slog.Info("farm created", "action", "farm_create", "username", p.Name(), "farm_id", farm.ID)
	return farm, nil
}

// List is the public marketplace listing; every principal sees every farm.
func (s *FarmService) List(f Filter) ([]Farm, error) {
	query := s.db.Model(&Farm{}).Preload("Images")

	if f.CropType != "" {
		query = query.Where("crop_type = ?", f.CropType)
	}
	if f.IsOrganic != nil {
		query = query.Where("is_organic = ?", *f.IsOrganic)
	}
	if f.LocationLike != "" {
		query = query.Where(`LOWER(farm_location) LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(strings.ToLower(f.LocationLike))+"%")
	}
	if f.Status != "" {
		query = query.Where("farm_status = ?", f.Status)
	}
	if f.Located {
		query = query.Where("latitude IS NOT NULL AND longitude IS NOT NULL")
	}
	query = query.Order("id ASC")

	if f.Near == nil {
		farms := []Farm{}
		if err := query.Offset(f.Skip).Limit(f.Limit).Find(&farms).Error; err != nil {
			return nil, apperr.Internal("failed to list farms", err)
		}
		return farms, nil
	}

	// Prefilter on the bounding box, then keep only farms inside the radius.
	b := f.Near.searchBound()
	query = query.Where("latitude BETWEEN ? AND ?", b.Min.Lat(), b.Max.Lat())
	if clause, args := lonClause(b); clause != "" {
		query = query.Where(clause, args...)
	}
	var candidates []Farm
	err := query.Find(&candidates).Error
	if err != nil {
		return nil, apperr.Internal("failed to list farms", err)
	}

	farms := make([]Farm, 0, len(candidates))
	for i := range candidates {
		if f.Near.contains(&candidates[i]) {
			farms = append(farms, candidates[i])
		}
	}
	return page(farms, f.Skip, f.Limit), nil
}

// ListByOwner returns the calling farmer's own farms.
func (s *FarmService) ListByOwner(p access.Principal) ([]Farm, error) {
	if !access.IsFarmer(p) {
		return nil, apperr.Forbidden("Only farmers can access this endpoint")
	}
	farms := []Farm{}
	if err := s.db.Preload("Images").Where("farmer_username = ?", p.Name()).Order("id ASC").Find(&farms).Error; err != nil {
		return nil, apperr.Internal("failed to list farms", err)
	}
	return farms, nil
}

func (s *FarmService) Get(id uint) (*Farm, error) {
	var farm Farm
	if err := s.db.Preload("Images").First(&farm, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFarmNotFound
		}
		return nil, apperr.Internal("failed to load farm", err)
	}
	return &farm, nil
}

// Owner returns the username of the farmer owning the farm.
func (s *FarmService) Owner(id uint) (string, error) {
	return ownerOf(s.db, id)
}

// OwnerTx is Owner inside a caller's transaction.
func OwnerTx(tx *gorm.DB, id uint) (string, error) {
	return ownerOf(tx, id)
}

func ownerOf(db *gorm.DB, id uint) (string, error) {
	var farm Farm
	if err := db.Select("id", "farmer_username").First(&farm, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrFarmNotFound
		}
		return "", apperr.Internal("failed to load farm", err)
	}
	return farm.FarmerUsername, nil
}

// OwnedFarmIDs returns ids of all farms owned by username.
func (s *FarmService) OwnedFarmIDs(username string) ([]uint, error) {
	var ids []uint
	if err := s.db.Model(&Farm{}).Where("farmer_username = ?", username).Pluck("id", &ids).Error; err != nil {
		return nil, apperr.Internal("failed to load farms", err)
	}
	return ids, nil
}

func (s *FarmService) Update(id uint, p access.Principal, patch *FarmFields) (*Farm, error) {
	farm, err := s.loadOwned(id, p, "You don't have permission to update this farm")
	if err != nil {
		return nil, err
	}

	applyFields(farm, patch)
	if err := validate(farm); err != nil {
		return nil, err
	}
	if err := s.db.Omit(clause.Associations).Save(farm).Error; err != nil {
		return nil, apperr.Internal("failed to update farm", err)
	}

	slog.Info("farm updated", "action", "farm_update", "username", p.Name(), "farm_id", farm.ID)
	return s.Get(id)
}

// Delete removes the farm, its images and (through the foreign key) its
// bids in one transaction, then removes the image files.
func (s *FarmService) Delete(ctx context.Context, id uint, p access.Principal) error {
	if _, err := s.loadOwned(id, p, "You don't have permission to delete this farm"); err != nil {
		return err
	}

	var urls []string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&FarmImage{}).Where("farm_id = ?", id).Pluck("image_url", &urls).Error; err != nil {
			return err
		}
		if err := tx.Where("farm_id = ?", id).Delete(&FarmImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Farm{}, id).Error
	})
	if err != nil {
		return apperr.Internal("failed to delete farm", err)
	}

	for _, url := range urls {
		if err := s.store.Delete(ctx, url); err != nil {
			slog.Error("farm image file not removed", "farm_id", id, "url", url, "error", err)
		}
	}

	slog.Info("farm deleted", "action", "farm_delete", "username", p.Name(), "farm_id", id, "images", len(urls))
	return nil
}

// UploadImages stores every image file and records it against the farm.
// Files that are not images are skipped without error.
func (s *FarmService) UploadImages(ctx context.Context, id uint, p access.Principal, files []*multipart.FileHeader) ([]FarmImage, error) {
	if _, err := s.loadOwned(id, p, "You don't have permission to upload images for this farm"); err != nil {
		return nil, err
	}

	created := make([]FarmImage, 0, len(files))
	for _, fh := range files {
		contentType := fh.Header.Get("Content-Type")
		if !storage.IsImage(contentType) {
			slog.Info("skipping non-image upload", "farm_id", id, "filename", fh.Filename, "content_type", contentType)
			continue
		}

		url, err := s.saveFile(ctx, fh, contentType)
		if err != nil {
			return nil, apperr.Internal("failed to store image", err)
		}

		img := FarmImage{FarmID: id, ImageURL: url}
		if err := s.db.Create(&img).Error; err != nil {
			if delErr := s.store.Delete(ctx, url); delErr != nil {
				slog.Error("orphaned image file", "url", url, "error", delErr)
			}
			return nil, apperr.Internal("failed to record image", err)
		}
		created = append(created, img)
	}

	slog.Info("farm images uploaded", "action", "farm_images_upload", "username", p.Name(), "farm_id", id, "count", len(created))
	return created, nil
}

func (s *FarmService) saveFile(ctx context.Context, fh *multipart.FileHeader, contentType string) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	return s.store.Save(ctx, storage.DirFarmImages, fh.Filename, contentType, f)
}

func (s *FarmService) ListImages(id uint) ([]FarmImage, error) {
	if _, err := s.Owner(id); err != nil {
		return nil, err
	}
	images := []FarmImage{}
	if err := s.db.Where("farm_id = ?", id).Order("id ASC").Find(&images).Error; err != nil {
		return nil, apperr.Internal("failed to list images", err)
	}
	return images, nil
}

func (s *FarmService) DeleteImage(ctx context.Context, imageID uint, p access.Principal) error {
	var img FarmImage
	if err := s.db.First(&img, imageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrImageNotFound
		}
		return apperr.Internal("failed to load image", err)
	}
	if _, err := s.loadOwned(img.FarmID, p, "You don't have permission to delete this image"); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, img.ImageURL); err != nil {
		return apperr.Internal("failed to delete image file", err)
	}
	if err := s.db.Delete(&img).Error; err != nil {
		return apperr.Internal("failed to delete image", err)
	}

	slog.Info("farm image deleted", "action", "farm_image_delete", "username", p.Name(), "image_id", imageID)
	return nil
}

func (s *FarmService) loadOwned(id uint, p access.Principal, denied string) (*Farm, error) {
	var farm Farm
	if err := s.db.First(&farm, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFarmNotFound
		}
		return nil, apperr.Internal("failed to load farm", err)
	}
	if !access.CanMutateFarm(p, farm.FarmerUsername) {
		return nil, apperr.Forbidden(denied)
	}
	return &farm, nil
}

func applyFields(f *Farm, in *FarmFields) {
	if in.FarmLocation != nil {
		f.FarmLocation = strings.TrimSpace(*in.FarmLocation)
	}
	if in.Latitude != nil {
		f.Latitude = in.Latitude
	}
	if in.Longitude != nil {
		f.Longitude = in.Longitude
	}
	if in.FarmArea != nil {
		f.FarmArea = *in.FarmArea
	}
	if in.CropType != nil {
		f.CropType = strings.TrimSpace(*in.CropType)
	}
	if in.IsOrganic != nil {
		f.IsOrganic = *in.IsOrganic
	}
	if in.PesticidesUsed != nil {
		f.PesticidesUsed = in.PesticidesUsed
	}
	if in.ExpectedHarvestDate != nil {
		f.ExpectedHarvestDate = in.ExpectedHarvestDate
	}
	if in.ExpectedQuantity != nil {
		f.ExpectedQuantity = in.ExpectedQuantity
	}
	if in.MinAskingPrice != nil {
		f.MinAskingPrice = in.MinAskingPrice
	}
	if in.FarmStatus != nil {
		f.FarmStatus = *in.FarmStatus
	}
}

func validate(f *Farm) error {
	switch {
	case f.FarmLocation == "":
		return apperr.BadRequest("farm_location must not be empty")
	case f.CropType == "":
		return apperr.BadRequest("crop_type must not be empty")
	case f.FarmArea <= 0:
		return apperr.BadRequest("farm_area must be greater than 0")
	case !f.FarmStatus.Valid():
		return apperr.BadRequest("farm_status must be one of empty, growing, harvested")
	case f.Latitude != nil && (*f.Latitude < -90 || *f.Latitude > 90):
		return apperr.BadRequest("latitude must be between -90 and 90")
	case f.Longitude != nil && (*f.Longitude < -180 || *f.Longitude > 180):
		return apperr.BadRequest("longitude must be between -180 and 180")
	case f.ExpectedQuantity != nil && *f.ExpectedQuantity < 0:
		return apperr.BadRequest("expected_quantity must not be negative")
	case f.MinAskingPrice != nil && *f.MinAskingPrice < 0:
		return apperr.BadRequest("min_asking_price must not be negative")
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func page(list []Farm, skip, limit int) []Farm {
	if skip >= len(list) {
		return []Farm{}
	}
	end := len(list)
	if limit > 0 && skip+limit < end {
		end = skip + limit
	}
	return list[skip:end]
}
