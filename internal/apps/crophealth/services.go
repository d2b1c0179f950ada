package crophealth

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/agrimarket/backend/internal/access"
	"github.com/agrimarket/backend/internal/apperr"
	"github.com/agrimarket/backend/internal/storage"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Upload is an image received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

type CropHealthService struct {
	db         *gorm.DB
	store      storage.Store
	classifier Classifier
}

func NewCropHealthService(db *gorm.DB, store storage.Store, classifier Classifier) *CropHealthService {
	return &CropHealthService{db: db, store: store, classifier: classifier}
}

// Identify stores the image, classifies it and records the result. Exactly
// one record is written per successful call.
func (s *CropHealthService) Identify(ctx context.Context, p access.Principal, img Upload, notes *string) (*IdentifyResponse, error) {
	if !storage.IsImage(img.ContentType) {
		return nil, apperr.BadRequest("File must be an image")
	}
	if len(img.Data) == 0 {
		return nil, apperr.BadRequest("Image file is empty")
	}

	url, err := s.store.Save(ctx, storage.DirCropImages, img.Filename, img.ContentType, bytes.NewReader(img.Data))
	if err != nil {
		return nil, apperr.Internal("Error saving file", err)
	}

	diagnosis, err := s.classifier.Identify(ctx, img.Filename, img.ContentType, img.Data)
	if err != nil {
		s.discard(ctx, url)
		if apperr.KindOf(err) == apperr.KindUpstream {
			slog.Warn("crop classifier failed", "username", p.Name(), "error", err)
		}
		return nil, err
	}

	treatment, err := json.Marshal(diagnosis.Treatment)
	if err != nil {
		s.discard(ctx, url)
		return nil, apperr.Internal("failed to encode treatment", err)
	}
	record := &CropHealthRecord{
		UserID:          p.UserID(),
		ImagePath:       url,
		DetectedDisease: diagnosis.Name,
		ScientificName:  diagnosis.ScientificName,
		ConfidenceScore: diagnosis.Probability,
		Treatment:       datatypes.JSON(treatment),
		Notes:           notes,
		Timestamp:       time.Now().UTC(),
	}
	if err := s.db.Create(record).Error; err != nil {
		s.discard(ctx, url)
		return nil, apperr.Internal("failed to record crop health result", err)
	}

	slog.Info("crop disease identified",
		"action", "crop_identify",
		"username", p.Name(),
		"record_id", record.ID,
		"disease", diagnosis.Name,
		"probability", diagnosis.Probability,
	)
	return &IdentifyResponse{RecordID: record.ID, Diagnosis: *diagnosis}, nil
}

// History lists the caller's records, newest first.
func (s *CropHealthService) History(p access.Principal, skip, limit int) ([]CropHealthRecord, error) {
	records := []CropHealthRecord{}
	err := s.db.Where("user_id = ?", p.UserID()).
		Order("timestamp DESC").Order("id DESC").
		Offset(skip).Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, apperr.Internal("failed to list crop health records", err)
	}
	return records, nil
}

func (s *CropHealthService) discard(ctx context.Context, url string) {
	if err := s.store.Delete(ctx, url); err != nil {
		slog.Error("crop image not removed", "url", url, "error", err)
	}
}
