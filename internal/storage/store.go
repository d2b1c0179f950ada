// Package storage persists uploaded media (farm photos, crop images).
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/agrimarket/backend/internal/config"
	"github.com/google/uuid"
)

const (
	DirFarmImages = "farm_images"
	DirCropImages = "crop_images"
)

// Store saves uploads under collision-free names and returns the URL the
// file is served from. Delete takes that URL back.
type Store interface {
	Save(ctx context.Context, dir, originalName, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

// New returns the store selected by STORAGE_BACKEND.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StorageBackend {
	case "gcs":
		if cfg.GCSBucket == "" {
			return nil, fmt.Errorf("GCS_BUCKET is required when STORAGE_BACKEND=gcs")
		}
		return NewGCSStore(ctx, cfg.GCSBucket)
	case "local", "":
		return NewLocalStore(cfg.MediaDir, cfg.MediaURLPrefix)
	default:
		return nil, fmt.Errorf("unsupported STORAGE_BACKEND %q", cfg.StorageBackend)
	}
}

// IsImage reports whether a declared content type is an image.
func IsImage(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/")
}

// uniqueName keeps the original extension behind a random UUID.
func uniqueName(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	if len(ext) > 10 {
		ext = ""
	}
	return uuid.NewString() + ext
}
