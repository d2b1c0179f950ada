package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	gcs "cloud.google.com/go/storage"
)

const gcsPublicHost = "https://storage.googleapis.com/"

// GCSStore keeps media in a Google Cloud Storage bucket.
type GCSStore struct {
	client *gcs.Client
	bucket string
}

// NewGCSStore uses application default credentials.
func NewGCSStore(ctx context.Context, bucket string) (*GCSStore, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}
	return &GCSStore{client: client, bucket: bucket}, nil
}

func (s *GCSStore) Save(ctx context.Context, dir, originalName, contentType string, r io.Reader) (string, error) {
	object := dir + "/" + uniqueName(originalName)

	w := s.client.Bucket(s.bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("upload %s: %w", object, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize %s: %w", object, err)
	}

	return gcsPublicHost + s.bucket + "/" + object, nil
}

func (s *GCSStore) Delete(ctx context.Context, url string) error {
	object := strings.TrimPrefix(url, gcsPublicHost+s.bucket+"/")
	if object == url {
		return fmt.Errorf("url %q is not in bucket %s", url, s.bucket)
	}
	err := s.client.Bucket(s.bucket).Object(object).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("delete %s: %w", object, err)
	}
	return nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
