package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/oksasatya/go-article-feed/internal/domain/entity"
	"github.com/oksasatya/go-article-feed/internal/domain/repository"
)

// NewGCSClient creates a Google Cloud Storage client. If credsPath is empty, ADC is used.
func NewGCSClient(ctx context.Context, credsPath string) (*storage.Client, error) {
	if credsPath == "" {
		return storage.NewClient(ctx)
	}
	return storage.NewClient(ctx, option.WithCredentialsFile(credsPath))
}

type GCSStore struct {
	client *storage.Client
	bucket string
}

func NewGCSStore(client *storage.Client, bucket string) *GCSStore {
	return &GCSStore{client: client, bucket: bucket}
}

func (s *GCSStore) Upload(ctx context.Context, folder string, img entity.Image) (string, error) {
	key := ObjectKey(folder, img.Filename)
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()
	wc := s.client.Bucket(s.bucket).Object(key).NewWriter(wctx)
	wc.ContentType = img.ContentType
	wc.ChunkSize = 0 // single request for small files
	if err := copyOrAbort(wc, img.Reader, cancel); err != nil {
		return "", fmt.Errorf("gcs upload %s: %w", key, err)
	}
	return GCSPublicURL(s.bucket, key), nil
}

// copyOrAbort streams r into w and commits with Close. A failed copy cancels
// the writer's context instead, so no partial object is finalized.
func copyOrAbort(w io.WriteCloser, r io.Reader, cancel context.CancelFunc) error {
	if _, err := io.Copy(w, r); err != nil {
		cancel()
		return err
	}
	return w.Close()
}

func (s *GCSStore) Delete(ctx context.Context, url string) error {
	key, ok := keyFromURL(GCSPublicURL(s.bucket, ""), url)
	if !ok {
		return nil
	}
	err := s.client.Bucket(s.bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("gcs delete %s: %w", key, err)
	}
	return nil
}

// GCSPublicURL builds the public URL for an object (assuming public read access).
func GCSPublicURL(bucket, objectPath string) string {
	if objectPath == "" {
		return "https://storage.googleapis.com/" + bucket
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, objectPath)
}

var _ repository.ImageStorage = (*GCSStore)(nil)
