package memory

import (
	"bytes"
	"context"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/oksasatya/go-article-feed/internal/domain/entity"
	"github.com/oksasatya/go-article-feed/internal/domain/repository"
)

// ImageStore keeps uploaded images in memory under BaseURL.
// Set FailWith to make every upload fail.
type ImageStore struct {
	BaseURL  string
	FailWith error

	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func NewImageStore(baseURL string) *ImageStore {
	if baseURL == "" {
		baseURL = "memory://images"
	}
	return &ImageStore{BaseURL: strings.TrimRight(baseURL, "/"), objects: make(map[string][]byte)}
}

func (s *ImageStore) Upload(_ context.Context, folder string, img entity.Image) (string, error) {
	if s.FailWith != nil {
		return "", s.FailWith
	}
	var buf bytes.Buffer
	if img.Reader != nil {
		if _, err := io.Copy(&buf, img.Reader); err != nil {
			return "", err
		}
	}
	key := folder + "/" + uuid.NewString() + "-" + path.Base(img.Filename)
	url := s.BaseURL + "/" + key

	s.mu.Lock()
	s.objects[url] = buf.Bytes()
	s.mu.Unlock()
	return url, nil
}

func (s *ImageStore) Delete(_ context.Context, url string) error {
	if !strings.HasPrefix(url, s.BaseURL+"/") {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[url]; ok {
		delete(s.objects, url)
		s.deleted = append(s.deleted, url)
	}
	return nil
}

// Has reports whether url is currently stored.
func (s *ImageStore) Has(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[url]
	return ok
}

// Len returns the number of stored images.
func (s *ImageStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// Deleted returns the URLs removed so far.
func (s *ImageStore) Deleted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.deleted...)
}

var _ repository.ImageStorage = (*ImageStore)(nil)
