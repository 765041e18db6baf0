package repository

import (
	"context"

	"github.com/oksasatya/go-article-feed/internal/domain/entity"
)

// ImageStorage uploads images and returns their public URL.
type ImageStorage interface {
	Upload(ctx context.Context, folder string, img entity.Image) (string, error)
	// Delete removes the object a previously returned URL points at.
	// URLs the store did not issue are ignored.
	Delete(ctx context.Context, url string) error
}

// ArticleIndex is the full-text search side of articles.
type ArticleIndex interface {
	Index(ctx context.Context, a *entity.Article) error
	Remove(ctx context.Context, id string) error
	// Search returns matching article ids ordered by relevance.
	Search(ctx context.Context, query string, size int) ([]string, error)
}

const (
	DefaultSearchSize = 10
	MaxSearchSize     = 50
)

// SearchSize normalizes a requested result count. Out of range values fall
// back to DefaultSearchSize so every index answers the same query alike.
func SearchSize(n int) int {
	if n <= 0 || n > MaxSearchSize {
		return DefaultSearchSize
	}
	return n
}

// EventPublisher hands domain events to the message broker.
type EventPublisher interface {
	Publish(ctx context.Context, e entity.Event) error
}
