package repository

import (
	"context"

	"github.com/oksasatya/go-article-feed/internal/domain/entity"
)

// ArticleRepository defines the persistence operations for articles.
// AddReaction and RemoveReaction must be atomic at the document level.
type ArticleRepository interface {
	Create(ctx context.Context, a *entity.Article) error
	GetByID(ctx context.Context, id string) (*entity.Article, error)
	GetByIDs(ctx context.Context, ids []string) ([]*entity.Article, error)
	Update(ctx context.Context, id string, patch entity.ArticlePatch) (*entity.Article, error)
	Delete(ctx context.Context, id string) error
	FindByAuthor(ctx context.Context, authorID string) ([]*entity.Article, error)
	FindByCategories(ctx context.Context, categories []string) ([]*entity.Article, error)
	AddReaction(ctx context.Context, id, userID string, t entity.ReactionType) (*entity.Article, error)
	RemoveReaction(ctx context.Context, id, userID string, t entity.ReactionType) (*entity.Article, error)
}
