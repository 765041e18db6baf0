package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/go-article-feed/internal/domain/entity"
	"github.com/oksasatya/go-article-feed/internal/domain/repository"
)

type ArticleRepository struct {
	mu       sync.RWMutex
	articles map[string]entity.Article
	order    []string
}

func NewArticleRepository() *ArticleRepository {
	return &ArticleRepository{articles: make(map[string]entity.Article)}
}

func (r *ArticleRepository) Create(_ context.Context, a *entity.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	stored := cloneArticle(*a)
	stored.ID = uuid.NewString()
	if stored.Tags == nil {
		stored.Tags = []string{}
	}
	stored.Likes, stored.Dislikes, stored.Blocks = []string{}, []string{}, []string{}
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.articles[stored.ID] = stored
	r.order = append(r.order, stored.ID)
	*a = cloneArticle(stored)
	return nil
}

func (r *ArticleRepository) GetByID(_ context.Context, id string) (*entity.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.articles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := cloneArticle(a)
	return &out, nil
}

func (r *ArticleRepository) GetByIDs(_ context.Context, ids []string) ([]*entity.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.Article, 0, len(ids))
	for _, id := range ids {
		if a, ok := r.articles[id]; ok {
			c := cloneArticle(a)
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *ArticleRepository) Update(_ context.Context, id string, patch entity.ArticlePatch) (*entity.Article, error) {
	return r.mutate(id, func(a *entity.Article) {
		if patch.Title != nil {
			a.Title = *patch.Title
		}
		if patch.Content != nil {
			a.Content = *patch.Content
		}
		if patch.Category != nil {
			a.Category = *patch.Category
		}
		if patch.Tags != nil {
			a.Tags = append([]string{}, (*patch.Tags)...)
		}
		if patch.ImageURL != nil {
			a.ImageURL = *patch.ImageURL
		}
	})
}

func (r *ArticleRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.articles[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.articles, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *ArticleRepository) FindByAuthor(_ context.Context, authorID string) ([]*entity.Article, error) {
	return r.filter(func(a entity.Article) bool { return a.Author == authorID }), nil
}

func (r *ArticleRepository) FindByCategories(_ context.Context, categories []string) ([]*entity.Article, error) {
	set := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		set[c] = struct{}{}
	}
	return r.filter(func(a entity.Article) bool {
		_, ok := set[string(a.Category)]
		return ok
	}), nil
}

func (r *ArticleRepository) AddReaction(_ context.Context, id, userID string, t entity.ReactionType) (*entity.Article, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("unknown reaction type %q", t)
	}
	return r.mutate(id, func(a *entity.Article) {
		set := reactionSet(a, t)
		for _, v := range *set {
			if v == userID {
				return
			}
		}
		*set = append(*set, userID)
	})
}

func (r *ArticleRepository) RemoveReaction(_ context.Context, id, userID string, t entity.ReactionType) (*entity.Article, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("unknown reaction type %q", t)
	}
	return r.mutate(id, func(a *entity.Article) {
		set := reactionSet(a, t)
		kept := (*set)[:0]
		for _, v := range *set {
			if v != userID {
				kept = append(kept, v)
			}
		}
		*set = kept
	})
}

func (r *ArticleRepository) mutate(id string, fn func(a *entity.Article)) (*entity.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.articles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	a = cloneArticle(a)
	fn(&a)
	a.UpdatedAt = time.Now().UTC()
	r.articles[id] = a
	out := cloneArticle(a)
	return &out, nil
}

func (r *ArticleRepository) filter(match func(entity.Article) bool) []*entity.Article {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.Article, 0)
	for _, id := range r.order {
		if a := r.articles[id]; match(a) {
			c := cloneArticle(a)
			out = append(out, &c)
		}
	}
	return out
}

func reactionSet(a *entity.Article, t entity.ReactionType) *[]string {
	switch t {
	case entity.ReactionDislikes:
		return &a.Dislikes
	case entity.ReactionBlocks:
		return &a.Blocks
	default:
		return &a.Likes
	}
}

func cloneArticle(a entity.Article) entity.Article {
	a.Tags = cloneStrings(a.Tags)
	a.Likes = cloneStrings(a.Likes)
	a.Dislikes = cloneStrings(a.Dislikes)
	a.Blocks = cloneStrings(a.Blocks)
	return a
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string{}, s...)
}

var _ repository.ArticleRepository = (*ArticleRepository)(nil)
