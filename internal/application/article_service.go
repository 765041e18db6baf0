package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-article-feed/internal/domain/entity"
	repo "github.com/oksasatya/go-article-feed/internal/domain/repository"
	"github.com/oksasatya/go-article-feed/pkg/helpers"
)

type ArticleService struct {
	Repo   repo.ArticleRepository
	Images repo.ImageStorage
	Index  repo.ArticleIndex
	Events repo.EventPublisher
	Logger logrus.FieldLogger

	// EnforceOwnership restricts update and delete to the article author.
	EnforceOwnership bool
}

func NewArticleService(articles repo.ArticleRepository, images repo.ImageStorage, index repo.ArticleIndex, events repo.EventPublisher, logger logrus.FieldLogger, enforceOwnership bool) *ArticleService {
	return &ArticleService{
		Repo:             articles,
		Images:           images,
		Index:            index,
		Events:           events,
		Logger:           logger,
		EnforceOwnership: enforceOwnership,
	}
}

type CreateArticleInput struct {
	Title    string
	Content  string
	Category entity.Category
	Tags     []string
}

// UpdateArticleInput holds the fields to replace; nil means keep.
type UpdateArticleInput struct {
	Title    *string
	Content  *string
	Category *entity.Category
	Tags     *[]string
}

func (s *ArticleService) Create(ctx context.Context, authorID string, in CreateArticleInput, img *entity.Image) (*entity.Article, error) {
	if !in.Category.Valid() {
		return nil, ErrInvalidCategory
	}
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	a := &entity.Article{
		Title:    in.Title,
		Content:  in.Content,
		Category: in.Category,
		Tags:     tags,
		Author:   authorID,
	}
	if img != nil {
		url, err := s.Images.Upload(ctx, ArticleImagesFolder, *img)
		if err != nil {
			return nil, fmt.Errorf("upload article image: %w", err)
		}
		a.ImageURL = url
	}
	if err := s.Repo.Create(ctx, a); err != nil {
		discardImage(ctx, s.Images, s.Logger, a.ImageURL)
		return nil, err
	}

	s.reindex(ctx, a)
	publish(ctx, s.Events, s.Logger, entity.EventArticleCreated, map[string]any{
		"articleId": a.ID,
		"author":    a.Author,
		"category":  string(a.Category),
		"title":     a.Title,
	})
	return a, nil
}

// Update replaces the given fields. Without a new image the stored imageUrl
// is kept; with one, the old object is removed after the write succeeds.
func (s *ArticleService) Update(ctx context.Context, id, callerID string, in UpdateArticleInput, img *entity.Image) (*entity.Article, error) {
	current, err := s.authorize(ctx, id, callerID)
	if err != nil {
		return nil, err
	}
	if in.Category != nil && !in.Category.Valid() {
		return nil, ErrInvalidCategory
	}

	patch := entity.ArticlePatch{
		Title:    in.Title,
		Content:  in.Content,
		Category: in.Category,
		Tags:     in.Tags,
	}
	if img != nil {
		url, err := s.Images.Upload(ctx, ArticleImagesFolder, *img)
		if err != nil {
			return nil, fmt.Errorf("upload article image: %w", err)
		}
		patch.ImageURL = &url
	}
	if patch.IsEmpty() {
		return current, nil
	}

	updated, err := s.Repo.Update(ctx, id, patch)
	if err != nil {
		if patch.ImageURL != nil {
			discardImage(ctx, s.Images, s.Logger, *patch.ImageURL)
		}
		return nil, articleErr(err)
	}
	if patch.ImageURL != nil && current.ImageURL != *patch.ImageURL {
		discardImage(ctx, s.Images, s.Logger, current.ImageURL)
	}
	s.reindex(ctx, updated)
	return updated, nil
}

func (s *ArticleService) Delete(ctx context.Context, id, callerID string) error {
	current, err := s.authorize(ctx, id, callerID)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return articleErr(err)
	}

	discardImage(ctx, s.Images, s.Logger, current.ImageURL)
	if s.Index != nil {
		if err := s.Index.Remove(ctx, id); err != nil {
			helpers.LogWarn(s.Logger, "search remove failed", err, logrus.Fields{"article_id": id})
		}
	}
	publish(ctx, s.Events, s.Logger, entity.EventArticleDeleted, map[string]any{
		"articleId": id,
		"author":    current.Author,
		"deletedBy": callerID,
	})
	return nil
}

func (s *ArticleService) Get(ctx context.Context, id string) (*entity.Article, error) {
	a, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, articleErr(err)
	}
	return a, nil
}

// Feed returns the articles whose category is one of preferences.
func (s *ArticleService) Feed(ctx context.Context, preferences []string) ([]*entity.Article, error) {
	if len(preferences) == 0 {
		return []*entity.Article{}, nil
	}
	return s.Repo.FindByCategories(ctx, preferences)
}

func (s *ArticleService) ListByAuthor(ctx context.Context, authorID string) ([]*entity.Article, error) {
	return s.Repo.FindByAuthor(ctx, authorID)
}

func (s *ArticleService) AddReaction(ctx context.Context, id, userID string, t entity.ReactionType) (*entity.Article, error) {
	if !t.Valid() {
		return nil, ErrInvalidReaction
	}
	a, err := s.Repo.AddReaction(ctx, id, userID, t)
	if err != nil {
		return nil, articleErr(err)
	}
	publish(ctx, s.Events, s.Logger, entity.EventReactionAdded, reactionData(id, userID, t))
	return a, nil
}

func (s *ArticleService) RemoveReaction(ctx context.Context, id, userID string, t entity.ReactionType) (*entity.Article, error) {
	if !t.Valid() {
		return nil, ErrInvalidReaction
	}
	a, err := s.Repo.RemoveReaction(ctx, id, userID, t)
	if err != nil {
		return nil, articleErr(err)
	}
	publish(ctx, s.Events, s.Logger, entity.EventReactionRemoved, reactionData(id, userID, t))
	return a, nil
}

// Search returns articles matching query in relevance order. Hits whose
// article no longer exists are skipped.
func (s *ArticleService) Search(ctx context.Context, query string, size int) ([]*entity.Article, error) {
	if s.Index == nil {
		return nil, ErrSearchUnavailable
	}
	ids, err := s.Index.Search(ctx, query, size)
	if err != nil {
		return nil, fmt.Errorf("search articles: %w", err)
	}
	if len(ids) == 0 {
		return []*entity.Article{}, nil
	}
	return s.Repo.GetByIDs(ctx, ids)
}

func (s *ArticleService) authorize(ctx context.Context, id, callerID string) (*entity.Article, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.EnforceOwnership && a.Author != callerID {
		return nil, ErrForbidden
	}
	return a, nil
}

func (s *ArticleService) reindex(ctx context.Context, a *entity.Article) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, a); err != nil {
		helpers.LogWarn(s.Logger, "search index failed", err, logrus.Fields{"article_id": a.ID})
	}
}

func reactionData(id, userID string, t entity.ReactionType) map[string]any {
	return map[string]any{"articleId": id, "userId": userID, "type": string(t)}
}

func articleErr(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return ErrArticleNotFound
	}
	return err
}
