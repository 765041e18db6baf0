package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oksasatya/go-article-feed/internal/domain/entity"
	"github.com/oksasatya/go-article-feed/internal/domain/repository"
)

type ArticleRepository struct {
	coll *mongo.Collection
}

func NewArticleRepository(db *mongo.Database) *ArticleRepository {
	return &ArticleRepository{coll: db.Collection(articlesCollection)}
}

func (r *ArticleRepository) Create(ctx context.Context, a *entity.Article) error {
	author, err := primitive.ObjectIDFromHex(a.Author)
	if err != nil {
		return fmt.Errorf("invalid author id %q: %w", a.Author, err)
	}
	tags := a.Tags
	if tags == nil {
		tags = []string{}
	}
	now := time.Now().UTC()
	doc := articleDocument{
		ID:        primitive.NewObjectID(),
		Title:     a.Title,
		Content:   a.Content,
		Category:  string(a.Category),
		Tags:      tags,
		ImageURL:  a.ImageURL,
		Author:    author,
		Likes:     []primitive.ObjectID{},
		Dislikes:  []primitive.ObjectID{},
		Blocks:    []primitive.ObjectID{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return err
	}
	*a = *doc.toEntity()
	return nil
}

func (r *ArticleRepository) GetByID(ctx context.Context, id string) (*entity.Article, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	var doc articleDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

// GetByIDs returns the articles that exist, in the order of ids.
func (r *ArticleRepository) GetByIDs(ctx context.Context, ids []string) ([]*entity.Article, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return []*entity.Article{}, nil
	}
	found, err := r.find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*entity.Article, len(found))
	for _, a := range found {
		byID[a.ID] = a
	}
	out := make([]*entity.Article, 0, len(found))
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *ArticleRepository) Update(ctx context.Context, id string, patch entity.ArticlePatch) (*entity.Article, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Content != nil {
		set["content"] = *patch.Content
	}
	if patch.Category != nil {
		set["category"] = string(*patch.Category)
	}
	if patch.Tags != nil {
		tags := *patch.Tags
		if tags == nil {
			tags = []string{}
		}
		set["tags"] = tags
	}
	if patch.ImageURL != nil {
		set["imageUrl"] = *patch.ImageURL
	}
	return r.findOneAndUpdate(ctx, id, bson.M{"$set": set})
}

func (r *ArticleRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ArticleRepository) FindByAuthor(ctx context.Context, authorID string) ([]*entity.Article, error) {
	oid, err := primitive.ObjectIDFromHex(authorID)
	if err != nil {
		return []*entity.Article{}, nil
	}
	return r.find(ctx, bson.M{"author": oid})
}

func (r *ArticleRepository) FindByCategories(ctx context.Context, categories []string) ([]*entity.Article, error) {
	if len(categories) == 0 {
		return []*entity.Article{}, nil
	}
	return r.find(ctx, bson.M{"category": bson.M{"$in": categories}})
}

// AddReaction is a single $addToSet so concurrent reactions never lose updates.
func (r *ArticleRepository) AddReaction(ctx context.Context, id, userID string, t entity.ReactionType) (*entity.Article, error) {
	uid, err := reactionTarget(userID, t)
	if err != nil {
		return nil, err
	}
	return r.findOneAndUpdate(ctx, id, bson.M{
		"$addToSet": bson.M{string(t): uid},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	})
}

func (r *ArticleRepository) RemoveReaction(ctx context.Context, id, userID string, t entity.ReactionType) (*entity.Article, error) {
	uid, err := reactionTarget(userID, t)
	if err != nil {
		return nil, err
	}
	return r.findOneAndUpdate(ctx, id, bson.M{
		"$pull": bson.M{string(t): uid},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
}

func reactionTarget(userID string, t entity.ReactionType) (primitive.ObjectID, error) {
	if !t.Valid() {
		return primitive.NilObjectID, fmt.Errorf("unknown reaction type %q", t)
	}
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid user id %q: %w", userID, err)
	}
	return uid, nil
}

func (r *ArticleRepository) findOneAndUpdate(ctx context.Context, id string, update bson.M) (*entity.Article, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc articleDocument
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

func (r *ArticleRepository) find(ctx context.Context, filter bson.M) ([]*entity.Article, error) {
	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cur.Close(ctx) }()
	var docs []articleDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*entity.Article, len(docs))
	for i := range docs {
		out[i] = docs[i].toEntity()
	}
	return out, nil
}

var _ repository.ArticleRepository = (*ArticleRepository)(nil)
