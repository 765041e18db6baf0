package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oksasatya/go-article-feed/internal/domain/entity"
	"github.com/oksasatya/go-article-feed/internal/domain/repository"
)

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	now := time.Now().UTC()
	prefs := u.Preferences
	if prefs == nil {
		prefs = []string{}
	}
	doc := userDocument{
		ID:           primitive.NewObjectID(),
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		Phone:        u.Phone,
		Password:     u.Password,
		DateOfBirth:  u.DateOfBirth,
		ProfileImage: u.ProfileImage,
		Preferences:  prefs,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return mapWriteError(err)
	}
	*u = *doc.toEntity()
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) GetByPhone(ctx context.Context, phone string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"phone": phone})
}

func (r *UserRepository) GetByIdentifier(ctx context.Context, identifier string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"email": identifier},
		bson.M{"phone": identifier},
	}})
}

func (r *UserRepository) Update(ctx context.Context, id string, patch entity.UserPatch) (*entity.User, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.FirstName != "" {
		set["firstName"] = patch.FirstName
	}
	if patch.LastName != "" {
		set["lastName"] = patch.LastName
	}
	if patch.Email != "" {
		set["email"] = patch.Email
	}
	if patch.Phone != "" {
		set["phone"] = patch.Phone
	}
	if !patch.DateOfBirth.IsZero() {
		set["dateOfBirth"] = patch.DateOfBirth
	}
	if patch.ProfileImage != "" {
		set["profileImage"] = patch.ProfileImage
	}
	return r.findOneAndSet(ctx, id, set)
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrNotFound
	}
	res, err := r.coll.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"password":  hash,
		"updatedAt": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePreferences(ctx context.Context, id string, preferences []string) (*entity.User, error) {
	if preferences == nil {
		preferences = []string{}
	}
	return r.findOneAndSet(ctx, id, bson.M{
		"preferences": preferences,
		"updatedAt":   time.Now().UTC(),
	})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*entity.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

func (r *UserRepository) findOneAndSet(ctx context.Context, id string, set bson.M) (*entity.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc userDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, mapWriteError(err)
	}
	return doc.toEntity(), nil
}

func mapWriteError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrDuplicate
	}
	return err
}

var _ repository.UserRepository = (*UserRepository)(nil)
