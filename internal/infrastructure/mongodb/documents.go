package mongodb

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/go-article-feed/internal/domain/entity"
)

type userDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	FirstName    string             `bson:"firstName"`
	LastName     string             `bson:"lastName"`
	Email        string             `bson:"email"`
	Phone        string             `bson:"phone"`
	Password     string             `bson:"password"`
	DateOfBirth  time.Time          `bson:"dateOfBirth"`
	ProfileImage string             `bson:"profileImage,omitempty"`
	Preferences  []string           `bson:"preferences"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

func (d *userDocument) toEntity() *entity.User {
	prefs := d.Preferences
	if prefs == nil {
		prefs = []string{}
	}
	return &entity.User{
		ID:           d.ID.Hex(),
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Email:        d.Email,
		Phone:        d.Phone,
		Password:     d.Password,
		DateOfBirth:  d.DateOfBirth,
		ProfileImage: d.ProfileImage,
		Preferences:  prefs,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type articleDocument struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty"`
	Title     string               `bson:"title"`
	Content   string               `bson:"content"`
	Category  string               `bson:"category"`
	Tags      []string             `bson:"tags"`
	ImageURL  string               `bson:"imageUrl,omitempty"`
	Author    primitive.ObjectID   `bson:"author"`
	Likes     []primitive.ObjectID `bson:"likes"`
	Dislikes  []primitive.ObjectID `bson:"dislikes"`
	Blocks    []primitive.ObjectID `bson:"blocks"`
	CreatedAt time.Time            `bson:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt"`
}

func (d *articleDocument) toEntity() *entity.Article {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return &entity.Article{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		Content:   d.Content,
		Category:  entity.Category(d.Category),
		Tags:      tags,
		ImageURL:  d.ImageURL,
		Author:    d.Author.Hex(),
		Likes:     hexes(d.Likes),
		Dislikes:  hexes(d.Dislikes),
		Blocks:    hexes(d.Blocks),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func hexes(ids []primitive.ObjectID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Hex()
	}
	return out
}
