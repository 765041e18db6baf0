package mongodb

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/oksasatya/go-article-feed/internal/domain/entity"
	"github.com/oksasatya/go-article-feed/internal/domain/repository"
)

func TestArticleDocumentToEntity(t *testing.T) {
	author := primitive.NewObjectID()
	liker := primitive.NewObjectID()
	doc := articleDocument{
		ID:       primitive.NewObjectID(),
		Title:    "T",
		Category: "Science",
		Author:   author,
		Likes:    []primitive.ObjectID{liker},
	}
	a := doc.toEntity()
	if a.ID != doc.ID.Hex() || a.Author != author.Hex() || a.Category != entity.CategoryScience {
		t.Fatalf("unexpected article %+v", a)
	}
	if len(a.Likes) != 1 || a.Likes[0] != liker.Hex() {
		t.Fatalf("likes not converted: %v", a.Likes)
	}
	if a.Tags == nil || a.Dislikes == nil || a.Blocks == nil {
		t.Fatal("empty sets should serialize as [] not null")
	}
}

func TestUserDocumentToEntity(t *testing.T) {
	doc := userDocument{ID: primitive.NewObjectID(), Email: "a@example.com", Password: "hash"}
	u := doc.toEntity()
	if u.ID != doc.ID.Hex() || u.Password != "hash" || u.Preferences == nil {
		t.Fatalf("unexpected user %+v", u)
	}
}

func TestReactionTarget(t *testing.T) {
	uid := primitive.NewObjectID()
	got, err := reactionTarget(uid.Hex(), entity.ReactionDislikes)
	if err != nil || got != uid {
		t.Fatalf("reactionTarget: %v %v", got, err)
	}
	if _, err := reactionTarget(uid.Hex(), entity.ReactionType("loves")); err == nil {
		t.Fatal("unknown reaction type must fail")
	}
	if _, err := reactionTarget("not-hex", entity.ReactionLikes); err == nil {
		t.Fatal("invalid user id must fail")
	}
}

func TestMapWriteError(t *testing.T) {
	dup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key"}}}
	if err := mapWriteError(dup); !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	other := errors.New("boom")
	if err := mapWriteError(other); err != other {
		t.Fatalf("other errors should pass through, got %v", err)
	}
}
