package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/go-article-feed/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no document matches the lookup.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique constraint is violated.
	ErrDuplicate = errors.New("duplicate key")
)

// UserRepository defines the persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByPhone(ctx context.Context, phone string) (*entity.User, error)
	// GetByIdentifier matches the identifier against email or phone.
	GetByIdentifier(ctx context.Context, identifier string) (*entity.User, error)
	Update(ctx context.Context, id string, patch entity.UserPatch) (*entity.User, error)
	UpdatePassword(ctx context.Context, id, hash string) error
	UpdatePreferences(ctx context.Context, id string, preferences []string) (*entity.User, error)
}
