package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-article-feed/internal/domain/entity"
	repo "github.com/oksasatya/go-article-feed/internal/domain/repository"
	"github.com/oksasatya/go-article-feed/pkg/helpers"
)

type UserService struct {
	Repo   repo.UserRepository
	Images repo.ImageStorage
	Events repo.EventPublisher
	Audit  repo.AuditRepository
	Logger logrus.FieldLogger
}

func NewUserService(users repo.UserRepository, images repo.ImageStorage, events repo.EventPublisher, audit repo.AuditRepository, logger logrus.FieldLogger) *UserService {
	return &UserService{Repo: users, Images: images, Events: events, Audit: audit, Logger: logger}
}

// Create hashes u.Password (plain text on input) and stores the user.
func (s *UserService) Create(ctx context.Context, u *entity.User) error {
	if u.Password == "" {
		return ErrPasswordRequired
	}
	hash, err := helpers.HashPassword(u.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.Password = hash
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return ErrUserExists
		}
		return err
	}
	return nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return userLookup(s.Repo.GetByID(ctx, id))
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return userLookup(s.Repo.GetByEmail(ctx, email))
}

func (s *UserService) GetByPhone(ctx context.Context, phone string) (*entity.User, error) {
	return userLookup(s.Repo.GetByPhone(ctx, phone))
}

type UpdateProfileInput struct {
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	DateOfBirth time.Time
}

// UpdateProfile replaces the non-empty fields of in. A new image is uploaded
// before anything is written; the previous image is removed afterwards.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput, img *entity.Image) (*entity.User, error) {
	current, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.Email != "" && in.Email != current.Email {
		if err := s.ensureFree(ctx, s.Repo.GetByEmail, in.Email, userID, ErrEmailTaken); err != nil {
			return nil, err
		}
	}
	if in.Phone != "" && in.Phone != current.Phone {
		if err := s.ensureFree(ctx, s.Repo.GetByPhone, in.Phone, userID, ErrPhoneTaken); err != nil {
			return nil, err
		}
	}

	patch := entity.UserPatch{
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		Phone:       in.Phone,
		DateOfBirth: in.DateOfBirth,
	}
	if img != nil {
		url, err := s.Images.Upload(ctx, ProfileImagesFolder, *img)
		if err != nil {
			return nil, fmt.Errorf("upload profile image: %w", err)
		}
		patch.ProfileImage = url
	}

	updated, err := s.Repo.Update(ctx, userID, patch)
	if err != nil {
		discardImage(ctx, s.Images, s.Logger, patch.ProfileImage)
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, repo.ErrDuplicate):
			return nil, ErrUserExists
		}
		return nil, err
	}
	if patch.ProfileImage != "" && current.ProfileImage != patch.ProfileImage {
		discardImage(ctx, s.Images, s.Logger, current.ProfileImage)
	}
	return updated, nil
}

func (s *UserService) UpdatePassword(ctx context.Context, userID, currentPassword, newPassword string, meta RequestMeta) error {
	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !helpers.CompareHashAndPassword(u.Password, currentPassword) {
		return ErrIncorrectPassword
	}
	if newPassword == "" {
		return ErrPasswordRequired
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.Repo.UpdatePassword(ctx, userID, hash); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	publish(ctx, s.Events, s.Logger, entity.EventPasswordChanged, map[string]any{
		"userId": u.ID,
		"email":  u.Email,
		"name":   u.FullName(),
	})
	audit(ctx, s.Audit, s.Logger, entity.AuditEntry{
		UserID: u.ID, Email: u.Email, Action: AuditPasswordChanged, IP: meta.IP, UserAgent: meta.UserAgent,
	})
	return nil
}

// UpdatePreferences overwrites the stored preferences with categories.
func (s *UserService) UpdatePreferences(ctx context.Context, userID string, categories []string) (*entity.User, error) {
	if !validCategories(categories) {
		return nil, ErrInvalidCategory
	}
	if categories == nil {
		categories = []string{}
	}
	return userLookup(s.Repo.UpdatePreferences(ctx, userID, categories))
}

func (s *UserService) ensureFree(ctx context.Context, lookup func(context.Context, string) (*entity.User, error), value, selfID string, taken error) error {
	other, err := lookup(ctx, value)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return nil
	case err != nil:
		return err
	case other.ID != selfID:
		return taken
	}
	return nil
}

func userLookup(u *entity.User, err error) (*entity.User, error) {
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}
