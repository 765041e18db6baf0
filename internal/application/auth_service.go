package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-article-feed/internal/domain/entity"
	repo "github.com/oksasatya/go-article-feed/internal/domain/repository"
	"github.com/oksasatya/go-article-feed/pkg/helpers"
)

// Audit actions.
const (
	AuditRegister        = "register"
	AuditLoginSuccess    = "login_success"
	AuditLoginFailed     = "login_failed"
	AuditPasswordChanged = "password_changed"
)

// missingUserHash is compared against when the identifier matches nobody, so
// an unknown account costs the same bcrypt round as a wrong password.
var missingUserHash = sync.OnceValue(func() string {
	h, _ := helpers.HashPassword("article-feed-missing-user")
	return h
})

// comparePassword is swapped in tests.
var comparePassword = helpers.CompareHashAndPassword

type AuthService struct {
	Users  *UserService
	JWT    *helpers.JWTManager
	Events repo.EventPublisher
	Audit  repo.AuditRepository
	Logger logrus.FieldLogger
}

func NewAuthService(users *UserService, jwt *helpers.JWTManager, events repo.EventPublisher, audit repo.AuditRepository, logger logrus.FieldLogger) *AuthService {
	return &AuthService{Users: users, JWT: jwt, Events: events, Audit: audit, Logger: logger}
}

type RegisterInput struct {
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	Password    string
	DateOfBirth time.Time
	Preferences []string
}

// AuthResult is what a successful register or login hands back.
type AuthResult struct {
	User      *entity.User
	Token     string
	ExpiresAt time.Time
}

// Register creates the account and signs a token for it. Email is checked
// before phone; the unique indexes catch a racing duplicate.
func (s *AuthService) Register(ctx context.Context, in RegisterInput, meta RequestMeta) (*AuthResult, error) {
	if !validCategories(in.Preferences) {
		return nil, ErrInvalidCategory
	}
	if err := s.ensureUnused(ctx, s.Users.GetByEmail, in.Email, ErrEmailTaken); err != nil {
		return nil, err
	}
	if err := s.ensureUnused(ctx, s.Users.GetByPhone, in.Phone, ErrPhoneTaken); err != nil {
		return nil, err
	}

	prefs := in.Preferences
	if prefs == nil {
		prefs = []string{}
	}
	u := &entity.User{
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		Phone:       in.Phone,
		Password:    in.Password,
		DateOfBirth: in.DateOfBirth,
		Preferences: prefs,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	res, err := s.issue(u)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Events, s.Logger, entity.EventUserRegistered, map[string]any{
		"userId":      u.ID,
		"email":       u.Email,
		"name":        u.FullName(),
		"preferences": u.Preferences,
	})
	audit(ctx, s.Audit, s.Logger, entity.AuditEntry{
		UserID: u.ID, Email: u.Email, Action: AuditRegister, IP: meta.IP, UserAgent: meta.UserAgent,
	})
	return res, nil
}

// Login accepts an email or a phone number as identifier. Unknown identifiers
// and wrong passwords fail the same way.
func (s *AuthService) Login(ctx context.Context, identifier, password string, meta RequestMeta) (*AuthResult, error) {
	u, err := s.Users.Repo.GetByIdentifier(ctx, identifier)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	hash := missingUserHash()
	if u != nil {
		hash = u.Password
	}
	if !comparePassword(hash, password) || u == nil {
		entry := entity.AuditEntry{Action: AuditLoginFailed, IP: meta.IP, UserAgent: meta.UserAgent,
			Metadata: map[string]any{"identifier": identifier}}
		if u != nil {
			entry.UserID, entry.Email = u.ID, u.Email
		}
		audit(ctx, s.Audit, s.Logger, entry)
		return nil, ErrInvalidCredentials
	}

	res, err := s.issue(u)
	if err != nil {
		return nil, err
	}
	audit(ctx, s.Audit, s.Logger, entity.AuditEntry{
		UserID: u.ID, Email: u.Email, Action: AuditLoginSuccess, IP: meta.IP, UserAgent: meta.UserAgent,
	})
	return res, nil
}

func (s *AuthService) issue(u *entity.User) (*AuthResult, error) {
	token, exp, err := s.JWT.GenerateToken(u.ID, u.Email)
	if err != nil {
		helpers.LogError(s.Logger, "generate token failed", err, logrus.Fields{"user_id": u.ID})
		return nil, err
	}
	return &AuthResult{User: u, Token: token, ExpiresAt: exp}, nil
}

func (s *AuthService) ensureUnused(ctx context.Context, lookup func(context.Context, string) (*entity.User, error), value string, taken error) error {
	_, err := lookup(ctx, value)
	switch {
	case errors.Is(err, ErrUserNotFound):
		return nil
	case err != nil:
		return err
	}
	return taken
}
