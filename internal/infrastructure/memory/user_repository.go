// Package memory holds concurrency-safe in-process implementations of the
// repository and adapter ports. They back STORE_DRIVER=memory and the tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/go-article-feed/internal/domain/entity"
	"github.com/oksasatya/go-article-feed/internal/domain/repository"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[string]entity.User
	order []string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]entity.User)}
}

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conflictLocked("", u.Email, u.Phone) {
		return repository.ErrDuplicate
	}
	now := time.Now().UTC()
	stored := cloneUser(*u)
	stored.ID = uuid.NewString()
	if stored.Preferences == nil {
		stored.Preferences = []string{}
	}
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.users[stored.ID] = stored
	r.order = append(r.order, stored.ID)
	*u = cloneUser(stored)
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := cloneUser(u)
	return &out, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.findFirst(func(u entity.User) bool { return u.Email == email })
}

func (r *UserRepository) GetByPhone(_ context.Context, phone string) (*entity.User, error) {
	return r.findFirst(func(u entity.User) bool { return u.Phone == phone })
}

func (r *UserRepository) GetByIdentifier(_ context.Context, identifier string) (*entity.User, error) {
	return r.findFirst(func(u entity.User) bool { return u.Email == identifier || u.Phone == identifier })
}

func (r *UserRepository) Update(_ context.Context, id string, patch entity.UserPatch) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if r.conflictLocked(id, patch.Email, patch.Phone) {
		return nil, repository.ErrDuplicate
	}
	if patch.FirstName != "" {
		u.FirstName = patch.FirstName
	}
	if patch.LastName != "" {
		u.LastName = patch.LastName
	}
	if patch.Email != "" {
		u.Email = patch.Email
	}
	if patch.Phone != "" {
		u.Phone = patch.Phone
	}
	if !patch.DateOfBirth.IsZero() {
		u.DateOfBirth = patch.DateOfBirth
	}
	if patch.ProfileImage != "" {
		u.ProfileImage = patch.ProfileImage
	}
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	out := cloneUser(u)
	return &out, nil
}

func (r *UserRepository) UpdatePassword(_ context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Password = hash
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return nil
}

func (r *UserRepository) UpdatePreferences(_ context.Context, id string, preferences []string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.Preferences = append([]string{}, preferences...)
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	out := cloneUser(u)
	return &out, nil
}

// Count returns the number of stored users.
func (r *UserRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

func (r *UserRepository) findFirst(match func(entity.User) bool) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range r.order {
		if u := r.users[id]; match(u) {
			out := cloneUser(u)
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

// conflictLocked reports whether another user already owns email or phone.
func (r *UserRepository) conflictLocked(selfID, email, phone string) bool {
	for id, u := range r.users {
		if id == selfID {
			continue
		}
		if (email != "" && u.Email == email) || (phone != "" && u.Phone == phone) {
			return true
		}
	}
	return false
}

func cloneUser(u entity.User) entity.User {
	if u.Preferences != nil {
		u.Preferences = append([]string{}, u.Preferences...)
	}
	return u
}

var _ repository.UserRepository = (*UserRepository)(nil)
