package repo

import (
	"context"
	"strings"
	"sync"
	"time"

	"askida/internal/domain"
)

// StoredUser is a registered account with its bcrypt hash.
type StoredUser struct {
	domain.User
	PasswordHash []byte
}

// UserRepositoryMem is an in-memory, concurrency-safe user registry keyed by id and email.
type UserRepositoryMem struct {
	mu      sync.RWMutex
	nextID  int64
	byID    map[int64]StoredUser
	byEmail map[string]int64
	now     func() time.Time
}

// NewUserRepository creates an empty registry.
func NewUserRepository() *UserRepositoryMem {
	return &UserRepositoryMem{
		byID:    make(map[int64]StoredUser),
		byEmail: make(map[string]int64),
		now:     time.Now,
	}
}

// Count returns the number of registered users.
func (r *UserRepositoryMem) Count(_ context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// Create assigns an id and stores the user. Emails are unique case-insensitively.
func (r *UserRepositoryMem) Create(_ context.Context, user domain.User, hash []byte) (domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(user.Email))
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[email]; exists {
		return domain.User{}, ErrEmailTaken
	}
	r.nextID++
	user.ID = r.nextID
	user.Email = email
	user.CreatedAt = r.now().UTC().Format(time.RFC3339)
	r.byID[user.ID] = StoredUser{User: user, PasswordHash: hash}
	r.byEmail[email] = user.ID
	return user, nil
}

// GetByEmail looks up a user for login.
func (r *UserRepositoryMem) GetByEmail(_ context.Context, email string) (StoredUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return StoredUser{}, ErrUserNotFound
	}
	return r.byID[id], nil
}

// GetByID fetches a user by id.
func (r *UserRepositoryMem) GetByID(_ context.Context, id int64) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return domain.User{}, ErrUserNotFound
	}
	return u.User, nil
}
