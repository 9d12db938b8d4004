package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go-auth-portal/internal/model"
)

// MemoryUserRepository is a process-local CredentialRepository used by tests
// and by STORE_DRIVER=memory.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]model.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: map[string]model.User{}}
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if u, ok := r.findLocked(func(u model.User) bool { return u.Email == model.NormalizeEmail(email) }); ok {
		return u, nil
	}
	return model.User{}, model.ErrUserNotFound
}

func (r *MemoryUserRepository) FindByUsername(_ context.Context, username string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if u, ok := r.findLocked(usernameMatcher(username)); ok {
		return u, nil
	}
	return model.User{}, model.ErrUserNotFound
}

func (r *MemoryUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	return err == nil, nil
}

func (r *MemoryUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.FindByUsername(ctx, username)
	return err == nil, nil
}

func (r *MemoryUserRepository) List(_ context.Context) ([]model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

func (r *MemoryUserRepository) Create(_ context.Context, u model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u.Email = model.NormalizeEmail(u.Email)
	if _, ok := r.findLocked(func(existing model.User) bool { return existing.Email == u.Email }); ok {
		return model.ErrEmailExists
	}
	if _, ok := r.findLocked(usernameMatcher(u.Username)); ok {
		return model.ErrUsernameExists
	}

	r.users[u.ID] = u
	return nil
}

func (r *MemoryUserRepository) Update(_ context.Context, u model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.users[u.ID]
	if !ok {
		return model.ErrUserNotFound
	}
	if other, taken := r.findLocked(usernameMatcher(u.Username)); taken && other.ID != u.ID {
		return model.ErrUsernameExists
	}

	// email and creation time are immutable, matching the postgres adapter
	u.Email = current.Email
	u.CreatedAt = current.CreatedAt
	r.users[u.ID] = u
	return nil
}

func (r *MemoryUserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return model.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *MemoryUserRepository) findLocked(match func(model.User) bool) (model.User, bool) {
	for _, u := range r.users {
		if match(u) {
			return u, true
		}
	}
	return model.User{}, false
}

func usernameMatcher(username string) func(model.User) bool {
	key := strings.ToLower(strings.TrimSpace(username))
	return func(u model.User) bool { return strings.ToLower(u.Username) == key }
}

type MemoryTokenRepository struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewMemoryTokenRepository() *MemoryTokenRepository {
	return &MemoryTokenRepository{revoked: map[string]time.Time{}, now: nowUTC}
}

func (r *MemoryTokenRepository) Revoke(_ context.Context, tokenID string, _ string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.revoked[tokenID]; !exists {
		r.revoked[tokenID] = expiresAt
	}
	return nil
}

func (r *MemoryTokenRepository) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, exists := r.revoked[tokenID]
	return exists, nil
}

func (r *MemoryTokenRepository) CleanExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	var removed int64
	for id, expiresAt := range r.revoked {
		if !expiresAt.After(now) {
			delete(r.revoked, id)
			removed++
		}
	}
	return removed, nil
}
