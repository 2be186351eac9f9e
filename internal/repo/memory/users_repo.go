package memory

import (
	"context"
	"sync"
	"time"

	"github.com/lostboitest/casemanage/internal/domain/user"
)

type UsersRepo struct {
	mu     sync.RWMutex
	items  map[int64]user.User
	nextID int64
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items:  make(map[int64]user.User),
		nextID: 1,
	}
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	r.mu.RLock()
	u, ok := r.items[id]
	r.mu.RUnlock()

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

func (r *UsersRepo) GetByUsername(ctx context.Context, username string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.items {
		if u.Username == username {
			return u, nil
		}
	}

	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) Create(ctx context.Context, username, passwordHash string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := user.User{
		ID:           r.nextID,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	r.nextID++
	r.items[u.ID] = u

	return u, nil
}
