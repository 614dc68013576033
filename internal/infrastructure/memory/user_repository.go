package memory

import (
	"context"
	"strings"
	"sync"

	"habit-garden/internal/domain/entity"
	"habit-garden/internal/domain/repository"

	"github.com/google/uuid"
)

type userRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*entity.User
}

// NewUserRepository creates an empty in-memory profile repository
func NewUserRepository() repository.UserRepository {
	return &userRepository{users: make(map[uuid.UUID]*entity.User)}
}

func cloneUser(u *entity.User) *entity.User {
	c := *u
	c.Friends = append([]uuid.UUID{}, u.Friends...)
	return &c
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; ok {
		return nil
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, entity.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return cloneUser(u), nil
		}
	}
	return nil, entity.ErrUserNotFound
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}

func (r *userRepository) AddFriendPair(ctx context.Context, userID, friendID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.users[userID]
	if !ok {
		return entity.ErrUserNotFound
	}
	b, ok := r.users[friendID]
	if !ok {
		return entity.ErrUserNotFound
	}
	if !a.HasFriend(friendID) {
		a.Friends = append(a.Friends, friendID)
	}
	if !b.HasFriend(userID) {
		b.Friends = append(b.Friends, userID)
	}
	return nil
}
