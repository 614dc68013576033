package service

import (
	"context"

	"habit-garden/internal/domain/entity"

	"github.com/google/uuid"
)

// FriendService defines the interface for profiles and friendships
type FriendService interface {
	EnsureProfile(ctx context.Context, userID uuid.UUID, email string) (*entity.User, error)

	// AddFriendByEmail befriends the user registered with email, in both directions
	AddFriendByEmail(ctx context.Context, userID uuid.UUID, email string) (*entity.User, error)

	ListFriends(ctx context.Context, userID uuid.UUID) ([]*entity.User, error)
}
