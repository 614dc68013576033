package repository

import (
	"context"

	"habit-garden/internal/domain/entity"

	"github.com/google/uuid"
)

// UserRepository defines the interface for profile persistence
type UserRepository interface {
	// Create stores a profile; an existing profile with the same ID is left unchanged
	Create(ctx context.Context, user *entity.User) error

	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	GetByEmail(ctx context.Context, email string) (*entity.User, error)

	// GetByIDs returns the profiles that exist among ids
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.User, error)

	// AddFriendPair adds each user to the other's friend set atomically
	AddFriendPair(ctx context.Context, userID, friendID uuid.UUID) error
}
