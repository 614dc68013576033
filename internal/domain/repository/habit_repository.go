package repository

import (
	"context"
	"time"

	"habit-garden/internal/domain/entity"

	"github.com/google/uuid"
)

// HabitRepository defines the interface for habit persistence
type HabitRepository interface {
	// Create stores a new habit
	Create(ctx context.Context, habit *entity.Habit) error

	// GetByIDAndUserID retrieves a habit owned by the user
	GetByIDAndUserID(ctx context.Context, habitID, userID uuid.UUID) (*entity.Habit, error)

	// GetByUserID retrieves all habits of a user, oldest first
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Habit, error)

	// UpdateDetails merges name and description; streak state is not touched
	UpdateDetails(ctx context.Context, habitID, userID uuid.UUID, name, description string, updatedAt time.Time) (*entity.Habit, error)

	// Replace overwrites the full record after a toggle. It fails with
	// entity.ErrConflict when the stored record's UpdatedAt no longer equals
	// expectedUpdatedAt.
	Replace(ctx context.Context, habit *entity.Habit, expectedUpdatedAt time.Time) error

	// Delete removes the habit entirely
	Delete(ctx context.Context, habitID, userID uuid.UUID) error

	// GetLapsed retrieves habits last completed on or before the given date
	GetLapsed(ctx context.Context, lastCompletedOnOrBefore entity.Date) ([]*entity.Habit, error)
}
