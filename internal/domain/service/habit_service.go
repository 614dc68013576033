package service

import (
	"context"

	"habit-garden/internal/domain/entity"
	"habit-garden/internal/domain/streak"

	"github.com/google/uuid"
)

// ToggleOutcome is the result of a toggle write-back
type ToggleOutcome struct {
	Habit   *entity.Habit `json:"habit"`
	Changed bool          `json:"changed"`
}

// Dashboard is the aggregate shown on the main page
type Dashboard struct {
	Today          entity.Date       `json:"today"`
	Habits         []*entity.Habit   `json:"habits"`
	CompletedToday int               `json:"completed_today"`
	Weekly         []streak.DayCount `json:"weekly"`
}

// HabitService defines the interface for habit business logic
type HabitService interface {
	// CreateHabit creates a habit with zeroed streak state
	CreateHabit(ctx context.Context, userID uuid.UUID, name, description string) (*entity.Habit, error)

	// EnsureWelcomeHabit creates the starter habit when the user has none
	EnsureWelcomeHabit(ctx context.Context, userID uuid.UUID) (*entity.Habit, error)

	GetHabit(ctx context.Context, habitID, userID uuid.UUID) (*entity.Habit, error)

	ListHabits(ctx context.Context, userID uuid.UUID) ([]*entity.Habit, error)

	// EditHabit changes name and description only
	EditHabit(ctx context.Context, habitID, userID uuid.UUID, name, description string) (*entity.Habit, error)

	DeleteHabit(ctx context.Context, habitID, userID uuid.UUID) error

	// ToggleHabit marks today complete or incomplete
	ToggleHabit(ctx context.Context, habitID, userID uuid.UUID, markComplete bool) (*ToggleOutcome, error)

	GetDashboard(ctx context.Context, userID uuid.UUID) (*Dashboard, error)

	// ProcessNudges publishes nudge events for lapsed habits
	ProcessNudges(ctx context.Context) (int, error)
}
