// Package memory provides in-process implementations of the storage and
// notification contracts for single-node runs and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"habit-garden/internal/domain/entity"
	"habit-garden/internal/domain/repository"

	"github.com/google/uuid"
)

type habitRepository struct {
	mu     sync.RWMutex
	habits map[uuid.UUID]*entity.Habit
}

// NewHabitRepository creates an empty in-memory habit repository
func NewHabitRepository() repository.HabitRepository {
	return &habitRepository{habits: make(map[uuid.UUID]*entity.Habit)}
}

func (r *habitRepository) Create(ctx context.Context, habit *entity.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.habits[habit.ID] = habit.Clone()
	return nil
}

func (r *habitRepository) GetByIDAndUserID(ctx context.Context, habitID, userID uuid.UUID) (*entity.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.habits[habitID]
	if !ok || h.UserID != userID {
		return nil, entity.ErrHabitNotFound
	}
	return h.Clone(), nil
}

func (r *habitRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entity.Habit
	for _, h := range r.habits {
		if h.UserID == userID {
			out = append(out, h.Clone())
		}
	}
	sortByCreation(out)
	return out, nil
}

func (r *habitRepository) UpdateDetails(ctx context.Context, habitID, userID uuid.UUID, name, description string, updatedAt time.Time) (*entity.Habit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.habits[habitID]
	if !ok || h.UserID != userID {
		return nil, entity.ErrHabitNotFound
	}
	h.Name = name
	h.Description = description
	h.UpdatedAt = updatedAt
	return h.Clone(), nil
}

func (r *habitRepository) Replace(ctx context.Context, habit *entity.Habit, expectedUpdatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.habits[habit.ID]
	if !ok || h.UserID != habit.UserID {
		return entity.ErrHabitNotFound
	}
	if !h.UpdatedAt.Equal(expectedUpdatedAt) {
		return entity.ErrConflict
	}
	r.habits[habit.ID] = habit.Clone()
	return nil
}

func (r *habitRepository) Delete(ctx context.Context, habitID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.habits[habitID]
	if !ok || h.UserID != userID {
		return entity.ErrHabitNotFound
	}
	delete(r.habits, habitID)
	return nil
}

func (r *habitRepository) GetLapsed(ctx context.Context, lastCompletedOnOrBefore entity.Date) ([]*entity.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entity.Habit
	for _, h := range r.habits {
		if h.LastCompleted != nil && !h.LastCompleted.After(lastCompletedOnOrBefore) {
			out = append(out, h.Clone())
		}
	}
	sortByCreation(out)
	return out, nil
}

func sortByCreation(habits []*entity.Habit) {
	sort.SliceStable(habits, func(i, j int) bool {
		if habits[i].CreatedAt.Equal(habits[j].CreatedAt) {
			return habits[i].ID.String() < habits[j].ID.String()
		}
		return habits[i].CreatedAt.Before(habits[j].CreatedAt)
	})
}
