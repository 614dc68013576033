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

type activityKey struct {
	userID uuid.UUID
	date   entity.Date
}

type activityRepository struct {
	mu      sync.Mutex
	records map[activityKey]entity.Activity
}

// NewActivityRepository creates an empty in-memory activity repository
func NewActivityRepository() repository.ActivityRepository {
	return &activityRepository{records: make(map[activityKey]entity.Activity)}
}

func (r *activityRepository) Upsert(ctx context.Context, userID uuid.UUID, date entity.Date, patch entity.ActivityPatch) (*entity.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := activityKey{userID: userID, date: date}
	current, ok := r.records[key]
	if !ok {
		current = entity.Activity{UserID: userID, Date: date}
	}
	merged := current.Merge(patch)
	merged.UpdatedAt = time.Now().UTC()
	r.records[key] = merged
	return &merged, nil
}

func (r *activityRepository) AddWater(ctx context.Context, userID uuid.UUID, date entity.Date, delta int32) (*entity.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := activityKey{userID: userID, date: date}
	current, ok := r.records[key]
	if !ok {
		current = entity.Activity{UserID: userID, Date: date}
	}
	water := current.Water + delta
	merged := current.Merge(entity.ActivityPatch{Water: &water})
	merged.UpdatedAt = time.Now().UTC()
	r.records[key] = merged
	return &merged, nil
}

func (r *activityRepository) Get(ctx context.Context, userID uuid.UUID, date entity.Date) (*entity.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.records[activityKey{userID: userID, date: date}]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *activityRepository) GetRange(ctx context.Context, userID uuid.UUID, from, to entity.Date) ([]*entity.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Activity
	for key, a := range r.records {
		if key.userID != userID || key.date.Before(from) || key.date.After(to) {
			continue
		}
		a := a
		out = append(out, &a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}
