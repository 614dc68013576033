package repository

import (
	"context"

	"habit-garden/internal/domain/entity"

	"github.com/google/uuid"
)

// ActivityRepository persists one vitals record per user per date
type ActivityRepository interface {
	// Upsert merges the patch onto the (user, date) record, creating it if needed
	Upsert(ctx context.Context, userID uuid.UUID, date entity.Date, patch entity.ActivityPatch) (*entity.Activity, error)

	// AddWater adds delta glasses to the (user, date) record, never going below zero
	AddWater(ctx context.Context, userID uuid.UUID, date entity.Date, delta int32) (*entity.Activity, error)

	// Get returns nil, nil when no record exists for the date
	Get(ctx context.Context, userID uuid.UUID, date entity.Date) (*entity.Activity, error)

	// GetRange returns records with from <= date <= to, newest first
	GetRange(ctx context.Context, userID uuid.UUID, from, to entity.Date) ([]*entity.Activity, error)
}
