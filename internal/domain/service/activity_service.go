package service

import (
	"context"

	"habit-garden/internal/domain/entity"

	"github.com/google/uuid"
)

// VitalsDay is one point of the weekly vitals chart
type VitalsDay struct {
	Date     entity.Date `json:"date"`
	Weekday  string      `json:"weekday"`
	Water    int32       `json:"water"`
	Exercise bool        `json:"exercise"`
}

// ActivityService defines the interface for daily vitals
type ActivityService interface {
	Today(ctx context.Context, userID uuid.UUID) (*entity.Activity, error)

	UpdateToday(ctx context.Context, userID uuid.UUID, patch entity.ActivityPatch) (*entity.Activity, error)

	AdjustWater(ctx context.Context, userID uuid.UUID, delta int32) (*entity.Activity, error)

	WeeklyVitals(ctx context.Context, userID uuid.UUID) ([]VitalsDay, error)
}
