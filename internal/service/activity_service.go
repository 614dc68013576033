package service

import (
	"context"
	"fmt"

	"habit-garden/internal/clock"
	"habit-garden/internal/domain/entity"
	"habit-garden/internal/domain/repository"
	"habit-garden/internal/domain/service"
	"habit-garden/internal/domain/streak"
	"habit-garden/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxWaterDelta keeps a single adjustment within a plausible range
const maxWaterDelta = 20

type activityService struct {
	activityRepo repository.ActivityRepository
	clock        clock.Clock
	logger       *zap.Logger
	metrics      *metrics.Metrics
}

// NewActivityService creates a new activity service
func NewActivityService(activityRepo repository.ActivityRepository, clk clock.Clock, logger *zap.Logger, m *metrics.Metrics) service.ActivityService {
	return &activityService{
		activityRepo: activityRepo,
		clock:        clk,
		logger:       logger,
		metrics:      m,
	}
}

// Today returns today's record, or an empty one when nothing was logged yet
func (s *activityService) Today(ctx context.Context, userID uuid.UUID) (*entity.Activity, error) {
	today := s.clock.Today()
	a, err := s.activityRepo.Get(ctx, userID, today)
	if err != nil {
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	if a == nil {
		a = &entity.Activity{UserID: userID, Date: today}
	}
	return a, nil
}

func (s *activityService) UpdateToday(ctx context.Context, userID uuid.UUID, patch entity.ActivityPatch) (*entity.Activity, error) {
	if patch.IsEmpty() {
		return nil, fmt.Errorf("%w: nothing to update", entity.ErrInvalidInput)
	}
	if patch.Water != nil && *patch.Water < 0 {
		return nil, fmt.Errorf("%w: water cannot be negative", entity.ErrInvalidInput)
	}

	a, err := s.activityRepo.Upsert(ctx, userID, s.clock.Today(), patch)
	if err != nil {
		s.metrics.WriteFailures.WithLabelValues("activity").Inc()
		return nil, fmt.Errorf("failed to save activity: %w", err)
	}

	s.logger.Debug("activity_updated",
		zap.String("user_id", userID.String()),
		zap.String("date", a.Date.String()),
		zap.Int32("water", a.Water),
		zap.Bool("exercise", a.Exercise),
	)
	return a, nil
}

func (s *activityService) AdjustWater(ctx context.Context, userID uuid.UUID, delta int32) (*entity.Activity, error) {
	if delta == 0 || delta > maxWaterDelta || delta < -maxWaterDelta {
		return nil, fmt.Errorf("%w: delta must be between -%d and %d and not zero", entity.ErrInvalidInput, maxWaterDelta, maxWaterDelta)
	}

	a, err := s.activityRepo.AddWater(ctx, userID, s.clock.Today(), delta)
	if err != nil {
		s.metrics.WriteFailures.WithLabelValues("activity").Inc()
		return nil, fmt.Errorf("failed to adjust water: %w", err)
	}
	return a, nil
}

// WeeklyVitals returns the last seven days oldest first, with days that have
// no record filled with zero values.
func (s *activityService) WeeklyVitals(ctx context.Context, userID uuid.UUID) ([]service.VitalsDay, error) {
	today := s.clock.Today()
	from := today.AddDays(-(streak.WeekLength - 1))

	records, err := s.activityRepo.GetRange(ctx, userID, from, today)
	if err != nil {
		return nil, fmt.Errorf("failed to get activity range: %w", err)
	}

	byDate := make(map[entity.Date]*entity.Activity, len(records))
	for _, a := range records {
		byDate[a.Date] = a
	}

	days := make([]service.VitalsDay, 0, streak.WeekLength)
	for d := from; !d.After(today); d = d.AddDays(1) {
		day := service.VitalsDay{Date: d, Weekday: d.Weekday()}
		if a, ok := byDate[d]; ok {
			day.Water = a.Water
			day.Exercise = a.Exercise
		}
		days = append(days, day)
	}
	return days, nil
}
