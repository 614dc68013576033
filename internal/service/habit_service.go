package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"habit-garden/internal/clock"
	"habit-garden/internal/domain/entity"
	"habit-garden/internal/domain/repository"
	"habit-garden/internal/domain/service"
	"habit-garden/internal/domain/streak"
	"habit-garden/internal/metrics"
	"habit-garden/internal/readmodel"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxNameLength        = 100
	maxDescriptionLength = 500

	// toggleAttempts bounds re-reads when another writer got there first
	toggleAttempts = 3

	welcomeHabitName        = "Log your first habit!"
	welcomeHabitDescription = "Complete this to get started."
)

type habitService struct {
	habitRepo repository.HabitRepository
	store     *readmodel.Store
	notifier  service.Notifier
	publisher service.EventPublisher
	clock     clock.Clock
	engine    streak.Engine
	logger    *zap.Logger
	metrics   *metrics.Metrics

	habitLocks *keyedMutex
	userLocks  *keyedMutex
}

// NewHabitService creates a new habit service. publisher may be nil.
func NewHabitService(
	habitRepo repository.HabitRepository,
	store *readmodel.Store,
	notifier service.Notifier,
	publisher service.EventPublisher,
	clk clock.Clock,
	engine streak.Engine,
	logger *zap.Logger,
	m *metrics.Metrics,
) service.HabitService {
	return &habitService{
		habitRepo:  habitRepo,
		store:      store,
		notifier:   notifier,
		publisher:  publisher,
		clock:      clk,
		engine:     engine,
		logger:     logger,
		metrics:    m,
		habitLocks: newKeyedMutex(),
		userLocks:  newKeyedMutex(),
	}
}

func validateDetails(name, description string) (string, string, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)

	if name == "" {
		return "", "", fmt.Errorf("%w: name is required", entity.ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", "", fmt.Errorf("%w: name is too long (max %d characters)", entity.ErrInvalidInput, maxNameLength)
	}
	if utf8.RuneCountInString(description) > maxDescriptionLength {
		return "", "", fmt.Errorf("%w: description is too long (max %d characters)", entity.ErrInvalidInput, maxDescriptionLength)
	}
	return name, description, nil
}

func (s *habitService) now() time.Time {
	// storage keeps microseconds; compare-and-set relies on round-tripping exactly
	return s.clock.Now().UTC().Truncate(time.Microsecond)
}

func (s *habitService) CreateHabit(ctx context.Context, userID uuid.UUID, name, description string) (*entity.Habit, error) {
	name, description, err := validateDetails(name, description)
	if err != nil {
		return nil, err
	}
	if err := s.ensureLoaded(ctx, userID); err != nil {
		return nil, err
	}
	return s.createHabit(ctx, userID, name, description)
}

// createHabit expects validated details and a seeded read model
func (s *habitService) createHabit(ctx context.Context, userID uuid.UUID, name, description string) (*entity.Habit, error) {
	habit := entity.NewHabit(userID, name, description, s.now())

	if err := s.habitRepo.Create(ctx, habit); err != nil {
		s.metrics.WriteFailures.WithLabelValues("create").Inc()
		return nil, fmt.Errorf("failed to create habit: %w", err)
	}

	s.store.Put(habit)
	s.notify(ctx, entity.ChangeUpserted, habit)

	s.logger.Info("habit_created",
		zap.String("habit_id", habit.ID.String()),
		zap.String("user_id", userID.String()),
	)
	return habit, nil
}

func (s *habitService) EnsureWelcomeHabit(ctx context.Context, userID uuid.UUID) (*entity.Habit, error) {
	if err := s.ensureLoaded(ctx, userID); err != nil {
		return nil, err
	}

	unlock := s.userLocks.Lock(userID)
	defer unlock()

	habits, err := s.habitRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	if len(habits) > 0 {
		return nil, nil
	}

	return s.createHabit(ctx, userID, welcomeHabitName, welcomeHabitDescription)
}

func (s *habitService) GetHabit(ctx context.Context, habitID, userID uuid.UUID) (*entity.Habit, error) {
	return s.habitRepo.GetByIDAndUserID(ctx, habitID, userID)
}

// ListHabits serves the read model, seeding it from storage on first use
func (s *habitService) ListHabits(ctx context.Context, userID uuid.UUID) ([]*entity.Habit, error) {
	if err := s.ensureLoaded(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.Snapshot(userID), nil
}

// ensureLoaded seeds the read model once per user. Afterwards it changes only
// through this service's writes and followed notifications.
func (s *habitService) ensureLoaded(ctx context.Context, userID uuid.UUID) error {
	if s.store.Loaded(userID) {
		return nil
	}

	unlock := s.userLocks.Lock(userID)
	defer unlock()
	if s.store.Loaded(userID) {
		return nil
	}

	habits, err := s.habitRepo.GetByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list habits: %w", err)
	}
	s.store.Replace(userID, habits)
	return nil
}

func (s *habitService) EditHabit(ctx context.Context, habitID, userID uuid.UUID, name, description string) (*entity.Habit, error) {
	name, description, err := validateDetails(name, description)
	if err != nil {
		return nil, err
	}

	if err := s.ensureLoaded(ctx, userID); err != nil {
		return nil, err
	}

	unlock := s.habitLocks.Lock(habitID)
	defer unlock()

	habit, err := s.habitRepo.UpdateDetails(ctx, habitID, userID, name, description, s.now())
	if err != nil {
		if !errors.Is(err, entity.ErrHabitNotFound) {
			s.metrics.WriteFailures.WithLabelValues("edit").Inc()
		}
		return nil, err
	}

	s.store.Put(habit)
	s.notify(ctx, entity.ChangeUpserted, habit)
	return habit, nil
}

func (s *habitService) DeleteHabit(ctx context.Context, habitID, userID uuid.UUID) error {
	if err := s.ensureLoaded(ctx, userID); err != nil {
		return err
	}

	unlock := s.habitLocks.Lock(habitID)
	defer unlock()

	if err := s.habitRepo.Delete(ctx, habitID, userID); err != nil {
		if !errors.Is(err, entity.ErrHabitNotFound) {
			s.metrics.WriteFailures.WithLabelValues("delete").Inc()
		}
		return err
	}

	s.store.Remove(userID, habitID)
	s.publishChange(ctx, entity.HabitChange{
		Kind:    entity.ChangeDeleted,
		UserID:  userID,
		HabitID: habitID,
		At:      s.now(),
	})

	s.logger.Info("habit_deleted",
		zap.String("habit_id", habitID.String()),
		zap.String("user_id", userID.String()),
	)
	return nil
}

// ToggleHabit serializes toggles per habit, computes the next record from the
// latest stored one, shows it in the read model straight away and writes it
// back. A failed write puts the stored record back into the read model.
func (s *habitService) ToggleHabit(ctx context.Context, habitID, userID uuid.UUID, markComplete bool) (*service.ToggleOutcome, error) {
	action := "uncomplete"
	if markComplete {
		action = "complete"
	}

	if err := s.ensureLoaded(ctx, userID); err != nil {
		return nil, err
	}

	unlock := s.habitLocks.Lock(habitID)
	defer unlock()

	for attempt := 1; ; attempt++ {
		outcome, err := s.toggleOnce(ctx, habitID, userID, markComplete)
		if errors.Is(err, entity.ErrConflict) && attempt < toggleAttempts {
			s.logger.Warn("habit_toggle_conflict",
				zap.String("habit_id", habitID.String()),
				zap.Int("attempt", attempt),
			)
			continue
		}
		if err != nil {
			if !errors.Is(err, entity.ErrHabitNotFound) {
				s.metrics.Toggles.WithLabelValues(action, "failed").Inc()
			}
			return nil, err
		}

		result := "noop"
		if outcome.Changed {
			result = "changed"
		}
		s.metrics.Toggles.WithLabelValues(action, result).Inc()
		return outcome, nil
	}
}

func (s *habitService) toggleOnce(ctx context.Context, habitID, userID uuid.UUID, markComplete bool) (*service.ToggleOutcome, error) {
	current, err := s.habitRepo.GetByIDAndUserID(ctx, habitID, userID)
	if err != nil {
		if errors.Is(err, entity.ErrHabitNotFound) {
			s.store.Remove(userID, habitID)
		}
		return nil, err
	}

	today := s.clock.Today()
	next := s.engine.Apply(current, markComplete, today)
	if next == current {
		s.store.Put(current)
		return &service.ToggleOutcome{Habit: current, Changed: false}, nil
	}
	next.UpdatedAt = s.now()

	s.store.Put(next)

	if err := s.habitRepo.Replace(ctx, next, current.UpdatedAt); err != nil {
		s.rollback(ctx, current, err)
		return nil, fmt.Errorf("failed to save habit: %w", err)
	}

	s.notify(ctx, entity.ChangeUpserted, next)

	eventType := service.EventHabitUncompleted
	if markComplete {
		eventType = service.EventHabitCompleted
	}
	s.publishEvent(ctx, service.HabitEvent{Type: eventType, Habit: next})

	s.logger.Info("habit_toggled",
		zap.String("habit_id", habitID.String()),
		zap.String("user_id", userID.String()),
		zap.Bool("completed", markComplete),
		zap.String("date", today.String()),
		zap.Int32("current_streak", next.CurrentStreak),
		zap.Int32("longest_streak", next.LongestStreak),
	)

	return &service.ToggleOutcome{Habit: next, Changed: true}, nil
}

func (s *habitService) rollback(ctx context.Context, stored *entity.Habit, cause error) {
	s.store.Restore(stored)
	s.metrics.Rollbacks.Inc()
	if !errors.Is(cause, entity.ErrConflict) {
		s.metrics.WriteFailures.WithLabelValues("toggle").Inc()
	}

	s.logger.Warn("habit_write_failed",
		zap.String("habit_id", stored.ID.String()),
		zap.String("user_id", stored.UserID.String()),
		zap.Error(cause),
	)

	s.notify(ctx, entity.ChangeWriteFailed, stored)
}

func (s *habitService) GetDashboard(ctx context.Context, userID uuid.UUID) (*service.Dashboard, error) {
	habits, err := s.ListHabits(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := s.clock.Today()
	return &service.Dashboard{
		Today:          today,
		Habits:         habits,
		CompletedToday: streak.CompletedCount(habits, today),
		Weekly:         streak.WeeklySeries(habits, today),
	}, nil
}

func (s *habitService) ProcessNudges(ctx context.Context) (int, error) {
	today := s.clock.Today()

	habits, err := s.habitRepo.GetLapsed(ctx, today.AddDays(-streak.NudgeThreshold))
	if err != nil {
		return 0, fmt.Errorf("failed to get lapsed habits: %w", err)
	}

	due := 0
	for _, habit := range habits {
		if !streak.NeedsNudge(habit, today) {
			continue
		}
		due++
		s.publishEvent(ctx, service.HabitEvent{
			Type:       service.EventHabitNudgeDue,
			Habit:      habit,
			MissedDays: streak.MissedDays(habit, today),
		})
	}

	s.logger.Info("nudges_processed",
		zap.Int("lapsed", len(habits)),
		zap.Int("due", due),
	)
	return due, nil
}

func (s *habitService) notify(ctx context.Context, kind entity.ChangeKind, habit *entity.Habit) {
	s.publishChange(ctx, entity.HabitChange{
		Kind:    kind,
		UserID:  habit.UserID,
		HabitID: habit.ID,
		Habit:   habit.Clone(),
		At:      s.now(),
	})
}

func (s *habitService) publishChange(ctx context.Context, change entity.HabitChange) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, change); err != nil {
		s.logger.Warn("habit_change_publish_failed",
			zap.String("habit_id", change.HabitID.String()),
			zap.String("kind", string(change.Kind)),
			zap.Error(err),
		)
	}
}

func (s *habitService) publishEvent(ctx context.Context, event service.HabitEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishHabitEvent(ctx, event); err != nil {
		s.logger.Warn("habit_event_publish_failed",
			zap.String("habit_id", event.Habit.ID.String()),
			zap.String("event_type", string(event.Type)),
			zap.Error(err),
		)
	}
}
