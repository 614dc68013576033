package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"habit-garden/internal/clock"
	"habit-garden/internal/domain/entity"
	"habit-garden/internal/domain/repository"
	"habit-garden/internal/domain/service"
	"habit-garden/internal/domain/streak"
	"habit-garden/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errGeneratorDisabled = errors.New("generator is not configured")

type motivationService struct {
	habitRepo repository.HabitRepository
	userRepo  repository.UserRepository
	generator service.Generator
	clock     clock.Clock
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// NewMotivationService creates a new motivation service. A nil generator
// makes every call fail with ErrGenerationFailed.
func NewMotivationService(
	habitRepo repository.HabitRepository,
	userRepo repository.UserRepository,
	generator service.Generator,
	clk clock.Clock,
	logger *zap.Logger,
	m *metrics.Metrics,
) service.MotivationService {
	return &motivationService{
		habitRepo: habitRepo,
		userRepo:  userRepo,
		generator: generator,
		clock:     clk,
		logger:    logger,
		metrics:   m,
	}
}

func (s *motivationService) Motivate(ctx context.Context, habitID, userID uuid.UUID) (*service.Motivation, error) {
	habit, err := s.habitRepo.GetByIDAndUserID(ctx, habitID, userID)
	if err != nil {
		return nil, err
	}

	today := s.clock.Today()
	missed := streak.MissedDays(habit, today)

	if streak.NeedsNudge(habit, today) {
		msg, err := s.generate(ctx, "struggle", func(g service.Generator) (string, error) {
			return g.StruggleSuggestion(ctx, service.StrugglePrompt{
				HabitName:        habit.Name,
				HabitDescription: habit.Description,
				MissedDays:       missed,
			})
		})
		if err != nil {
			return nil, err
		}
		return &service.Motivation{Message: msg, Nudge: true, MissedDays: missed}, nil
	}

	msg, err := s.generate(ctx, "motivation", func(g service.Generator) (string, error) {
		return g.Motivation(ctx, service.MotivationPrompt{
			HabitName:      habit.Name,
			Streak:         habit.CurrentStreak,
			LongestStreak:  habit.LongestStreak,
			CompletedToday: habit.CompletedOn(today),
		})
	})
	if err != nil {
		return nil, err
	}
	return &service.Motivation{Message: msg, MissedDays: missed}, nil
}

func (s *motivationService) Story(ctx context.Context, habitID, userID uuid.UUID, withAudio bool) (*service.Story, error) {
	habit, err := s.habitRepo.GetByIDAndUserID(ctx, habitID, userID)
	if err != nil {
		return nil, err
	}

	userName := "friend"
	if user, err := s.userRepo.GetByID(ctx, userID); err == nil && user.Name != "" {
		userName = user.Name
	}

	text, err := s.generate(ctx, "story", func(g service.Generator) (string, error) {
		return g.Story(ctx, service.StoryPrompt{
			UserName:  userName,
			HabitName: habit.Name,
			Streak:    habit.CurrentStreak,
		})
	})
	if err != nil {
		return nil, err
	}

	story := &service.Story{Text: text}
	if !withAudio {
		return story, nil
	}

	audio, err := s.generateBytes(ctx, "speech", func(g service.Generator) ([]byte, string, error) {
		wav, err := g.Speech(ctx, text)
		return wav, "audio/wav", err
	})
	if err != nil {
		return nil, err
	}
	story.AudioURL = audio
	return story, nil
}

func (s *motivationService) Avatar(ctx context.Context, userID uuid.UUID) (*service.Avatar, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	image, err := s.generateBytes(ctx, "avatar", func(g service.Generator) ([]byte, string, error) {
		return g.Avatar(ctx, user.Name)
	})
	if err != nil {
		return nil, err
	}
	return &service.Avatar{ImageURL: image}, nil
}

func (s *motivationService) generate(ctx context.Context, kind string, call func(service.Generator) (string, error)) (string, error) {
	if s.generator == nil {
		return "", s.failed(kind, errGeneratorDisabled)
	}
	text, err := call(s.generator)
	if err == nil && strings.TrimSpace(text) == "" {
		err = errors.New("empty response")
	}
	if err != nil {
		return "", s.failed(kind, err)
	}
	s.metrics.Generations.WithLabelValues(kind, "ok").Inc()
	return strings.TrimSpace(text), nil
}

func (s *motivationService) generateBytes(ctx context.Context, kind string, call func(service.Generator) ([]byte, string, error)) (string, error) {
	if s.generator == nil {
		return "", s.failed(kind, errGeneratorDisabled)
	}
	data, mimeType, err := call(s.generator)
	if err == nil && len(data) == 0 {
		err = errors.New("empty response")
	}
	if err != nil {
		return "", s.failed(kind, err)
	}
	s.metrics.Generations.WithLabelValues(kind, "ok").Inc()
	return dataURL(mimeType, data), nil
}

func (s *motivationService) failed(kind string, err error) error {
	s.metrics.Generations.WithLabelValues(kind, "error").Inc()
	s.logger.Warn("generation_failed", zap.String("kind", kind), zap.Error(err))
	return fmt.Errorf("%w: %s: %v", entity.ErrGenerationFailed, kind, err)
}

func dataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
