package service

import (
	"context"

	"habit-garden/internal/domain/entity"

	"github.com/google/uuid"
)

// Notifier propagates habit changes to live subscribers
type Notifier interface {
	Publish(ctx context.Context, change entity.HabitChange) error

	// Subscribe streams the user's changes until ctx is done, then closes the channel
	Subscribe(ctx context.Context, userID uuid.UUID) (<-chan entity.HabitChange, error)
}

// EventType names an outbound domain event
type EventType string

const (
	EventHabitCompleted   EventType = "habit.completed"
	EventHabitUncompleted EventType = "habit.uncompleted"
	EventHabitNudgeDue    EventType = "habit.nudge_due"
)

// HabitEvent is published to downstream consumers
type HabitEvent struct {
	Type       EventType
	Habit      *entity.Habit
	MissedDays int
}

// EventPublisher sends domain events to other services
type EventPublisher interface {
	PublishHabitEvent(ctx context.Context, event HabitEvent) error
}

// MotivationPrompt carries the habit facts given to the generator
type MotivationPrompt struct {
	HabitName      string
	Streak         int32
	LongestStreak  int32
	CompletedToday bool
}

// StrugglePrompt describes a lapsed habit
type StrugglePrompt struct {
	HabitName        string
	HabitDescription string
	MissedDays       int
}

// StoryPrompt describes the subject of a story
type StoryPrompt struct {
	UserName  string
	HabitName string
	Streak    int32
}

// Generator is the hosted generative model
type Generator interface {
	Motivation(ctx context.Context, p MotivationPrompt) (string, error)
	StruggleSuggestion(ctx context.Context, p StrugglePrompt) (string, error)
	Story(ctx context.Context, p StoryPrompt) (string, error)
	// Speech returns WAV encoded audio
	Speech(ctx context.Context, text string) ([]byte, error)
	// Avatar returns image bytes and their MIME type
	Avatar(ctx context.Context, name string) ([]byte, string, error)
}
