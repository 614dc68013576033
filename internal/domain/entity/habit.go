package entity

import (
	"time"

	"github.com/google/uuid"
)

// Habit is one user-defined habit and its completion state
type Habit struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`

	// Basic info
	Name        string `json:"name"`
	Description string `json:"description"`

	// Streak state
	CurrentStreak int32  `json:"current_streak"`
	LongestStreak int32  `json:"longest_streak"`
	LastCompleted *Date  `json:"last_completed"`
	History       []Date `json:"history"` // newest first
	GrowthStage   int32  `json:"growth_stage"`

	// Metadata
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewHabit returns a habit with zeroed streak state
func NewHabit(userID uuid.UUID, name, description string, now time.Time) *Habit {
	return &Habit{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        name,
		Description: description,
		History:     []Date{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Clone returns a deep copy
func (h *Habit) Clone() *Habit {
	if h == nil {
		return nil
	}
	c := *h
	if h.LastCompleted != nil {
		last := *h.LastCompleted
		c.LastCompleted = &last
	}
	c.History = make([]Date, len(h.History))
	copy(c.History, h.History)
	return &c
}

// CompletedOn reports whether the habit was completed on d
func (h *Habit) CompletedOn(d Date) bool {
	for _, day := range h.History {
		if day.Equal(d) {
			return true
		}
	}
	return false
}
