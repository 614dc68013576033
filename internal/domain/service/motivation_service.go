package service

import (
	"context"

	"github.com/google/uuid"
)

// Motivation is an encouraging message or, for lapsed habits, a nudge
type Motivation struct {
	Message    string `json:"message"`
	Nudge      bool   `json:"nudge"`
	MissedDays int    `json:"missed_days"`
}

// Story is a short narrative about a habit, optionally narrated
type Story struct {
	Text     string `json:"text"`
	AudioURL string `json:"audio_url,omitempty"` // data URL
}

// Avatar is a generated profile image
type Avatar struct {
	ImageURL string `json:"image_url"` // data URL
}

// MotivationService defines the interface for AI generated content
type MotivationService interface {
	Motivate(ctx context.Context, habitID, userID uuid.UUID) (*Motivation, error)

	Story(ctx context.Context, habitID, userID uuid.UUID, withAudio bool) (*Story, error)

	Avatar(ctx context.Context, userID uuid.UUID) (*Avatar, error)
}
