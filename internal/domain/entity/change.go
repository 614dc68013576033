package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChangeKind classifies a HabitChange
type ChangeKind string

const (
	ChangeUpserted    ChangeKind = "upserted"
	ChangeDeleted     ChangeKind = "deleted"
	ChangeWriteFailed ChangeKind = "write_failed" // Habit carries the restored snapshot
)

// HabitChange is a notification about a habit record, fanned out to subscribers
type HabitChange struct {
	Kind    ChangeKind `json:"kind"`
	UserID  uuid.UUID  `json:"user_id"`
	HabitID uuid.UUID  `json:"habit_id"`
	Habit   *Habit     `json:"habit,omitempty"`
	At      time.Time  `json:"at"`
}
