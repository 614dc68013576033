package entity

import (
	"time"

	"github.com/google/uuid"
)

// Activity holds the daily vitals of a user: one record per user per date
type Activity struct {
	UserID    uuid.UUID `json:"user_id"`
	Date      Date      `json:"date"`
	Water     int32     `json:"water"` // glasses
	Exercise  bool      `json:"exercise"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ActivityPatch is a partial update merged onto an Activity
type ActivityPatch struct {
	Water    *int32 `json:"water,omitempty"`
	Exercise *bool  `json:"exercise,omitempty"`
}

// IsEmpty reports whether the patch changes nothing
func (p ActivityPatch) IsEmpty() bool {
	return p.Water == nil && p.Exercise == nil
}

// Merge applies the patch onto a copy of a. Water never goes below zero.
func (a Activity) Merge(p ActivityPatch) Activity {
	if p.Water != nil {
		a.Water = *p.Water
		if a.Water < 0 {
			a.Water = 0
		}
	}
	if p.Exercise != nil {
		a.Exercise = *p.Exercise
	}
	return a
}
