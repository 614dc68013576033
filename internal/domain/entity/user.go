package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is a profile with its symmetric friend set
type User struct {
	ID        uuid.UUID   `json:"id"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	PhotoURL  *string     `json:"photo_url,omitempty"`
	Friends   []uuid.UUID `json:"friends"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewUser creates a profile whose display name is the email's local part
func NewUser(id uuid.UUID, email string, now time.Time) *User {
	name := email
	if at := strings.Index(email, "@"); at > 0 {
		name = email[:at]
	}
	return &User{
		ID:        id,
		Email:     email,
		Name:      name,
		Friends:   []uuid.UUID{},
		CreatedAt: now,
	}
}

// HasFriend reports whether id is in the friend set
func (u *User) HasFriend(id uuid.UUID) bool {
	for _, f := range u.Friends {
		if f == id {
			return true
		}
	}
	return false
}
