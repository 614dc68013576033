// Package clock supplies "today" to the habit engine.
package clock

import (
	"fmt"
	"sync"
	"time"

	"habit-garden/internal/domain/entity"
)

// Clock returns the current calendar date
type Clock interface {
	Today() entity.Date
	Now() time.Time
}

// System reads the wall clock in a fixed location
type System struct {
	loc *time.Location
}

// NewSystem creates a wall clock for an IANA timezone name
func NewSystem(timezone string) (*System, error) {
	if timezone == "" {
		timezone = "UTC"
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone: %w", err)
	}
	return &System{loc: loc}, nil
}

func (s *System) Now() time.Time {
	return time.Now().In(s.loc)
}

func (s *System) Today() entity.Date {
	return entity.DateOf(s.Now())
}

// Fixed is a settable clock for tests
type Fixed struct {
	mu    sync.Mutex
	today entity.Date
}

// NewFixed creates a clock pinned to a YYYY-MM-DD date
func NewFixed(date string) *Fixed {
	return &Fixed{today: entity.MustParseDate(date)}
}

func (f *Fixed) Today() entity.Date {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.today
}

// Now returns noon UTC of the pinned date
func (f *Fixed) Now() time.Time {
	return f.Today().Time().Add(12 * time.Hour)
}

// Set moves the clock to a YYYY-MM-DD date
func (f *Fixed) Set(date string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.today = entity.MustParseDate(date)
}

// Advance moves the clock n days forward
func (f *Fixed) Advance(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.today = f.today.AddDays(n)
}
