package streak

import (
	"fmt"

	"habit-garden/internal/domain/entity"
)

// MaxGrowthStage is the fully grown plant
const MaxGrowthStage = 5

// UncheckPolicy decides how currentStreak changes when a completion is removed
type UncheckPolicy string

const (
	// PolicyDecrement subtracts one from the streak, floored at zero.
	// It does not look at the remaining history, so un-checking a day that
	// is not the end of the run leaves the streak longer than the real run.
	PolicyDecrement UncheckPolicy = "decrement"

	// PolicyRecompute re-derives the streak as the trailing consecutive run
	// of the remaining history.
	PolicyRecompute UncheckPolicy = "recompute"
)

// ParsePolicy validates a configured policy name; empty means PolicyDecrement
func ParsePolicy(s string) (UncheckPolicy, error) {
	switch UncheckPolicy(s) {
	case "", PolicyDecrement:
		return PolicyDecrement, nil
	case PolicyRecompute:
		return PolicyRecompute, nil
	default:
		return "", fmt.Errorf("unknown uncheck policy %q", s)
	}
}

// Engine applies toggles under a fixed UncheckPolicy. The zero value uses PolicyDecrement.
type Engine struct {
	policy UncheckPolicy
}

// New creates an engine with the given policy
func New(policy UncheckPolicy) Engine {
	return Engine{policy: policy}
}

// Policy returns the effective uncheck policy
func (e Engine) Policy() UncheckPolicy {
	if e.policy == "" {
		return PolicyDecrement
	}
	return e.policy
}

// ApplyToggle is Engine.Apply with the default policy
func ApplyToggle(record *entity.Habit, markComplete bool, today entity.Date) *entity.Habit {
	return Engine{}.Apply(record, markComplete, today)
}

// Apply computes the record that results from marking today complete or
// incomplete. When the toggle is a no-op the very same pointer is returned;
// otherwise a fresh record is returned and the input is left untouched.
func (e Engine) Apply(record *entity.Habit, markComplete bool, today entity.Date) *entity.Habit {
	if markComplete {
		return e.complete(record, today)
	}
	return e.uncomplete(record, today)
}

func (e Engine) complete(record *entity.Habit, today entity.Date) *entity.Habit {
	if record.CompletedOn(today) {
		return record
	}

	next := record.Clone()

	streak := int32(1)
	if record.LastCompleted != nil && today.DaysSince(*record.LastCompleted) == 1 {
		streak = record.CurrentStreak + 1
	}

	next.CurrentStreak = streak
	if streak > next.LongestStreak {
		next.LongestStreak = streak
	}

	next.History = append(next.History, today)
	entity.SortDescending(next.History)

	// today unless the caller back-dates a toggle behind the newest completion
	last := next.History[0]
	next.LastCompleted = &last
	next.GrowthStage = clampStage(record.GrowthStage + 1)

	return next
}

func (e Engine) uncomplete(record *entity.Habit, today entity.Date) *entity.Habit {
	if !record.CompletedOn(today) {
		return record
	}

	next := record.Clone()

	history := make([]entity.Date, 0, len(record.History))
	for _, d := range record.History {
		if !d.Equal(today) {
			history = append(history, d)
		}
	}
	entity.SortDescending(history)
	next.History = history

	switch e.Policy() {
	case PolicyRecompute:
		next.CurrentStreak = RecomputeStreak(history)
		// back-dated completions can join runs the counter never saw
		if next.CurrentStreak > next.LongestStreak {
			next.LongestStreak = next.CurrentStreak
		}
	default:
		next.CurrentStreak = record.CurrentStreak - 1
		if next.CurrentStreak < 0 {
			next.CurrentStreak = 0
		}
	}

	if len(history) > 0 {
		last := history[0]
		next.LastCompleted = &last
	} else {
		next.LastCompleted = nil
	}

	next.GrowthStage = clampStage(record.GrowthStage - 1)

	return next
}

func clampStage(stage int32) int32 {
	if stage < 0 {
		return 0
	}
	if stage > MaxGrowthStage {
		return MaxGrowthStage
	}
	return stage
}
