package streak

import "habit-garden/internal/domain/entity"

// RecomputeStreak returns the length of the consecutive-day run that ends at
// the most recent date in history. Duplicates are ignored.
func RecomputeStreak(history []entity.Date) int32 {
	days := uniqueDescending(history)
	if len(days) == 0 {
		return 0
	}

	run := int32(1)
	for i := 1; i < len(days); i++ {
		if days[i-1].DaysSince(days[i]) != 1 {
			break
		}
		run++
	}
	return run
}

// LongestRun returns the longest consecutive-day run anywhere in history
func LongestRun(history []entity.Date) int32 {
	days := uniqueDescending(history)
	if len(days) == 0 {
		return 0
	}

	longest, run := int32(1), int32(1)
	for i := 1; i < len(days); i++ {
		if days[i-1].DaysSince(days[i]) == 1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

// MissedDays is the calendar gap between today and the last completion.
// A habit that was never completed has missed nothing.
func MissedDays(record *entity.Habit, today entity.Date) int {
	if record.LastCompleted == nil {
		return 0
	}
	gap := today.DaysSince(*record.LastCompleted)
	if gap < 0 {
		return 0
	}
	return gap
}

// NudgeThreshold is the number of missed days after which a struggle
// suggestion replaces plain encouragement.
const NudgeThreshold = 3

// NeedsNudge reports whether the habit has lapsed long enough to warrant a nudge
func NeedsNudge(record *entity.Habit, today entity.Date) bool {
	if record.LastCompleted == nil || record.CompletedOn(today) {
		return false
	}
	return MissedDays(record, today) >= NudgeThreshold
}

func uniqueDescending(history []entity.Date) []entity.Date {
	days := make([]entity.Date, 0, len(history))
	seen := make(map[entity.Date]struct{}, len(history))
	for _, d := range history {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		days = append(days, d)
	}
	entity.SortDescending(days)
	return days
}
