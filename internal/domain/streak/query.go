package streak

import "habit-garden/internal/domain/entity"

// WeekLength is the window of the consistency chart
const WeekLength = 7

// DayCount is one bar of a consistency chart
type DayCount struct {
	Date      entity.Date `json:"date"`
	Weekday   string      `json:"weekday"`
	Completed int         `json:"completed"`
}

// IsCompletedOn reports whether date is in the record's history
func IsCompletedOn(record *entity.Habit, date entity.Date) bool {
	return record.CompletedOn(date)
}

// CompletedCount counts the records completed on date
func CompletedCount(records []*entity.Habit, date entity.Date) int {
	count := 0
	for _, r := range records {
		if IsCompletedOn(r, date) {
			count++
		}
	}
	return count
}

// WeeklySeries returns completion counts for the seven days ending at
// endDate, oldest first.
func WeeklySeries(records []*entity.Habit, endDate entity.Date) []DayCount {
	series := make([]DayCount, 0, WeekLength)
	for i := WeekLength - 1; i >= 0; i-- {
		day := endDate.AddDays(-i)
		series = append(series, DayCount{
			Date:      day,
			Weekday:   day.Weekday(),
			Completed: CompletedCount(records, day),
		})
	}
	return series
}
