package analytics

import (
	"time"

	"github.com/supplypulse/backend/internal/domain"
)

// windowBounds returns [start, end) for the period containing ref, in UTC.
// Daily windows follow calendar day boundaries, weekly windows start on ISO
// Monday, monthly windows on the first of the month.
func windowBounds(period domain.Period, ref time.Time) (time.Time, time.Time) {
	ref = ref.UTC()
	day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)

	switch period {
	case domain.PeriodWeekly:
		offset := (int(day.Weekday()) + 6) % 7
		start := day.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 7)
	case domain.PeriodMonthly:
		start := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0)
	default:
		return day, day.AddDate(0, 0, 1)
	}
}
