package schedule

import (
	"time"

	"taskcycle/internal/model"
)

// SameDay reports whether two instants fall on the same calendar day in b's
// location.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.In(b.Location()).Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// WeekStart returns midnight of the Sunday that starts t's week. Weeks run
// Sunday through Saturday.
func WeekStart(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, -int(t.Weekday()))
}

// MonthsBetween counts whole calendar months from a to b, ignoring the day
// component. February to March is one month regardless of the days involved.
func MonthsBetween(a, b time.Time) int {
	a = a.In(b.Location())
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	// Move to next month, roll back a day.
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return firstOfMonth.AddDate(0, 1, -1).Day()
}

// OrdinalWeekdayDate computes the day of month on which the Nth (or last)
// occurrence of weekday falls within the given month.
func OrdinalWeekdayDate(year int, month time.Month, ordinal model.Ordinal, weekday time.Weekday) (int, bool) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(weekday) - int(first.Weekday()) + 7) % 7

	var n int
	switch ordinal {
	case model.OrdinalFirst:
		n = 1
	case model.OrdinalSecond:
		n = 2
	case model.OrdinalThird:
		n = 3
	case model.OrdinalFourth:
		n = 4
	case model.OrdinalLast:
		last := DaysInMonth(year, month)
		lastWeekday := time.Date(year, month, last, 0, 0, 0, 0, time.UTC).Weekday()
		back := (int(lastWeekday) - int(weekday) + 7) % 7
		return last - back, true
	default:
		return 0, false
	}
	return 1 + offset + (n-1)*7, true
}
