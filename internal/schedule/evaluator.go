package schedule

import (
	"errors"
	"fmt"
	"time"

	"taskcycle/internal/model"
)

// Configuration faults. Sweeps treat both as "skip this template and warn",
// never as sweep failures.
var (
	ErrInvalidConfig  = errors.New("invalid recurrence config")
	ErrUnknownPattern = errors.New("unknown recurrence pattern")
)

// Snapshot carries the storage facts about a template's generated instances
// that the evaluator needs. The caller looks these up so ShouldGenerate stays
// a pure function of (config, snapshot, now).
type Snapshot struct {
	// LastCreatedAt is the creation time of the most recent instance, nil if
	// none was ever generated.
	LastCreatedAt *time.Time
	// Total is the number of instances generated so far. Only consulted when
	// the config ends after a count.
	Total int
	// CreatedThisWeek counts instances created since the current week's
	// Sunday. Only consulted by the three-days-a-week pattern.
	CreatedThisWeek int
}

// ShouldGenerate decides whether a template is due for a new instance at now.
// Each pattern carries an implicit per-period guard: once an instance exists
// in the current period bucket (day for the day-based patterns, month for
// monthly), the answer is false until the bucket rolls over, so a sweep that
// runs twice in the same window cannot double-generate.
func ShouldGenerate(cfg model.RecurrenceConfig, snap Snapshot, now time.Time) (bool, error) {
	if now.Before(cfg.StartDate) {
		return false, nil
	}
	if cfg.EndDate != nil && cfg.EndAfterCount > 0 {
		return false, fmt.Errorf("%w: both end date and end count set", ErrInvalidConfig)
	}
	// Generation is still allowed at the end date itself, only strictly
	// after it is the series over.
	if cfg.EndDate != nil && now.After(*cfg.EndDate) {
		return false, nil
	}
	if cfg.EndAfterCount > 0 && snap.Total >= cfg.EndAfterCount {
		return false, nil
	}

	switch cfg.Pattern {
	case model.PatternDaily:
		return dailyDue(cfg, snap, now), nil
	case model.PatternWeekly:
		return weekdayDue(cfg, snap, now, weeklyGate)
	case model.PatternBiWeekly:
		return weekdayDue(cfg, snap, now, biWeeklyGate)
	case model.PatternThreeDaysAWeek:
		return weekdayDue(cfg, snap, now, threeDaysGate)
	case model.PatternMonthly:
		return monthlyDue(cfg, snap, now)
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownPattern, cfg.Pattern)
	}
}

func dailyDue(cfg model.RecurrenceConfig, snap Snapshot, now time.Time) bool {
	if snap.LastCreatedAt == nil {
		return true
	}
	interval := cfg.DailyInterval
	if interval <= 0 {
		interval = 1
	}
	return now.Sub(*snap.LastCreatedAt) >= time.Duration(interval)*24*time.Hour
}

// weekdayDue handles the shared shape of the weekday-set patterns: today must
// be one of the configured weekdays, then a pattern-specific gate decides.
func weekdayDue(cfg model.RecurrenceConfig, snap Snapshot, now time.Time, gate func(Snapshot, time.Time) bool) (bool, error) {
	days, err := cfg.Weekdays()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if len(days) == 0 {
		return false, fmt.Errorf("%w: %s pattern requires weekly days", ErrInvalidConfig, cfg.Pattern)
	}
	matched := false
	for _, day := range days {
		if now.Weekday() == day {
			matched = true
			break
		}
	}
	if !matched {
		return false, nil
	}
	return gate(snap, now), nil
}

// weeklyGate allows one instance per matching weekday: the only gate beyond
// the weekday match is "not already generated today".
func weeklyGate(snap Snapshot, now time.Time) bool {
	return snap.LastCreatedAt == nil || !SameDay(*snap.LastCreatedAt, now)
}

// biWeeklyGate requires two full weeks since the last instance.
func biWeeklyGate(snap Snapshot, now time.Time) bool {
	if snap.LastCreatedAt == nil {
		return true
	}
	return now.Sub(*snap.LastCreatedAt) >= 14*24*time.Hour
}

// threeDaysGate caps generation at three instances per Sunday-start week.
func threeDaysGate(snap Snapshot, now time.Time) bool {
	if snap.LastCreatedAt != nil && SameDay(*snap.LastCreatedAt, now) {
		return false
	}
	return snap.CreatedThisWeek < 3
}

func monthlyDue(cfg model.RecurrenceConfig, snap Snapshot, now time.Time) (bool, error) {
	byDay := cfg.MonthlyDay > 0
	byOrdinal := cfg.MonthlyOrdinal != ""
	if byDay == byOrdinal {
		return false, fmt.Errorf("%w: monthly pattern needs exactly one of day-of-month or ordinal weekday", ErrInvalidConfig)
	}

	year, month, _ := now.Date()
	var target int
	if byDay {
		if cfg.MonthlyDay > 31 {
			return false, fmt.Errorf("%w: day of month %d out of range", ErrInvalidConfig, cfg.MonthlyDay)
		}
		// A day past the end of a short month fires on the month's last day.
		target = cfg.MonthlyDay
		if last := DaysInMonth(year, month); target > last {
			target = last
		}
	} else {
		weekday, err := model.ParseWeekday(cfg.MonthlyWeekday)
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		day, ok := OrdinalWeekdayDate(year, month, cfg.MonthlyOrdinal, weekday)
		if !ok {
			return false, fmt.Errorf("%w: unknown ordinal %q", ErrInvalidConfig, cfg.MonthlyOrdinal)
		}
		target = day
	}

	if now.Day() != target {
		return false, nil
	}
	if snap.LastCreatedAt == nil {
		return true, nil
	}
	interval := cfg.MonthlyInterval
	if interval <= 0 {
		interval = 1
	}
	return MonthsBetween(*snap.LastCreatedAt, now) >= interval, nil
}
