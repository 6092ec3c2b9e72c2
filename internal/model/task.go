package model

import (
	"fmt"
	"strings"
	"time"
)

// Status tracks where a task is in its lifecycle. Instances are created as
// StatusSubmitted; the auto-close sweep advances completed tasks to
// StatusClosed. Everything in between is owned by regular task operations.
type Status string

const (
	StatusSubmitted  Status = "submitted"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusClosed     Status = "closed"
	StatusPending    Status = "pending"
)

// Pattern names a recurrence policy.
type Pattern string

const (
	PatternDaily          Pattern = "daily"
	PatternWeekly         Pattern = "weekly"
	PatternBiWeekly       Pattern = "biweekly"
	PatternThreeDaysAWeek Pattern = "three_days_a_week"
	PatternMonthly        Pattern = "monthly"
)

// Ordinal selects which occurrence of a weekday within a month.
type Ordinal string

const (
	OrdinalFirst  Ordinal = "first"
	OrdinalSecond Ordinal = "second"
	OrdinalThird  Ordinal = "third"
	OrdinalFourth Ordinal = "fourth"
	OrdinalLast   Ordinal = "last"
)

// RecurrenceConfig describes how often a template spawns instances.
// Exactly one of MonthlyDay and MonthlyOrdinal+MonthlyWeekday may be set for
// the monthly pattern, and exactly one of EndDate / EndAfterCount (or
// neither) bounds the series.
type RecurrenceConfig struct {
	Pattern         Pattern
	DailyInterval   int
	WeeklyDays      string // comma-separated lowercase weekday names
	MonthlyDay      int
	MonthlyOrdinal  Ordinal
	MonthlyWeekday  string
	MonthlyInterval int
	StartDate       time.Time
	EndDate         *time.Time
	EndAfterCount   int
}

// Task doubles as recurrence template and generated instance. A template has
// IsRecurring set and no parent; an instance points back at its template via
// ParentTemplateID and never recurs itself.
type Task struct {
	ID               uint `gorm:"primaryKey"`
	Title            string
	Description      string
	Assignee         string
	AssignedRole     string
	CreditCost       int
	DueDate          *time.Time
	Files            string
	Status           Status `gorm:"index;default:submitted"`
	IsRecurring      bool   `gorm:"default:false;index"`
	ParentTemplateID *uint  `gorm:"index"`
	FirstInstanceID  *uint
	Recurrence       RecurrenceConfig `gorm:"embedded;embeddedPrefix:recur_"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsTemplate reports whether the task is a root recurrence template.
func (t *Task) IsTemplate() bool {
	return t.IsRecurring && t.ParentTemplateID == nil
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekday maps a lowercase weekday name to time.Weekday.
func ParseWeekday(name string) (time.Weekday, error) {
	day, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown weekday %q", name)
	}
	return day, nil
}

// Weekdays parses the comma-separated WeeklyDays column.
func (c RecurrenceConfig) Weekdays() ([]time.Weekday, error) {
	raw := strings.TrimSpace(c.WeeklyDays)
	if raw == "" {
		return nil, nil
	}
	var days []time.Weekday
	for _, part := range strings.Split(raw, ",") {
		day, err := ParseWeekday(part)
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, nil
}

// FormatWeekdays renders a weekday set into the WeeklyDays column format.
func FormatWeekdays(days []time.Weekday) string {
	names := make([]string, 0, len(days))
	for _, d := range days {
		names = append(names, strings.ToLower(d.String()))
	}
	return strings.Join(names, ",")
}
