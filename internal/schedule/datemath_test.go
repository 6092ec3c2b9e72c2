package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskcycle/internal/model"
)

func TestWeekStart_SundayBased(t *testing.T) {
	// 2025-06-04 is a Wednesday; its week starts Sunday 2025-06-01.
	wednesday := time.Date(2025, time.June, 4, 15, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), WeekStart(wednesday))

	// A Sunday is its own week start.
	sunday := time.Date(2025, time.June, 8, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, time.June, 8, 0, 0, 0, 0, time.UTC), WeekStart(sunday))
}

func TestSameDay(t *testing.T) {
	morning := time.Date(2025, time.June, 2, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2025, time.June, 2, 23, 59, 0, 0, time.UTC)
	nextDay := time.Date(2025, time.June, 3, 0, 0, 0, 0, time.UTC)

	assert.True(t, SameDay(morning, evening))
	assert.False(t, SameDay(evening, nextDay))
}

func TestMonthsBetween(t *testing.T) {
	assert.Equal(t, 0, MonthsBetween(
		time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 1, MonthsBetween(
		time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 13, MonthsBetween(
		time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.July, 15, 0, 0, 0, 0, time.UTC)))
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 31, DaysInMonth(2025, time.October))
	assert.Equal(t, 30, DaysInMonth(2025, time.June))
	assert.Equal(t, 28, DaysInMonth(2026, time.February))
	assert.Equal(t, 29, DaysInMonth(2028, time.February))
}

func TestOrdinalWeekdayDate(t *testing.T) {
	// October 2025: the 1st is a Wednesday, so the first Monday is the 6th.
	day, ok := OrdinalWeekdayDate(2025, time.October, model.OrdinalFirst, time.Monday)
	require.True(t, ok)
	assert.Equal(t, 6, day)

	day, ok = OrdinalWeekdayDate(2025, time.October, model.OrdinalSecond, time.Monday)
	require.True(t, ok)
	assert.Equal(t, 13, day)

	day, ok = OrdinalWeekdayDate(2025, time.October, model.OrdinalFourth, time.Monday)
	require.True(t, ok)
	assert.Equal(t, 27, day)

	// October 2025 ends on Friday the 31st; the last Monday is the 27th.
	day, ok = OrdinalWeekdayDate(2025, time.October, model.OrdinalLast, time.Monday)
	require.True(t, ok)
	assert.Equal(t, 27, day)

	// The first Wednesday is the 1st itself.
	day, ok = OrdinalWeekdayDate(2025, time.October, model.OrdinalFirst, time.Wednesday)
	require.True(t, ok)
	assert.Equal(t, 1, day)

	// Last Friday is the final day of the month.
	day, ok = OrdinalWeekdayDate(2025, time.October, model.OrdinalLast, time.Friday)
	require.True(t, ok)
	assert.Equal(t, 31, day)

	_, ok = OrdinalWeekdayDate(2025, time.October, model.Ordinal("fifth"), time.Monday)
	assert.False(t, ok)
}
