package services

import (
	"time"

	"github.com/yukikurage/project-task-api/internal/constants"
)

// Due dates are compared by calendar day in UTC.

func calendarDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// sameDay reports whether a and b fall on the same day, or are both unset.
func sameDay(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return calendarDay(*a).Equal(calendarDay(*b))
}

func dayAfter(a, b time.Time) bool {
	return calendarDay(a).After(calendarDay(b))
}

func dayBefore(a, b time.Time) bool {
	return calendarDay(a).Before(calendarDay(b))
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "none"
	}
	return t.UTC().Format(constants.DateLayout)
}
