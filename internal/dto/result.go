package dto

import (
	"fmt"
	"time"

	"github.com/yukikurage/project-task-api/internal/constants"
)

// Result is the envelope of every successful response.
type Result struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// OK builds a successful Result.
func OK(message string, data interface{}) Result {
	return Result{Success: true, Message: message, Data: data}
}

// ParseDate accepts a calendar date (2006-01-02, read as UTC) or an RFC 3339
// timestamp.
func ParseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(constants.DateLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC 3339", raw)
	}
	return t, nil
}

// ParseOptionalDate parses a date that may be absent.
func ParseOptionalDate(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := ParseDate(*raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
