package valueobjects

import (
	"time"

	pkgerrors "pingwards-backend/pkg/errors"
)

// dateOnlyLayout matches input produced by date-only pickers
const dateOnlyLayout = "2006-01-02"

// NotificationTime is a value object for a reminder's intended delivery time.
// Historically the client sometimes sent a bare date and sometimes a full
// timestamp; this type fixes one canonical representation (an absolute
// instant) so nothing downstream has to infer the shape from field
// inspection. Date-only input normalizes to local midnight.
type NotificationTime struct {
	value time.Time
}

// NewNotificationTime creates a NotificationTime from a concrete instant
func NewNotificationTime(t time.Time) (NotificationTime, error) {
	if t.IsZero() {
		return NotificationTime{}, pkgerrors.NewValidationError("notification date cannot be zero")
	}
	return NotificationTime{value: t}, nil
}

// ParseNotificationTime parses RFC3339 or date-only input into an instant
func ParseNotificationTime(s string) (NotificationTime, error) {
	if s == "" {
		return NotificationTime{}, pkgerrors.NewValidationError("notification date is required")
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return NotificationTime{value: t}, nil
	}

	if t, err := time.ParseInLocation(dateOnlyLayout, s, time.Local); err == nil {
		return NotificationTime{value: t}, nil
	}

	return NotificationTime{}, pkgerrors.NewValidationError("notification date must be RFC3339 or YYYY-MM-DD")
}

// Time returns the underlying instant
func (n NotificationTime) Time() time.Time {
	return n.value
}

// IsZero checks if the NotificationTime is the zero value
func (n NotificationTime) IsZero() bool {
	return n.value.IsZero()
}

// IsFuture reports whether the instant is strictly after now
func (n NotificationTime) IsFuture(now time.Time) bool {
	return n.value.After(now)
}

// Add returns a NotificationTime shifted by d (used for snooze)
func (n NotificationTime) Add(d time.Duration) NotificationTime {
	return NotificationTime{value: n.value.Add(d)}
}

// Equals checks if two NotificationTimes refer to the same instant
func (n NotificationTime) Equals(other NotificationTime) bool {
	return n.value.Equal(other.value)
}

// String returns the RFC3339 representation
func (n NotificationTime) String() string {
	return n.value.Format(time.RFC3339)
}
