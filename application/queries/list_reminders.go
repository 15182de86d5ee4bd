package queries

import (
	"time"

	"pingwards-backend/pkg/utils"
)

// ListRemindersQuery lists a user's reminders, optionally narrowed to
// those whose notification falls on a single calendar day. The day
// boundary is evaluated in the server's local zone, matching how
// date-only notification times are normalized on input.
type ListRemindersQuery struct {
	UserID string `json:"user_id" validate:"required"`

	// On filters to reminders firing on this calendar date when set.
	On *time.Time `json:"on,omitempty"`
}

// Validate checks the query's field constraints
func (q ListRemindersQuery) Validate() error {
	return utils.ValidateStruct(q)
}
