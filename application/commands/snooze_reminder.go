package commands

import "pingwards-backend/pkg/utils"

// SnoozeReminderCommand pushes a reminder's notification time forward
// by the configured snooze interval.
type SnoozeReminderCommand struct {
	UserID     string `json:"user_id" validate:"required"`
	ReminderID string `json:"reminder_id" validate:"required,uuid4"`
}

// Validate checks the command's field constraints
func (c SnoozeReminderCommand) Validate() error {
	return utils.ValidateStruct(c)
}
