package commands

import "pingwards-backend/pkg/utils"

// ToggleCompleteCommand flips a reminder between done and not done.
// The handler decides the notification side-effect: completing cancels
// the pending notification, reopening reschedules when the fire time
// is still ahead.
type ToggleCompleteCommand struct {
	UserID     string `json:"user_id" validate:"required"`
	ReminderID string `json:"reminder_id" validate:"required,uuid4"`
}

// Validate checks the command's field constraints
func (c ToggleCompleteCommand) Validate() error {
	return utils.ValidateStruct(c)
}
