package commands

import "pingwards-backend/pkg/utils"

// DeleteReminderCommand removes a reminder and cancels its pending
// notification. Cancellation runs before the store delete; a dangling
// notification for a since-deleted reminder is a cosmetic nuisance,
// failing to cancel at all is not.
type DeleteReminderCommand struct {
	UserID     string `json:"user_id" validate:"required"`
	ReminderID string `json:"reminder_id" validate:"required,uuid4"`
}

// Validate checks the command's field constraints
func (c DeleteReminderCommand) Validate() error {
	return utils.ValidateStruct(c)
}
