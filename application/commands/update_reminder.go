package commands

import (
	"time"

	"pingwards-backend/pkg/utils"
)

// UpdateReminderCommand represents a partial edit of an existing reminder.
// Nil fields are left untouched. Changing NotificationDate (or Text while
// a notification is pending) triggers a cancel-then-reschedule.
type UpdateReminderCommand struct {
	UserID           string     `json:"user_id" validate:"required"`
	ReminderID       string     `json:"reminder_id" validate:"required,uuid4"`
	Text             *string    `json:"text,omitempty" validate:"omitempty,min=1,max=1000"`
	NotificationDate *time.Time `json:"notification_date,omitempty"`
	Category         *string    `json:"category,omitempty" validate:"omitempty,max=50"`
	Priority         *string    `json:"priority,omitempty" validate:"omitempty,oneof=Low Medium High"`
	Tags             *[]string  `json:"tags,omitempty" validate:"omitempty,max=20,dive,min=1,max=50"`
}

// Validate checks the command's field constraints
func (c UpdateReminderCommand) Validate() error {
	return utils.ValidateStruct(c)
}
