package commands

import (
	"time"

	"pingwards-backend/pkg/utils"
)

// CreateReminderCommand represents the command to create a new reminder.
// NotificationDate is always a concrete instant; date-only input is
// normalized by the interface layer before the command is built.
type CreateReminderCommand struct {
	ReminderID       string    `json:"reminder_id" validate:"required,uuid4"`
	UserID           string    `json:"user_id" validate:"required"`
	Text             string    `json:"text" validate:"required,min=1,max=1000"`
	NotificationDate time.Time `json:"notification_date" validate:"required"`
	Category         string    `json:"category" validate:"max=50"`
	Priority         string    `json:"priority" validate:"omitempty,oneof=Low Medium High"`
	Tags             []string  `json:"tags" validate:"max=20,dive,min=1,max=50"`
}

// Validate checks the command's field constraints
func (c CreateReminderCommand) Validate() error {
	return utils.ValidateStruct(c)
}
