package handlers

import (
	"context"

	"pingwards-backend/application/commands"
	"pingwards-backend/application/services"
)

// CreateReminderHandler handles reminder creation commands by
// delegating to the lifecycle service, which owns store + schedule
// ordering.
type CreateReminderHandler struct {
	service *services.ReminderLifecycleService
}

// NewCreateReminderHandler creates the handler
func NewCreateReminderHandler(service *services.ReminderLifecycleService) *CreateReminderHandler {
	return &CreateReminderHandler{service: service}
}

// Handle executes the command
func (h *CreateReminderHandler) Handle(ctx context.Context, cmd commands.CreateReminderCommand) error {
	_, err := h.service.CreateReminder(ctx, cmd)
	return err
}
