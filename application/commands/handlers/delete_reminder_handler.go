package handlers

import (
	"context"

	"pingwards-backend/application/commands"
	"pingwards-backend/application/services"
)

// DeleteReminderHandler handles reminder deletion
type DeleteReminderHandler struct {
	service *services.ReminderLifecycleService
}

// NewDeleteReminderHandler creates the handler
func NewDeleteReminderHandler(service *services.ReminderLifecycleService) *DeleteReminderHandler {
	return &DeleteReminderHandler{service: service}
}

// Handle executes the command
func (h *DeleteReminderHandler) Handle(ctx context.Context, cmd commands.DeleteReminderCommand) error {
	return h.service.DeleteReminder(ctx, cmd)
}
