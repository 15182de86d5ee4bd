package handlers

import (
	"context"

	"pingwards-backend/application/commands"
	"pingwards-backend/application/services"
)

// UpdateReminderHandler handles partial reminder updates
type UpdateReminderHandler struct {
	service *services.ReminderLifecycleService
}

// NewUpdateReminderHandler creates the handler
func NewUpdateReminderHandler(service *services.ReminderLifecycleService) *UpdateReminderHandler {
	return &UpdateReminderHandler{service: service}
}

// Handle executes the command
func (h *UpdateReminderHandler) Handle(ctx context.Context, cmd commands.UpdateReminderCommand) error {
	_, err := h.service.EditReminder(ctx, cmd)
	return err
}
