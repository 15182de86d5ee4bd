package handlers

import (
	"context"

	"pingwards-backend/application/commands"
	"pingwards-backend/application/services"
)

// SnoozeReminderHandler handles snooze requests
type SnoozeReminderHandler struct {
	service *services.ReminderLifecycleService
}

// NewSnoozeReminderHandler creates the handler
func NewSnoozeReminderHandler(service *services.ReminderLifecycleService) *SnoozeReminderHandler {
	return &SnoozeReminderHandler{service: service}
}

// Handle executes the command
func (h *SnoozeReminderHandler) Handle(ctx context.Context, cmd commands.SnoozeReminderCommand) error {
	_, err := h.service.SnoozeReminder(ctx, cmd)
	return err
}
