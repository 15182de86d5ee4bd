package handlers

import (
	"context"

	"pingwards-backend/application/commands"
	"pingwards-backend/application/services"
)

// ToggleCompleteHandler handles completion toggling
type ToggleCompleteHandler struct {
	service *services.ReminderLifecycleService
}

// NewToggleCompleteHandler creates the handler
func NewToggleCompleteHandler(service *services.ReminderLifecycleService) *ToggleCompleteHandler {
	return &ToggleCompleteHandler{service: service}
}

// Handle executes the command
func (h *ToggleCompleteHandler) Handle(ctx context.Context, cmd commands.ToggleCompleteCommand) error {
	_, err := h.service.ToggleComplete(ctx, cmd)
	return err
}
