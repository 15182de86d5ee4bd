package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"pingwards-backend/application/commands"
	"pingwards-backend/application/commands/bus"
	"pingwards-backend/application/ports"
	"pingwards-backend/application/queries"
	querybus "pingwards-backend/application/queries/bus"
	"pingwards-backend/domain/core/valueobjects"
	"pingwards-backend/pkg/auth"
	pkgerrors "pingwards-backend/pkg/errors"
	"pingwards-backend/pkg/utils"
)

// ReminderHandler handles reminder-related HTTP requests
type ReminderHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	cache      ports.Cache
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewReminderHandler creates a new reminder handler
func NewReminderHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	cache ports.Cache,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *ReminderHandler {
	return &ReminderHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		cache:      cache,
		errors:     errorHandler,
		logger:     logger,
	}
}

// CreateReminderRequest represents the request body for creating a reminder.
// NotificationDate accepts RFC3339 or a bare YYYY-MM-DD date, which is
// taken as local midnight.
type CreateReminderRequest struct {
	Text             string   `json:"text" validate:"required,min=1,max=1000"`
	NotificationDate string   `json:"notificationDate" validate:"required"`
	Category         string   `json:"category,omitempty" validate:"omitempty,max=50"`
	Priority         string   `json:"priority,omitempty" validate:"omitempty,oneof=Low Medium High"`
	Tags             []string `json:"tags,omitempty" validate:"omitempty,max=20,dive,max=50"`
}

// UpdateReminderRequest represents the request body for updating a reminder
type UpdateReminderRequest struct {
	Text             *string   `json:"text,omitempty" validate:"omitempty,min=1,max=1000"`
	NotificationDate *string   `json:"notificationDate,omitempty"`
	Category         *string   `json:"category,omitempty" validate:"omitempty,max=50"`
	Priority         *string   `json:"priority,omitempty" validate:"omitempty,oneof=Low Medium High"`
	Tags             *[]string `json:"tags,omitempty" validate:"omitempty,max=20,dive,max=50"`
}

// CreateReminder handles POST /reminders
func (h *ReminderHandler) CreateReminder(w http.ResponseWriter, r *http.Request) {
	var req CreateReminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body: "+err.Error()))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	notificationDate, err := valueobjects.ParseNotificationTime(req.NotificationDate)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	reminderID := uuid.New().String()

	cmd := commands.CreateReminderCommand{
		ReminderID:       reminderID,
		UserID:           userCtx.UserID,
		Text:             req.Text,
		NotificationDate: notificationDate.Time(),
		Category:         req.Category,
		Priority:         req.Priority,
		Tags:             req.Tags,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.logger.Error("failed to create reminder",
			zap.String("userID", userCtx.UserID),
			zap.Error(err),
		)
		h.errors.Handle(w, r, err)
		return
	}

	h.respondWithReminder(w, r, userCtx.UserID, reminderID, http.StatusCreated)
}

// GetReminder handles GET /reminders/{reminderID}
func (h *ReminderHandler) GetReminder(w http.ResponseWriter, r *http.Request) {
	reminderID, userCtx, ok := h.pathReminder(w, r)
	if !ok {
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetReminderQuery{
		UserID:     userCtx.UserID,
		ReminderID: reminderID,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// ListReminders handles GET /reminders, with an optional on=YYYY-MM-DD
// filter narrowing results to one calendar day
func (h *ReminderHandler) ListReminders(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	query := queries.ListRemindersQuery{UserID: userCtx.UserID}
	if raw := r.URL.Query().Get("on"); raw != "" {
		day, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid on date, expected YYYY-MM-DD"))
			return
		}
		query.On = &day
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.logger.Error("failed to list reminders",
			zap.String("userID", userCtx.UserID),
			zap.Error(err),
		)
		h.errors.Handle(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// UpdateReminder handles PUT /reminders/{reminderID}
func (h *ReminderHandler) UpdateReminder(w http.ResponseWriter, r *http.Request) {
	reminderID, userCtx, ok := h.pathReminder(w, r)
	if !ok {
		return
	}

	var req UpdateReminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body: "+err.Error()))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	cmd := commands.UpdateReminderCommand{
		UserID:     userCtx.UserID,
		ReminderID: reminderID,
		Text:       req.Text,
		Category:   req.Category,
		Priority:   req.Priority,
		Tags:       req.Tags,
	}
	if req.NotificationDate != nil {
		notificationDate, err := valueobjects.ParseNotificationTime(*req.NotificationDate)
		if err != nil {
			h.errors.Handle(w, r, err)
			return
		}
		t := notificationDate.Time()
		cmd.NotificationDate = &t
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.logger.Error("failed to update reminder",
			zap.String("reminderID", reminderID),
			zap.String("userID", userCtx.UserID),
			zap.Error(err),
		)
		h.errors.Handle(w, r, err)
		return
	}

	h.invalidate(r, reminderID)
	h.respondWithReminder(w, r, userCtx.UserID, reminderID, http.StatusOK)
}

// DeleteReminder handles DELETE /reminders/{reminderID}
func (h *ReminderHandler) DeleteReminder(w http.ResponseWriter, r *http.Request) {
	reminderID, userCtx, ok := h.pathReminder(w, r)
	if !ok {
		return
	}

	cmd := commands.DeleteReminderCommand{
		UserID:     userCtx.UserID,
		ReminderID: reminderID,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.logger.Error("failed to delete reminder",
			zap.String("reminderID", reminderID),
			zap.String("userID", userCtx.UserID),
			zap.Error(err),
		)
		h.errors.Handle(w, r, err)
		return
	}

	h.invalidate(r, reminderID)
	h.respondJSON(w, http.StatusOK, map[string]string{
		"message": "Reminder deleted successfully",
		"id":      reminderID,
	})
}

// ToggleComplete handles POST /reminders/{reminderID}/toggle-complete
func (h *ReminderHandler) ToggleComplete(w http.ResponseWriter, r *http.Request) {
	reminderID, userCtx, ok := h.pathReminder(w, r)
	if !ok {
		return
	}

	cmd := commands.ToggleCompleteCommand{
		UserID:     userCtx.UserID,
		ReminderID: reminderID,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.logger.Error("failed to toggle reminder completion",
			zap.String("reminderID", reminderID),
			zap.String("userID", userCtx.UserID),
			zap.Error(err),
		)
		h.errors.Handle(w, r, err)
		return
	}

	h.invalidate(r, reminderID)
	h.respondWithReminder(w, r, userCtx.UserID, reminderID, http.StatusOK)
}

// SnoozeReminder handles POST /reminders/{reminderID}/snooze
func (h *ReminderHandler) SnoozeReminder(w http.ResponseWriter, r *http.Request) {
	reminderID, userCtx, ok := h.pathReminder(w, r)
	if !ok {
		return
	}

	cmd := commands.SnoozeReminderCommand{
		UserID:     userCtx.UserID,
		ReminderID: reminderID,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.logger.Error("failed to snooze reminder",
			zap.String("reminderID", reminderID),
			zap.String("userID", userCtx.UserID),
			zap.Error(err),
		)
		h.errors.Handle(w, r, err)
		return
	}

	h.invalidate(r, reminderID)
	h.respondWithReminder(w, r, userCtx.UserID, reminderID, http.StatusOK)
}

// pathReminder extracts and validates the reminder id from the URL and
// resolves the authenticated caller
func (h *ReminderHandler) pathReminder(w http.ResponseWriter, r *http.Request) (string, *auth.UserContext, bool) {
	reminderID := chi.URLParam(r, "reminderID")
	if reminderID == "" {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("reminder ID is required"))
		return "", nil, false
	}
	if _, err := uuid.Parse(reminderID); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid reminder ID format"))
		return "", nil, false
	}

	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return "", nil, false
	}

	return reminderID, userCtx, true
}

// respondWithReminder fetches the stored record through the query bus
// so every mutating endpoint answers with the authoritative state,
// notification id included
func (h *ReminderHandler) respondWithReminder(w http.ResponseWriter, r *http.Request, userID, reminderID string, status int) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetReminderQuery{
		UserID:     userID,
		ReminderID: reminderID,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.respondJSON(w, status, result)
}

// invalidate drops the read cache entry for a mutated reminder
func (h *ReminderHandler) invalidate(r *http.Request, reminderID string) {
	if err := h.cache.Delete(r.Context(), "reminder:"+reminderID); err != nil {
		h.logger.Debug("cache invalidation failed", zap.String("reminderID", reminderID), zap.Error(err))
	}
}

func (h *ReminderHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
