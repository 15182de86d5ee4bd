package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"pingwards-backend/application/queries"
	querybus "pingwards-backend/application/queries/bus"
	"pingwards-backend/application/services"
	"pingwards-backend/pkg/auth"
	pkgerrors "pingwards-backend/pkg/errors"
)

// NotificationHandler exposes the pending-notification queue and the
// cancel-all reset used on logout
type NotificationHandler struct {
	queryBus *querybus.QueryBus
	service  *services.ReminderLifecycleService
	errors   *pkgerrors.ErrorHandler
	logger   *zap.Logger
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(
	queryBus *querybus.QueryBus,
	service *services.ReminderLifecycleService,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *NotificationHandler {
	return &NotificationHandler{
		queryBus: queryBus,
		service:  service,
		errors:   errorHandler,
		logger:   logger,
	}
}

// ListPending handles GET /notifications/pending
func (h *NotificationHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.ListPendingNotificationsQuery{
		UserID: userCtx.UserID,
	})
	if err != nil {
		h.logger.Error("failed to list pending notifications",
			zap.String("userID", userCtx.UserID),
			zap.Error(err),
		)
		h.errors.Handle(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// CancelAll handles DELETE /notifications
func (h *NotificationHandler) CancelAll(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	if err := h.service.CancelAllForLogout(r.Context(), userCtx.UserID); err != nil {
		h.logger.Error("failed to cancel all notifications",
			zap.String("userID", userCtx.UserID),
			zap.Error(err),
		)
		h.errors.Handle(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{
		"message": "All notifications cancelled",
	})
}

func (h *NotificationHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
