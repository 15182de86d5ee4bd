package handlers

import (
	"context"

	"go.uber.org/zap"

	"pingwards-backend/application/ports"
	"pingwards-backend/application/queries"
	"pingwards-backend/domain/core/valueobjects"
	pkgerrors "pingwards-backend/pkg/errors"
)

const reminderCacheTTLSeconds = 30

// GetReminderHandler serves single-reminder reads through a short-lived
// cache. The TTL is short because the lifecycle service writes around
// this cache.
type GetReminderHandler struct {
	repo   ports.ReminderRepository
	cache  ports.Cache
	logger *zap.Logger
}

// NewGetReminderHandler creates the handler
func NewGetReminderHandler(repo ports.ReminderRepository, cache ports.Cache, logger *zap.Logger) *GetReminderHandler {
	return &GetReminderHandler{repo: repo, cache: cache, logger: logger}
}

// Handle executes the query
func (h *GetReminderHandler) Handle(ctx context.Context, query queries.GetReminderQuery) (*queries.ReminderView, error) {
	cacheKey := "reminder:" + query.ReminderID
	if cached, ok := h.cache.Get(ctx, cacheKey); ok {
		if view, ok := cached.(*queries.ReminderView); ok && view.UserID == query.UserID {
			return view, nil
		}
	}

	id, err := valueobjects.NewReminderIDFromString(query.ReminderID)
	if err != nil {
		return nil, pkgerrors.NewValidationError("invalid reminder id: " + err.Error())
	}

	reminder, err := h.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reminder.UserID() != query.UserID {
		return nil, pkgerrors.NewNotFoundError("reminder")
	}

	view := queries.NewReminderView(reminder)
	if err := h.cache.Set(ctx, cacheKey, view, reminderCacheTTLSeconds); err != nil {
		h.logger.Debug("failed to cache reminder", zap.String("reminderID", query.ReminderID), zap.Error(err))
	}
	return view, nil
}
