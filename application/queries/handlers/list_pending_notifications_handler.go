package handlers

import (
	"context"
	"sort"

	"pingwards-backend/application/ports"
	"pingwards-backend/application/queries"
)

// ListPendingNotificationsHandler surfaces the platform's pending
// notification queue, soonest first.
type ListPendingNotificationsHandler struct {
	scheduler ports.NotificationScheduler
}

// NewListPendingNotificationsHandler creates the handler
func NewListPendingNotificationsHandler(scheduler ports.NotificationScheduler) *ListPendingNotificationsHandler {
	return &ListPendingNotificationsHandler{scheduler: scheduler}
}

// Handle executes the query
func (h *ListPendingNotificationsHandler) Handle(ctx context.Context, query queries.ListPendingNotificationsQuery) ([]queries.PendingNotificationView, error) {
	pending, err := h.scheduler.ListPending(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]queries.PendingNotificationView, 0, len(pending))
	for _, p := range pending {
		views = append(views, queries.PendingNotificationView{
			ID:     p.ID,
			Title:  ports.NotificationTitle,
			Body:   p.Body,
			FireAt: p.FireAt,
		})
	}

	sort.Slice(views, func(i, j int) bool {
		return views[i].FireAt.Before(views[j].FireAt)
	})
	return views, nil
}
