package handlers

import (
	"context"
	"sort"
	"time"

	"pingwards-backend/application/ports"
	"pingwards-backend/application/queries"
)

// ListRemindersHandler lists a user's reminders, newest notification
// first, optionally narrowed to a single calendar day.
type ListRemindersHandler struct {
	repo ports.ReminderRepository
}

// NewListRemindersHandler creates the handler
func NewListRemindersHandler(repo ports.ReminderRepository) *ListRemindersHandler {
	return &ListRemindersHandler{repo: repo}
}

// Handle executes the query
func (h *ListRemindersHandler) Handle(ctx context.Context, query queries.ListRemindersQuery) ([]*queries.ReminderView, error) {
	reminders, err := h.repo.ListByUser(ctx, query.UserID)
	if err != nil {
		return nil, err
	}

	views := make([]*queries.ReminderView, 0, len(reminders))
	for _, r := range reminders {
		if query.On != nil && !sameLocalDay(r.NotificationDate().Time(), *query.On) {
			continue
		}
		views = append(views, queries.NewReminderView(r))
	}

	sort.Slice(views, func(i, j int) bool {
		return views[i].NotificationDate.After(views[j].NotificationDate)
	})
	return views, nil
}

// sameLocalDay compares calendar dates in the server's local zone,
// matching the normalization applied to date-only input.
func sameLocalDay(a, b time.Time) bool {
	ay, am, ad := a.In(time.Local).Date()
	by, bm, bd := b.In(time.Local).Date()
	return ay == by && am == bm && ad == bd
}
