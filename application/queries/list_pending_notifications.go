package queries

import "pingwards-backend/pkg/utils"

// ListPendingNotificationsQuery surfaces the notifications currently
// scheduled on the platform for a user's reminders. Useful as a
// debugging and reconciliation endpoint.
type ListPendingNotificationsQuery struct {
	UserID string `json:"user_id" validate:"required"`
}

// Validate checks the query's field constraints
func (q ListPendingNotificationsQuery) Validate() error {
	return utils.ValidateStruct(q)
}
