package queries

import "pingwards-backend/pkg/utils"

// GetReminderQuery fetches a single reminder by id, scoped to the
// requesting user.
type GetReminderQuery struct {
	UserID     string `json:"user_id" validate:"required"`
	ReminderID string `json:"reminder_id" validate:"required,uuid4"`
}

// Validate checks the query's field constraints
func (q GetReminderQuery) Validate() error {
	return utils.ValidateStruct(q)
}
