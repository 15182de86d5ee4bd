package queries

import (
	"time"

	"pingwards-backend/domain/core/entities"
)

// ReminderView is the read model returned by reminder queries
type ReminderView struct {
	ID               string     `json:"id"`
	UserID           string     `json:"userId"`
	Text             string     `json:"text"`
	CreatedDate      time.Time  `json:"createdDate"`
	NotificationDate time.Time  `json:"notificationDate"`
	Completed        bool       `json:"completed"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
	Category         string     `json:"category"`
	Priority         string     `json:"priority"`
	Tags             []string   `json:"tags"`
	NotificationID   string     `json:"notificationId,omitempty"`
}

// NewReminderView projects a reminder entity into its read model
func NewReminderView(r *entities.Reminder) *ReminderView {
	return &ReminderView{
		ID:               r.ID().String(),
		UserID:           r.UserID(),
		Text:             r.Text().String(),
		CreatedDate:      r.CreatedDate(),
		NotificationDate: r.NotificationDate().Time(),
		Completed:        r.Completed(),
		CompletedAt:      r.CompletedAt(),
		Category:         r.Category(),
		Priority:         r.Priority(),
		Tags:             r.Tags(),
		NotificationID:   r.NotificationID(),
	}
}

// PendingNotificationView is one entry of the platform's pending queue
type PendingNotificationView struct {
	ID     string    `json:"id"`
	Title  string    `json:"title"`
	Body   string    `json:"body"`
	FireAt time.Time `json:"fireAt"`
}
